// Package provenance implements the optional provenance recorder of
// spec §4.6 (component C8): a W3C PROV-shaped graph of Entity/Activity
// records accumulated while an internal/exec.Engine walks a solution.
//
// The spec requires ids to be "monotonically assigned", which a bare
// UUID alone can't express, so every id here pairs a monotonic sequence
// counter with a google/uuid value: `seq-uuid`.
package provenance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/typeforge/synthcore/internal/value"
)

type Entity struct {
	ID    string
	Type  string
	Value value.Value
}

type Activity struct {
	ID        string
	Function  string
	Signature string
	Start     time.Time
	End       time.Time
}

type UsedEdge struct {
	Activity string
	Entity   string
	Role     string
}

type GeneratedEdge struct {
	Entity   string
	Activity string
	Role     string
}

type DerivedFromEdge struct {
	Output   string
	Input    string
	Activity string
}

// Recorder accumulates a provenance graph during a single evaluation
// (spec's "Provenance records accumulate during evaluation and are
// drained/exported by the caller"). It is not safe for concurrent use,
// matching the core's single-threaded execution model (spec §5).
type Recorder struct {
	seq int

	Entities   []*Entity
	Activities []*Activity
	UsedEdges      []UsedEdge
	GeneratedEdges []GeneratedEdge
	DerivedEdges   []DerivedFromEdge
}

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) nextID() string {
	r.seq++
	return fmt.Sprintf("%d-%s", r.seq, uuid.NewString())
}

// RecordEntity appends a new Entity for a produced value and returns
// its id. The caller (internal/exec.Engine) is responsible for the "if
// not already recorded by identity" check of spec §4.6, since only it
// knows a SolutionNode's identity.
func (r *Recorder) RecordEntity(typeName string, v value.Value) string {
	id := r.nextID()
	r.Entities = append(r.Entities, &Entity{ID: id, Type: typeName, Value: v})
	return id
}

// BeginActivity starts a new Activity, stamping its start time.
func (r *Recorder) BeginActivity(function, signature string) *Activity {
	act := &Activity{ID: r.nextID(), Function: function, Signature: signature, Start: time.Now().UTC()}
	r.Activities = append(r.Activities, act)
	return act
}

// EndActivity stamps the activity's end time.
func (r *Recorder) EndActivity(act *Activity) {
	act.End = time.Now().UTC()
}

// Used records a used(activity, entity, role) edge.
func (r *Recorder) Used(act *Activity, entityID, role string) {
	r.UsedEdges = append(r.UsedEdges, UsedEdge{Activity: act.ID, Entity: entityID, Role: role})
}

// Generated records a generated(entity, activity, role) edge.
func (r *Recorder) Generated(entityID string, act *Activity, role string) {
	r.GeneratedEdges = append(r.GeneratedEdges, GeneratedEdge{Entity: entityID, Activity: act.ID, Role: role})
}

// DerivedFrom records a derivedFrom(output, input, activity) edge.
func (r *Recorder) DerivedFrom(outputID, inputID string, act *Activity) {
	r.DerivedEdges = append(r.DerivedEdges, DerivedFromEdge{Output: outputID, Input: inputID, Activity: act.ID})
}
