package provenance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/typeforge/synthcore/internal/value"
)

const isoLayout = time.RFC3339Nano

// jsonDoc is the wire shape of spec §6's required JSON export form: a
// JSON object with namespace, entities, activities, usages,
// generations, derivations.
type jsonDoc struct {
	Namespace   string          `json:"namespace"`
	Entities    []jsonEntity    `json:"entities"`
	Activities  []jsonActivity  `json:"activities"`
	Usages      []UsedEdge      `json:"usages"`
	Generations []GeneratedEdge `json:"generations"`
	Derivations []DerivedFromEdge `json:"derivations"`
}

type jsonEntity struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type jsonActivity struct {
	ID        string `json:"id"`
	Function  string `json:"function"`
	Signature string `json:"signature"`
	Start     string `json:"startedAtTime"`
	End       string `json:"endedAtTime"`
}

func (r *Recorder) toDoc(namespace string) jsonDoc {
	doc := jsonDoc{
		Namespace:   namespace,
		Usages:      r.UsedEdges,
		Generations: r.GeneratedEdges,
		Derivations: r.DerivedEdges,
	}
	for _, e := range r.Entities {
		doc.Entities = append(doc.Entities, jsonEntity{ID: e.ID, Type: e.Type, Value: value.ToGo(e.Value)})
	}
	for _, a := range r.Activities {
		doc.Activities = append(doc.Activities, jsonActivity{
			ID: a.ID, Function: a.Function, Signature: a.Signature,
			Start: a.Start.Format(isoLayout), End: a.End.Format(isoLayout),
		})
	}
	return doc
}

// ExportJSON renders the graph as the spec §6 (i) JSON object form.
func (r *Recorder) ExportJSON(namespace string) ([]byte, error) {
	return json.MarshalIndent(r.toDoc(namespace), "", "  ")
}

// ExportTurtle renders the graph as the spec §6 (ii) Turtle/RDF form
// using the prov: vocabulary. Hand-templated rather than built through
// an RDF library, since the core's only RDF-shaped output is this one
// fixed vocabulary subset.
func (r *Recorder) ExportTurtle(namespace string) string {
	var b strings.Builder
	b.WriteString("@prefix prov: <http://www.w3.org/ns/prov#> .\n")
	fmt.Fprintf(&b, "@prefix ns: <%s#> .\n\n", namespace)

	for _, e := range r.Entities {
		fmt.Fprintf(&b, "ns:%s a prov:Entity ;\n  ns:type %q ;\n  ns:value %q .\n\n",
			ttlID(e.ID), e.Type, fmt.Sprint(value.ToGo(e.Value)))
	}
	for _, a := range r.Activities {
		fmt.Fprintf(&b, "ns:%s a prov:Activity ;\n  ns:function %q ;\n  ns:signature %q ;\n  prov:startedAtTime %q ;\n  prov:endedAtTime %q .\n\n",
			ttlID(a.ID), a.Function, a.Signature, a.Start.Format(isoLayout), a.End.Format(isoLayout))
	}
	for _, u := range r.UsedEdges {
		fmt.Fprintf(&b, "ns:%s prov:used ns:%s .\n", ttlID(u.Activity), ttlID(u.Entity))
	}
	for _, g := range r.GeneratedEdges {
		fmt.Fprintf(&b, "ns:%s prov:wasGeneratedBy ns:%s .\n", ttlID(g.Entity), ttlID(g.Activity))
	}
	for _, d := range r.DerivedEdges {
		fmt.Fprintf(&b, "ns:%s prov:wasDerivedFrom ns:%s .\n", ttlID(d.Output), ttlID(d.Input))
	}
	return b.String()
}

// ttlID maps an opaque graph id to a Turtle-safe local name: ids are
// "seq-uuid" already, but a leading digit is not a legal local-name
// start character in Turtle, so every id is prefixed.
func ttlID(id string) string { return "n" + id }

// jsonLDContext is the fixed PROV-O context term mapping used by
// ExportJSONLD (spec §6 (iii)).
var jsonLDContext = map[string]any{
	"prov":            "http://www.w3.org/ns/prov#",
	"Entity":          "prov:Entity",
	"Activity":        "prov:Activity",
	"used":            "prov:used",
	"wasGeneratedBy":  "prov:wasGeneratedBy",
	"wasDerivedFrom":  "prov:wasDerivedFrom",
	"startedAtTime":   "prov:startedAtTime",
	"endedAtTime":     "prov:endedAtTime",
}

// ExportJSONLD renders the graph as the spec §6 (iii) JSON-LD form with
// the PROV-O context prepended.
func (r *Recorder) ExportJSONLD(namespace string) ([]byte, error) {
	graph := make([]map[string]any, 0, len(r.Entities)+len(r.Activities))
	for _, e := range r.Entities {
		graph = append(graph, map[string]any{
			"@id":   namespace + "#" + e.ID,
			"@type": "Entity",
			"type":  e.Type,
			"value": value.ToGo(e.Value),
		})
	}
	for _, a := range r.Activities {
		graph = append(graph, map[string]any{
			"@id":           namespace + "#" + a.ID,
			"@type":         "Activity",
			"function":      a.Function,
			"signature":     a.Signature,
			"startedAtTime": a.Start.Format(isoLayout),
			"endedAtTime":   a.End.Format(isoLayout),
		})
	}
	doc := map[string]any{
		"@context": jsonLDContext,
		"@graph":   graph,
		"used":          r.UsedEdges,
		"wasGeneratedBy": r.GeneratedEdges,
		"wasDerivedFrom": r.DerivedEdges,
	}
	return json.MarshalIndent(doc, "", "  ")
}
