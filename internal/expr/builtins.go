package expr

import (
	"fmt"
	"math"

	"github.com/typeforge/synthcore/internal/config"
	"github.com/typeforge/synthcore/internal/value"
)

// BuiltinFunc is a whitelisted function implementation. Evaluation
// never looks up a call-position identifier anywhere else: this map is
// the entire universe of callable names (spec §4.4, §9 Design Notes).
type BuiltinFunc func(args []value.Value) (value.Value, error)

var builtins = map[string]BuiltinFunc{
	config.FnAbs:        biAbs,
	config.FnRound:      biRound,
	config.FnMin:        biMin,
	config.FnMax:        biMax,
	config.FnSum:        biSum,
	config.FnLen:        biLen,
	config.FnSqrt:       biMath1(math.Sqrt),
	config.FnLog:        biMath1(math.Log),
	config.FnExp:        biMath1(math.Exp),
	config.FnSin:        biMath1(math.Sin),
	config.FnCos:        biMath1(math.Cos),
	config.FnTan:        biMath1(math.Tan),
	config.FnIsInstance: biIsInstance,
	config.FnDict:       biDict,
	config.FnList:       biList,
	config.FnTuple:      biTuple,
	config.FnStr:        biStr,
	config.FnInt:        biInt,
	config.FnFloat:      biFloat,
	config.FnDir:        biDir,
}

// LookupBuiltin returns the implementation for name and whether it is
// whitelisted. There is deliberately no fallback path for a miss.
func LookupBuiltin(name string) (BuiltinFunc, bool) {
	f, ok := builtins[name]
	return f, ok
}

func asNumber(v value.Value) (float64, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %s", v.Kind())
	}
	return float64(n), nil
}

func biMath1(f func(float64) float64) BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected exactly 1 argument, got %d", len(args))
		}
		n, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		return value.Number(f(n)), nil
	}
}

func biAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("abs: expected exactly 1 argument, got %d", len(args))
	}
	n, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	return value.Number(math.Abs(n)), nil
}

func biRound(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("round: expected 1 or 2 arguments, got %d", len(args))
	}
	n, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	digits := 0.0
	if len(args) == 2 {
		digits, err = asNumber(args[1])
		if err != nil {
			return nil, err
		}
	}
	mult := math.Pow(10, digits)
	return value.Number(math.Round(n*mult) / mult), nil
}

func biMin(args []value.Value) (value.Value, error) {
	nums, err := asNumbers(args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("min: expected at least 1 argument")
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return value.Number(m), nil
}

func biMax(args []value.Value) (value.Value, error) {
	nums, err := asNumbers(args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("max: expected at least 1 argument")
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n > m {
			m = n
		}
	}
	return value.Number(m), nil
}

func biSum(args []value.Value) (value.Value, error) {
	items := args
	if len(args) == 1 {
		if t, ok := args[0].(value.Tuple); ok {
			items = t
		}
	}
	nums, err := asNumbers(items)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	return value.Number(total), nil
}

func asNumbers(args []value.Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, err := asNumber(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func biLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len: expected exactly 1 argument, got %d", len(args))
	}
	switch x := args[0].(type) {
	case value.Tuple:
		return value.Number(len(x)), nil
	case value.Record:
		return value.Number(len(x)), nil
	case value.Str:
		return value.Number(len(string(x))), nil
	default:
		return nil, fmt.Errorf("len: unsupported argument kind %s", args[0].Kind())
	}
}

func biIsInstance(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("isinstance: expected exactly 2 arguments, got %d", len(args))
	}
	kindName, ok := args[1].(value.Str)
	if !ok {
		return nil, fmt.Errorf("isinstance: second argument must be a string kind name")
	}
	return value.Bool(args[0].Kind().String() == string(kindName)), nil
}

func biDict(args []value.Value) (value.Value, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("dict: expected an even number of key/value arguments, got %d", len(args))
	}
	r := make(value.Record, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		k, ok := args[i].(value.Str)
		if !ok {
			return nil, fmt.Errorf("dict: key at position %d must be a string", i)
		}
		r[string(k)] = args[i+1]
	}
	return r, nil
}

func biList(args []value.Value) (value.Value, error) {
	t := make(value.Tuple, len(args))
	copy(t, args)
	return t, nil
}

func biTuple(args []value.Value) (value.Value, error) {
	t := make(value.Tuple, len(args))
	copy(t, args)
	return t, nil
}

func biStr(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str: expected exactly 1 argument, got %d", len(args))
	}
	return value.Str(args[0].String()), nil
}

func biInt(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("int: expected exactly 1 argument, got %d", len(args))
	}
	switch x := args[0].(type) {
	case value.Number:
		return value.Number(math.Trunc(float64(x))), nil
	case value.Str:
		var f float64
		if _, err := fmt.Sscanf(string(x), "%g", &f); err != nil {
			return nil, fmt.Errorf("int: cannot convert %q to a number", string(x))
		}
		return value.Number(math.Trunc(f)), nil
	default:
		return nil, fmt.Errorf("int: unsupported argument kind %s", args[0].Kind())
	}
}

func biFloat(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("float: expected exactly 1 argument, got %d", len(args))
	}
	switch x := args[0].(type) {
	case value.Number:
		return x, nil
	case value.Str:
		var f float64
		if _, err := fmt.Sscanf(string(x), "%g", &f); err != nil {
			return nil, fmt.Errorf("float: cannot convert %q to a number", string(x))
		}
		return value.Number(f), nil
	default:
		return nil, fmt.Errorf("float: unsupported argument kind %s", args[0].Kind())
	}
}

// biDir returns the sorted field names of a record. Records are the only
// value kind with named fields, so any other argument (tuples included)
// is an error.
func biDir(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("dir: expected exactly 1 argument, got %d", len(args))
	}
	r, ok := args[0].(value.Record)
	if !ok {
		return nil, fmt.Errorf("dir: expected a record, got %s", args[0].Kind())
	}
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sortStrings(names)
	out := make(value.Tuple, len(names))
	for i, n := range names {
		out[i] = value.Str(n)
	}
	return out, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
