// Package jsonpatch computes RFC 6902 patches between two JSON documents.
package jsonpatch

import (
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Between marshals a and b and returns the patch turning a into b.
func Between(a, b any) (json.RawMessage, error) {
	da, err := generic(a)
	if err != nil {
		return nil, err
	}
	db, err := generic(b)
	if err != nil {
		return nil, err
	}
	ops := Diff(da, db, "")
	if ops == nil {
		ops = []Operation{}
	}
	return json.Marshal(ops)
}

func generic(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diff computes the operations transforming a into b. Both are decoded
// JSON values (maps, slices, primitives); path is "" for the root.
func Diff(a, b any, path string) []Operation {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		return []Operation{replaceOp(path, b)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if a != b {
		return []Operation{replaceOp(path, b)}
	}
	return nil
}

// diffObjects walks keys in order so patches are stable across runs.
func diffObjects(a, b map[string]any, path string) []Operation {
	var ops []Operation

	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			ops = append(ops, Operation{Op: "remove", Path: path + "/" + escapeKey(k)})
		}
	}
	for _, k := range sortedKeys(b) {
		child := path + "/" + escapeKey(k)
		av, inA := a[k]
		if !inA {
			ops = append(ops, Operation{Op: "add", Path: child, Value: b[k]})
			continue
		}
		ops = append(ops, Diff(av, b[k], child)...)
	}
	return ops
}

func diffArrays(a, b []any, path string) []Operation {
	var ops []Operation
	common := min(len(a), len(b))

	for i := 0; i < common; i++ {
		ops = append(ops, Diff(a[i], b[i], path+"/"+strconv.Itoa(i))...)
	}
	// Descending so earlier indices stay valid.
	for i := len(a) - 1; i >= common; i-- {
		ops = append(ops, Operation{Op: "remove", Path: path + "/" + strconv.Itoa(i)})
	}
	for i := common; i < len(b); i++ {
		ops = append(ops, Operation{Op: "add", Path: path + "/" + strconv.Itoa(i), Value: b[i]})
	}
	return ops
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func replaceOp(path string, value any) Operation {
	return Operation{Op: "replace", Path: path, Value: value}
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
