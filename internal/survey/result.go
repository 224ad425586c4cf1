// Package survey carries completed survey results as flat identifier-keyed
// answers and renders the reminder step as an interactive form.
package survey

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Result is a completed survey or task result.
type Result struct {
	Identifier string         `json:"identifier,omitempty"`
	Answers    map[string]any `json:"answers"`
}

func NewResult(identifier string) *Result {
	return &Result{Identifier: identifier, Answers: map[string]any{}}
}

// Set records an answer and returns r for chaining.
func (r *Result) Set(key string, value any) *Result {
	if r.Answers == nil {
		r.Answers = map[string]any{}
	}
	r.Answers[key] = value
	return r
}

func (r *Result) Bool(key string) (bool, bool) {
	v, ok := r.Answers[key].(bool)
	return v, ok
}

func (r *Result) String(key string) (string, bool) {
	v, ok := r.Answers[key].(string)
	return v, ok
}

// Int accepts Go integers and integral JSON numbers.
func (r *Result) Int(key string) (int, bool) {
	switch v := r.Answers[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	default:
		return 0, false
	}
}

// stepResult is one entry of a task runner's step history.
type stepResult struct {
	Identifier string `json:"identifier"`
	Value      any    `json:"value"`
}

type resultFile struct {
	Identifier  string         `json:"identifier"`
	Answers     map[string]any `json:"answers"`
	StepHistory []stepResult   `json:"stepHistory"`
}

// Parse decodes a result document. Answers may be given as an "answers"
// object or as a "stepHistory" list of {identifier, value}; for repeated
// identifiers the first step wins.
func Parse(r io.Reader) (*Result, error) {
	var f resultFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding survey result: %w", err)
	}
	res := NewResult(f.Identifier)
	for k, v := range f.Answers {
		res.Answers[k] = v
	}
	for _, step := range f.StepHistory {
		if _, seen := res.Answers[step.Identifier]; !seen && step.Value != nil {
			res.Answers[step.Identifier] = step.Value
		}
	}
	return res, nil
}

func Load(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
