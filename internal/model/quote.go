package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// RawResponse is what the transport returns for a single GET.
type RawResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// ResultKind names the variant held by a Result.
type ResultKind string

const (
	ResultKindQuote   ResultKind = "Arnie Quote"
	ResultKindFailure ResultKind = "FAILURE"
)

// Result is a normalized quote lookup. Exactly one variant is populated,
// and it serializes as a single-key object keyed by its kind.
type Result struct {
	Kind    ResultKind
	Message string
}

// NewQuote returns the success variant.
func NewQuote(message string) Result {
	return Result{Kind: ResultKindQuote, Message: message}
}

// NewFailure returns the failure variant.
func NewFailure(message string) Result {
	return Result{Kind: ResultKindFailure, Message: message}
}

// IsQuote reports whether r holds the success variant.
func (r Result) IsQuote() bool { return r.Kind == ResultKindQuote }

// IsFailure reports whether r holds the failure variant.
func (r Result) IsFailure() bool { return r.Kind == ResultKindFailure }

// Valid reports whether Kind is one of the known variants.
func (r Result) Valid() bool {
	return r.Kind == ResultKindQuote || r.Kind == ResultKindFailure
}

// MarshalJSON encodes r as {"<kind>": "<message>"}.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, eris.Errorf("model: unknown result kind %q", r.Kind)
	}
	return json.Marshal(map[string]string{string(r.Kind): r.Message})
}

// UnmarshalJSON accepts exactly one known key.
func (r *Result) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return eris.Wrap(err, "model: decode result")
	}
	if len(m) != 1 {
		return eris.Errorf("model: result must have exactly one variant, got %d", len(m))
	}
	for k, v := range m {
		res := Result{Kind: ResultKind(k), Message: v}
		if !res.Valid() {
			return eris.Errorf("model: unknown result kind %q", k)
		}
		*r = res
	}
	return nil
}

// MarshalYAML mirrors the JSON shape.
func (r Result) MarshalYAML() (any, error) {
	if !r.Valid() {
		return nil, eris.Errorf("model: unknown result kind %q", r.Kind)
	}
	return map[string]string{string(r.Kind): r.Message}, nil
}
