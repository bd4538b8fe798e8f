package quote

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// InvalidBodyMessage replaces the message of a body that failed to decode.
const InvalidBodyMessage = "Invalid body string."

// Body is a decoded response body. Value holds whatever JSON document the
// endpoint returned; only its "message" field is ever read.
type Body struct {
	Value any
}

// invalidBody is the sentinel returned by ParseBody on decode failure.
func invalidBody() Body {
	return Body{Value: map[string]any{"message": InvalidBodyMessage}}
}

// DecodeBody decodes body as a single JSON document. Trailing data after
// the document is malformed input.
func DecodeBody(body string) (Body, error) {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return Body{}, eris.Wrap(err, "quote: decode body")
	}
	return Body{Value: v}, nil
}

// ParseBody decodes body and never fails: malformed input is logged and
// replaced by a body whose message is InvalidBodyMessage.
func ParseBody(body string) Body {
	b, err := DecodeBody(body)
	if err != nil {
		zap.L().Warn("invalid body string", zap.Error(err))
		return invalidBody()
	}
	return b
}

// Message returns the "message" field. ok is false when the document is not
// an object, has no message key, or the value is null. Non-string values are
// returned as compact JSON.
func (b Body) Message() (msg string, ok bool) {
	obj, isObj := b.Value.(map[string]any)
	if !isObj {
		return "", false
	}
	raw, found := obj["message"]
	if !found || raw == nil {
		return "", false
	}
	if s, isStr := raw.(string); isStr {
		return s, true
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", false
	}
	return string(data), true
}
