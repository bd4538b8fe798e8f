package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecodeBody(t *testing.T) {
	b, err := DecodeBody(`{"message":"I'll be back","extra":1}`)
	require.NoError(t, err)

	msg, ok := b.Message()
	assert.True(t, ok)
	assert.Equal(t, "I'll be back", msg)
}

func TestDecodeBody_Malformed(t *testing.T) {
	inputs := []string{"not-json", "", `{"message":`, `{"message":"a"} trailing`}
	for _, in := range inputs {
		_, err := DecodeBody(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseBody_InvalidUsesSentinel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	msg, ok := ParseBody("not-json").Message()
	assert.True(t, ok)
	assert.Equal(t, "Invalid body string.", msg)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "invalid body string", logs.All()[0].Message)
}

func TestParseBody_ValidDoesNotLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	msg, ok := ParseBody(`{"message":"Hasta la vista, baby"}`).Message()
	assert.True(t, ok)
	assert.Equal(t, "Hasta la vista, baby", msg)
	assert.Equal(t, 0, logs.Len())
}

func TestBody_Message(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
		wantOK  bool
	}{
		{"string", `{"message":"hi"}`, "hi", true},
		{"empty string", `{"message":""}`, "", true},
		{"missing key", `{"quote":"hi"}`, "", false},
		{"null value", `{"message":null}`, "", false},
		{"number value", `{"message":42}`, "42", true},
		{"object value", `{"message":{"a":"b"}}`, `{"a":"b"}`, true},
		{"array document", `["hi"]`, "", false},
		{"string document", `"hi"`, "", false},
		{"null document", `null`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := DecodeBody(tt.body)
			require.NoError(t, err)
			msg, ok := b.Message()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
