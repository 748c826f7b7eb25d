package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeUsage, ExitUsage},
		{CodeNotFound, ExitNotFound},
		{CodeAuth, ExitAuth},
		{CodeRateLimit, ExitRateLimit},
		{CodeNetwork, ExitNetwork},
		{CodeAPI, ExitAPI},
		{CodeStore, ExitStore},
		{"something_else", ExitAPI},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCodeFor(tt.code), tt.code)
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "boom", ErrUsage("boom").Error())
	assert.Equal(t, "boom: fix it", ErrUsageHint("boom", "fix it").Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrNetwork(cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrRateLimitCarriesRetryAfter(t *testing.T) {
	err := ErrRateLimit(30)
	assert.True(t, err.Retryable)
	assert.Equal(t, 30, err.RetryAfter)
	assert.Equal(t, ExitRateLimit, err.ExitCode())
	assert.Contains(t, err.Hint, "30 seconds")
}

func TestAsErrorWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("something broke")
	e := AsError(plain)
	require.NotNil(t, e)
	assert.Equal(t, "something broke", e.Message)

	wrapped := fmt.Errorf("context: %w", ErrAuth("no token"))
	e = AsError(wrapped)
	assert.Equal(t, CodeAuth, e.Code)
}

func TestWriterOKJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.OK(map[string]int{"count": 2},
		WithSummary("two things"),
		WithMeta("elapsed_ms", 12),
	))

	var resp struct {
		OK      bool           `json:"ok"`
		Data    map[string]int `json:"data"`
		Summary string         `json:"summary"`
		Meta    map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Data["count"])
	assert.Equal(t, "two things", resp.Summary)
	assert.EqualValues(t, 12, resp.Meta["elapsed_ms"])
}

func TestWriterErrJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.Err(ErrAuth("No Slack token configured")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeAuth, resp.Code)
	assert.Equal(t, "No Slack token configured", resp.Error)
	assert.Contains(t, resp.Hint, "auth login")
}

func TestWriterQuietEmitsDataOnly(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf})

	require.NoError(t, w.OK(map[string]int{"count": 2}, WithSummary("ignored")))

	var data map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, 2, data["count"])
	assert.NotContains(t, buf.String(), "ignored")
	assert.NotContains(t, buf.String(), `"ok"`)
}

func TestWriterAutoFallsBackToJSONWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatAuto, Writer: &buf})

	require.NoError(t, w.OK("hello"))

	assert.Contains(t, buf.String(), `"ok": true`)
}

type fakeLines struct{}

func (fakeLines) RenderLines() []string { return []string{"first line", "second line"} }

func TestWriterStyledUsesLineRenderer(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatStyled, Writer: &buf})

	require.NoError(t, w.OK(fakeLines{}, WithSummary("two lines")))

	out := buf.String()
	assert.Contains(t, out, "first line")
	assert.Contains(t, out, "second line")
	assert.Contains(t, out, "two lines")
}

func TestWriterStyledError(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatStyled, Writer: &buf})

	require.NoError(t, w.Err(ErrNotFound("Project", "Nope")))

	out := buf.String()
	assert.Contains(t, out, "Project not found: Nope")
}
