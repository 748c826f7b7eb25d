package appctx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackfocus/slackfocus/internal/config"
	"github.com/slackfocus/slackfocus/internal/observability"
	"github.com/slackfocus/slackfocus/internal/output"
)

func TestWithAppRoundTrip(t *testing.T) {
	t.Setenv("SLACKFOCUS_NO_KEYRING", "1")

	app := NewApp(config.Default())
	ctx := WithApp(context.Background(), app)

	assert.Same(t, app, FromContext(ctx))
}

func TestFromContextMissing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestOKAttachesStatsWhenRequested(t *testing.T) {
	var buf bytes.Buffer
	app := &App{
		Collector: observability.NewSessionCollector(),
		Output:    output.New(output.Options{Format: output.FormatJSON, Writer: &buf}),
		Flags:     GlobalFlags{Stats: true},
	}

	require.NoError(t, app.OK(map[string]int{"count": 3}))

	var resp struct {
		OK   bool           `json:"ok"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Contains(t, resp.Meta, "stats")
}

func TestOKOmitsStatsByDefault(t *testing.T) {
	var buf bytes.Buffer
	app := &App{
		Collector: observability.NewSessionCollector(),
		Output:    output.New(output.Options{Format: output.FormatJSON, Writer: &buf}),
	}

	require.NoError(t, app.OK(map[string]int{"count": 3}))

	var resp struct {
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.NotContains(t, resp.Meta, "stats")
}
