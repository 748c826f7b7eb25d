package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackfocus/slackfocus/internal/output"
)

func TestApplyJQ(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{"name": "alice", "id": "U1"},
		"tags": []any{"a", "b", "c"},
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{"field access", ".user.name", "alice"},
		{"identity", ".tags | length", 3},
		{"multiple results collapse to slice", ".tags[]", []any{"a", "b", "c"}},
		{"missing field is null", ".nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyJQ(tt.expr, data)
			require.NoError(t, err)
			assert.EqualValues(t, tt.want, got)
		})
	}
}

func TestApplyJQInvalidExpression(t *testing.T) {
	_, err := applyJQ(".[broken", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestApplyJQRuntimeError(t *testing.T) {
	_, err := applyJQ(".foo | .[0]", map[string]any{"foo": "not-an-array"})
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}
