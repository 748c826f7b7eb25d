package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackfocus/slackfocus/internal/commands"
	"github.com/slackfocus/slackfocus/internal/output"
)

func TestTransformCobraError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing flag value", "flag needs an argument: --token", "--token requires a value"},
		{"unknown flag", "unknown flag: --frobnicate", "Unknown option: --frobnicate"},
		{"unknown shorthand", "unknown shorthand flag: 'x' in -x", "Unknown option: -x"},
		{"missing argument", "accepts 1 arg(s), received 0", "Argument required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transformCobraError(errors.New(tt.in))
			apiErr := output.AsError(got)
			assert.Equal(t, output.CodeUsage, apiErr.Code)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestTransformCobraErrorPassesThroughOthers(t *testing.T) {
	in := output.ErrAuth("No Slack token configured")
	assert.Same(t, error(in), transformCobraError(in))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, sub := range commands.All() {
		root.AddCommand(sub)
	}

	want := []string{"reschedule", "import", "auth", "config", "api", "doctor"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootGlobalFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"json", "quiet", "styled", "project", "config", "verbose", "stats"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}
