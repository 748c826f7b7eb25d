package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "dev"
	assert.Equal(t, "slackfocus version dev (built from source)", Full())

	Version = "1.2.3"
	assert.Equal(t, "slackfocus version 1.2.3", Full())
}

func TestUserAgent(t *testing.T) {
	assert.Contains(t, UserAgent(), "slackfocus/")
}
