package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Empty(t, flag.DefValue)
}

func TestRootCommandRejectsMissingConfigFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", "/nonexistent/chatgate.yaml"})
	err := cmd.Execute()
	assert.Error(t, err)
}
