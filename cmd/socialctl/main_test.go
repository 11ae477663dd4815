package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--storage", "memory"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRemoveIdentityCommand(t *testing.T) {
	out, err := execute(t, "remove-identity", "ghost")
	require.NoError(t, err)

	var result struct {
		IdentityID   string `json:"identityId"`
		EdgesRemoved int    `json:"edgesRemoved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "ghost", result.IdentityID)
	assert.Zero(t, result.EdgesRemoved)
}

func TestCountsCommand_UnknownIdentity(t *testing.T) {
	_, err := execute(t, "counts", "ghost")
	assert.Error(t, err)
}

func TestCommandsRequireIdentity(t *testing.T) {
	_, err := execute(t, "counts")
	assert.Error(t, err)

	_, err = execute(t, "--storage", "cassandra", "counts", "x")
	assert.Error(t, err)
}
