package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "ensure-indexes"}, names)

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, ".", flag.DefValue)
}

func TestServe_FailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	root := newRootCmd()
	root.SetArgs([]string{"serve", "--config", t.TempDir()})
	root.SilenceErrors = true

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
}
