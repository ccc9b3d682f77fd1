package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommandPath(t *testing.T) {
	tests := []struct {
		name     string
		setup    func() *cobra.Command
		expected string
	}{
		{
			name: "root command",
			setup: func() *cobra.Command {
				return &cobra.Command{Use: "workshopctl"}
			},
			expected: "root",
		},
		{
			name: "single subcommand",
			setup: func() *cobra.Command {
				root := &cobra.Command{Use: "workshopctl"}
				child := &cobra.Command{Use: "login"}
				root.AddCommand(child)
				return child
			},
			expected: "login",
		},
		{
			name: "nested subcommand",
			setup: func() *cobra.Command {
				root := &cobra.Command{Use: "workshopctl"}
				parent := &cobra.Command{Use: "service-requests"}
				child := &cobra.Command{Use: "complete <id>"}
				root.AddCommand(parent)
				parent.AddCommand(child)
				return child
			},
			expected: "service-requests.complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildCommandPath(tt.setup()))
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, "dev", GetVersion())
}

func TestVersionCmd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WORKSHOP_SESSION_STORE", "memory")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "workshopctl version dev")
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"login", "logout", "whoami", "service-requests", "customers", "invoices",
		"reports", "dashboard", "api", "smoke", "mock-server", "config", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
