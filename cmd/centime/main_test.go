package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"classify",
		"correct",
		"patterns",
		"reload",
		"stats",
		"import",
		"import-ofx",
		"migrate",
		"version",
	} {
		assert.True(t, names[want], "command %q is not registered", want)
	}
}
