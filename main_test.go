package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMainVersion(t *testing.T) {
	assert.NoError(t, runMain([]string{"version"}))
}

func TestRunMainUnknownSubcommand(t *testing.T) {
	assert.ErrorContains(t, runMain([]string{"paint-everything"}), "unknown command")
}
