package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSecretGeneratesEphemeralWhenUnset(t *testing.T) {
	first, err := sessionSecret("")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(first), 32)

	second, err := sessionSecret("")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSessionSecretRejectsShortConfiguredValues(t *testing.T) {
	_, err := sessionSecret("too-short")
	assert.Error(t, err)
}

func TestSessionSecretKeepsConfiguredValue(t *testing.T) {
	configured := "0123456789abcdef0123456789abcdef"
	got, err := sessionSecret(configured)
	require.NoError(t, err)
	assert.Equal(t, configured, got)
}
