package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvidersAll(t *testing.T) {
	names, err := parseProviders("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"brave", "exa", "linkup", "parallel", "tavily"}, names)

	names, err = parseProviders("")
	require.NoError(t, err)
	assert.Len(t, names, 5)
}

func TestParseProvidersSubset(t *testing.T) {
	names, err := parseProviders("tavily, Exa ,tavily")
	require.NoError(t, err)
	assert.Equal(t, []string{"exa", "tavily"}, names)
}

func TestParseProvidersUnknown(t *testing.T) {
	_, err := parseProviders("exa,bing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "bing"`)
}

func TestParseProvidersEmptySelection(t *testing.T) {
	_, err := parseProviders(" , ,")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers selected")
}
