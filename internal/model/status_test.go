package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTerminalStatus(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		known     bool
		succeeded bool
		tagValue  string
	}{
		{name: "engine wire form succeeded", raw: "SUCCEEDED", known: true, succeeded: true, tagValue: "Succeeded"},
		{name: "engine wire form failed", raw: "FAILED", known: true, tagValue: "Failed"},
		{name: "canonical form", raw: "Succeeded", known: true, succeeded: true, tagValue: "Succeeded"},
		{name: "unrecognized value preserved verbatim", raw: "PARTIAL_SUCCESS", tagValue: "PARTIAL_SUCCESS"},
		{name: "empty value", raw: "", tagValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ParseTerminalStatus(tt.raw)
			assert.Equal(t, tt.known, ts.Known())
			assert.Equal(t, tt.succeeded, ts.Succeeded())
			assert.Equal(t, tt.tagValue, ts.TagValue())
			assert.Equal(t, tt.raw, ts.Raw())
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
	assert.False(t, StatusUnknown.Terminal())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusSubmitted, ParseStatus("Submitted"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
	assert.Equal(t, StatusUnknown, ParseStatus("SUCCEEDED")) // raw engine value is not a stored status
}

func TestGuessContentType(t *testing.T) {
	assert.Contains(t, GuessContentType("report.txt"), "text/plain")
	assert.Equal(t, "application/pdf", GuessContentType("scan.pdf"))
	assert.Equal(t, "application/octet-stream", GuessContentType("6A1B2C3D"))
	assert.Equal(t, "application/octet-stream", GuessContentType(""))
}

func TestArtifactIDs(t *testing.T) {
	assert.Equal(t, "doc-1.txt", TextArtifactID("doc-1"))
	assert.Equal(t, "doc-1.json", JSONArtifactID("doc-1"))
}
