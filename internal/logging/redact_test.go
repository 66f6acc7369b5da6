package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("abcd"))
	assert.Equal(t, "********", MaskSecret("abcdefgh"))

	masked := MaskSecret("sk-proj-abcdefghijklmnop")
	assert.True(t, strings.HasPrefix(masked, "sk-p"))
	assert.True(t, strings.HasSuffix(masked, "mnop"))
	assert.NotContains(t, masked, "abcdefghijkl")
	assert.Len(t, masked, len("sk-proj-abcdefghijklmnop"))
}

func TestRedactKeyValuePairs(t *testing.T) {
	in := `connecting with api_key="sk-proj-abcdefghijklmnopqrst" to upstream`
	out := Redact(in)
	assert.NotContains(t, out, "abcdefghijklmnop")
	assert.Contains(t, out, "api_key=")
}

func TestRedactBareOpenAIKey(t *testing.T) {
	out := Redact("request failed for key sk-abcdefghijklmnopqrstuvwxyz012345")
	assert.NotContains(t, out, "cdefghijklmnopqrstuvwxyz0123")
}

func TestRedactLeavesPlainTextAlone(t *testing.T) {
	in := "daily scores computed for 2025-06-15"
	assert.Equal(t, in, Redact(in))
}
