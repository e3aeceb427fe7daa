package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixWriter(t *testing.T) {
	testCases := []struct {
		name     string
		writes   []string
		expected string
	}{
		{
			name:     "single line",
			writes:   []string{"hello\n"},
			expected: "> hello\n",
		},
		{
			name:     "line split across writes",
			writes:   []string{"hel", "lo\nwor", "ld\n"},
			expected: "> hello\n> world\n",
		},
		{
			name:     "partial line is held back",
			writes:   []string{"done\npartial"},
			expected: "> done\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			pw := NewPrefixWriter("> ", &out)
			for _, w := range tc.writes {
				n, err := pw.Write([]byte(w))
				require.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, tc.expected, out.String())
		})
	}
}

func TestPrefixWriterFlush(t *testing.T) {
	var out bytes.Buffer
	pw := NewPrefixWriter("> ", &out)

	_, err := pw.Write([]byte("tail"))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	require.NoError(t, pw.Flush())
	assert.Equal(t, "> tail", out.String())
	require.NoError(t, pw.Flush())
	assert.Equal(t, "> tail", out.String())
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		level string
		json  bool
	}{
		{"debug", "debug", false},
		{" INFO ", "info", false},
		{"json", "info", true},
		{"json:trace", "trace", true},
		{"json:", "info", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, json := ParseLevel(tc.input)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.json, json)
		})
	}
}

func TestNewLoggerWritesPrefixedText(t *testing.T) {
	t.Setenv("IMGEXPORT_JSON_LOG", "")
	var out bytes.Buffer
	logger := NewLogger("imgexport-test", "info", &out)

	logger.Debug("hidden")
	logger.Info("visible", "format", "png")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], Prefix))
	assert.Contains(t, lines[0], "visible")
	assert.Contains(t, lines[0], "format=png")
}

func TestNewLoggerJSON(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger("imgexport-test", "json:info", &out)
	logger.Info("structured")

	assert.True(t, strings.HasPrefix(out.String(), "{"))
	assert.Contains(t, out.String(), `"@message":"structured"`)
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("IMGEXPORT_LOG_LEVEL", "")
	assert.Equal(t, "warn", GetLogLevel())

	t.Setenv("IMGEXPORT_LOG_LEVEL", "debug")
	assert.Equal(t, "debug", GetLogLevel())
}
