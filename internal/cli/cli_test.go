package cli

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	fcolor "github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/imgexport/pkg/encoders"
	"github.com/provide-io/imgexport/pkg/export"
	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

var runAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)

func init() {
	fcolor.NoColor = true
}

type harness struct {
	app    *App
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, withWebP bool) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("IMGEXPORT_LOG_PATH", "")

	h := &harness{fs: afero.NewMemMapFs(), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = &App{
		Fs:     h.fs,
		Stdout: h.stdout,
		Stderr: h.stderr,
		Clock:  func() time.Time { return runAt },
		Getwd:  func() (string, error) { return "/work", nil },
		ConfigureExport: func(cfg *export.Config) {
			if !withWebP {
				cfg.Encoders = cfg.Encoders.Without(encoders.FormatWebP, encoders.FormatAVIF)
			}
		},
	}
	return h
}

func (h *harness) writeImage(t *testing.T, path string, w, hgt int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, hgt))
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 0x20, A: 0xc0})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(h.fs, path, buf.Bytes(), 0o644))
}

func (h *harness) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(h.fs, path)
	require.NoError(t, err)
	return ok
}

func TestExportDefaults(t *testing.T) {
	h := newHarness(t, true)
	h.writeImage(t, "/work/logo.png", 32, 32)

	code := h.app.Run([]string{"logo.png"})
	require.Equal(t, ExitOK, code, h.stderr.String())

	out := h.stdout.String()
	assert.Contains(t, out, "Converting: /work/logo.png\n")
	assert.Contains(t, out, "\n✓ Export complete:\n")
	for _, name := range []string{"logo.png", "logo.jpg", "logo.webp", "logo.svg", "logo_web_images.zip"} {
		assert.Contains(t, out, "   dist/20250102-030405/"+name+"\n")
		assert.True(t, h.exists(t, "/work/dist/20250102-030405/"+name), name)
	}
	assert.NotContains(t, out, "favicon.ico")
}

func TestOutputDirectoryFlags(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		dir  string
	}{
		{"out dir", []string{"--out-dir", "build"}, "/work/build/20250102-030405"},
		{"absolute out dir", []string{"--out-dir", "/srv/site"}, "/srv/site/20250102-030405"},
		{"public", []string{"--public", "--out-dir", "ignored"}, "/work/public/20250102-030405"},
		{"website", []string{"--website"}, "/work/dist/20250102-030405/web"},
		{"no timestamp", []string{"--no-timestamp"}, "/work/dist"},
		{"website no timestamp", []string{"--website", "--no-timestamp"}, "/work/dist"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, false)
			h.writeImage(t, "/work/a.png", 8, 8)

			code := h.app.Run(append(tc.args, "a.png"))
			require.Equal(t, ExitOK, code, h.stderr.String())
			assert.True(t, h.exists(t, tc.dir+"/a_web_images.zip"))
			assert.True(t, h.exists(t, tc.dir+"/a.svg"))
		})
	}
}

func TestFaviconFlag(t *testing.T) {
	h := newHarness(t, false)
	h.writeImage(t, "/work/logo.png", 64, 64)

	code := h.app.Run([]string{"--favicon", "--no-timestamp", "logo.png"})
	require.Equal(t, ExitOK, code, h.stderr.String())
	for _, name := range []string{"favicon.ico", "apple-touch-icon.png", "favicon-192x192.png", "favicon-512x512.png"} {
		assert.Contains(t, h.stdout.String(), "   dist/"+name+"\n")
	}
	assert.Contains(t, h.stderr.String(), "⚠ webp skipped for logo")
}

func TestMultipleSourcesInOrder(t *testing.T) {
	h := newHarness(t, false)
	h.writeImage(t, "/work/a.png", 8, 8)
	h.writeImage(t, "/in/b.png", 8, 8)

	code := h.app.Run([]string{"--no-timestamp", "a.png", "/in/b.png"})
	require.Equal(t, ExitOK, code, h.stderr.String())

	out := h.stdout.String()
	first := bytes.Index([]byte(out), []byte("Converting: /work/a.png"))
	second := bytes.Index([]byte(out), []byte("Converting: /in/b.png"))
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.True(t, h.exists(t, "/work/dist/b_web_images.zip"))
}

func TestMissingSourceAbortsRun(t *testing.T) {
	h := newHarness(t, false)
	h.writeImage(t, "/work/a.png", 8, 8)
	h.writeImage(t, "/work/c.png", 8, 8)

	code := h.app.Run([]string{"--no-timestamp", "a.png", "missing.png", "c.png"})
	assert.Equal(t, ExitUsage, code)

	assert.Contains(t, h.stdout.String(), "Converting: /work/a.png")
	assert.NotContains(t, h.stdout.String(), "missing.png")
	assert.NotContains(t, h.stdout.String(), "Converting: /work/c.png")
	assert.NotContains(t, h.stdout.String(), "Export complete")
	assert.Contains(t, h.stderr.String(), "source file not found: /work/missing.png")
	assert.Contains(t, h.stderr.String(), "Usage:")
	assert.False(t, h.exists(t, "/work/dist/c.png"))
}

func TestUsageErrors(t *testing.T) {
	testCases := map[string][]string{
		"no sources":       {},
		"unknown flag":     {"--bogus", "a.png"},
		"directory source": {"/work"},
		"verify no args":   {"verify"},
	}
	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, false)
			require.NoError(t, h.fs.MkdirAll("/work", 0o755))
			assert.Equal(t, ExitUsage, h.app.Run(args))
			assert.Contains(t, h.stderr.String(), "Usage:")
		})
	}
}

func TestUndecodableSourceFails(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, afero.WriteFile(h.fs, "/work/notes.png", []byte("plain text"), 0o644))

	code := h.app.Run([]string{"notes.png"})
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.stderr.String(), "exporting /work/notes.png")
	assert.NotContains(t, h.stderr.String(), "Usage:")
}

func TestVersionFlag(t *testing.T) {
	h := newHarness(t, false)
	assert.Equal(t, ExitOK, h.app.Run([]string{"-V"}))
	assert.Contains(t, h.stdout.String(), "imgexport "+Version+"\n")
	assert.Contains(t, h.stdout.String(), "Built: ")
}

func TestConfigFileAndLogLevel(t *testing.T) {
	h := newHarness(t, false)
	h.writeImage(t, "/work/a.png", 8, 8)
	require.NoError(t, afero.WriteFile(h.fs, "/work/export.yaml", []byte("out_dir: site\narchive:\n  layout: structured\n"), 0o644))

	code := h.app.Run([]string{"--config", "/work/export.yaml", "--log-level", "debug", "--no-timestamp", "a.png"})
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.True(t, h.exists(t, "/work/site/a_web_images.zip"))
	assert.Contains(t, h.stderr.String(), "config loaded")

	h = newHarness(t, false)
	code = h.app.Run([]string{"--config", "/work/absent.yaml", "a.png"})
	assert.Equal(t, ExitFailure, code)
}

func TestVerifyCommand(t *testing.T) {
	h := newHarness(t, false)
	h.writeImage(t, "/work/logo.png", 16, 16)
	require.Equal(t, ExitOK, h.app.Run([]string{"--favicon", "--no-timestamp", "logo.png"}), h.stderr.String())

	h.stdout.Reset()
	code := h.app.Run([]string{"verify", "dist/logo_web_images.zip", "--against", "dist"})
	require.Equal(t, ExitOK, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "✓ favicon.ico  sha256:")
	assert.Contains(t, h.stdout.String(), "✓ dist/logo_web_images.zip verified (7 entries)")

	require.NoError(t, afero.WriteFile(h.fs, "/work/dist/logo.svg", []byte("<svg/>"), 0o644))
	h.stdout.Reset()
	code = h.app.Run([]string{"verify", "dist/logo_web_images.zip", "--against", "dist"})
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.stdout.String(), "✗ logo.svg")

	code = h.app.Run([]string{"verify", "nothing.zip"})
	assert.Equal(t, ExitFailure, code)
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitFailure},
		{fmt.Errorf("wrapped: %w", exporterrors.ErrDecode), ExitFailure},
		{fmt.Errorf("%w: x.png", exporterrors.ErrInputNotFound), ExitUsage},
		{&usageError{err: errors.New("bad flag")}, ExitUsage},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.code, ExitCode(tc.err), fmt.Sprint(tc.err))
	}
}
