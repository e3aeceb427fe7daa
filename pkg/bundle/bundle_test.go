package bundle

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

var created = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func sampleEntries(t *testing.T, fs afero.Fs) []Entry {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/out/logo.png", []byte("png-bytes"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/out/logo.webp", bytes.Repeat([]byte("webp"), 512), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/out/favicon.ico", []byte("ico-bytes"), 0o644))
	return []Entry{
		{Name: "logo.png", Category: CategoryStandard, Path: "/out/logo.png"},
		{Name: "logo.svg", Category: CategoryStandard, Data: []byte("<svg/>")},
		{Name: "logo.webp", Category: CategoryWeb, Path: "/out/logo.webp"},
		{Name: "favicon.ico", Category: CategoryFavicon, Path: "/out/favicon.ico"},
	}
}

func TestParseLayoutAndMethod(t *testing.T) {
	layouts := map[string]Layout{"": LayoutFlat, "FLAT": LayoutFlat, "structured": LayoutStructured}
	for input, expected := range layouts {
		got, err := ParseLayout(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got)
	}
	_, err := ParseLayout("nested")
	assert.Error(t, err)

	methods := map[string]Method{"": MethodDeflate, "bzip2": MethodBzip2, " Store ": MethodStore}
	for input, expected := range methods {
		got, err := ParseMethod(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got)
	}
	_, err = ParseMethod("zstd")
	assert.Error(t, err)
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "logo.png", LayoutFlat.EntryName("logo", CategoryStandard, "logo.png"))
	assert.Equal(t, "logo/web/logo.webp", LayoutStructured.EntryName("logo", CategoryWeb, "logo.webp"))
	assert.Equal(t, "logo/standard/x.png", LayoutStructured.EntryName("logo", "", "x.png"))
}

func TestWriteRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		layout Layout
		method Method
		names  []string
	}{
		{
			name:   "flat deflate",
			layout: LayoutFlat,
			method: MethodDeflate,
			names:  []string{"logo.png", "logo.svg", "logo.webp", "favicon.ico"},
		},
		{
			name:   "flat bzip2",
			layout: LayoutFlat,
			method: MethodBzip2,
			names:  []string{"logo.png", "logo.svg", "logo.webp", "favicon.ico"},
		},
		{
			name:   "structured store",
			layout: LayoutStructured,
			method: MethodStore,
			names: []string{
				"logo/standard/logo.png",
				"logo/standard/logo.svg",
				"logo/web/logo.webp",
				"logo/favicon/favicon.ico",
				ReadmeName,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			entries := sampleEntries(t, fs)

			opts := DefaultOptions()
			opts.Layout = tc.layout
			opts.Method = tc.method
			opts.Stem = "logo"
			opts.SourceName = "/src/logo.png"
			opts.Created = created

			w, err := NewWriter(fs, hclog.NewNullLogger(), opts)
			require.NoError(t, err)
			manifest, err := w.Write("/out/logo_web_images.zip", entries)
			require.NoError(t, err)
			assert.Equal(t, tc.names, manifest.Entries)
			assert.Positive(t, manifest.Size)

			archive, err := Open(fs, "/out/logo_web_images.zip")
			require.NoError(t, err)
			defer archive.Close()

			infos := archive.Entries()
			require.Len(t, infos, len(tc.names))
			for i, info := range infos {
				assert.Equal(t, tc.names[i], info.Name)
				assert.Equal(t, tc.method.zipID(), info.Method)
			}

			for i, e := range entries {
				got, err := archive.ReadEntry(tc.names[i])
				require.NoError(t, err)
				want := e.Data
				if want == nil {
					want, err = afero.ReadFile(fs, e.Path)
					require.NoError(t, err)
				}
				assert.Equal(t, want, got, e.Name)
			}
		})
	}
}

func TestReadme(t *testing.T) {
	opts := DefaultOptions()
	opts.Stem = "logo"
	opts.SourceName = "/src/logo.png"
	opts.Created = created

	readme := string(Readme(opts, []Entry{
		{Name: "logo.png", Category: CategoryStandard},
		{Name: "logo.avif", Category: CategoryWeb},
	}))
	assert.Contains(t, readme, "Web image export: logo.png")
	assert.Contains(t, readme, "Generated: 2025-03-14 09:26:53")
	assert.Contains(t, readme, "logo/standard/")
	assert.Contains(t, readme, "    logo.avif")
	assert.False(t, strings.Contains(readme, "logo/favicon/"), "empty categories are omitted")
}

func TestWriteFailureRemovesArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, nil, DefaultOptions())
	require.NoError(t, err)

	_, err = w.Write("/out.zip", []Entry{{Name: "gone.png", Path: "/missing.png"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, exporterrors.ErrArchive)

	exists, err := afero.Exists(fs, "/out.zip")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = w.Write("/dup.zip", []Entry{
		{Name: "a.png", Data: []byte("1")},
		{Name: "a.png", Data: []byte("2")},
	})
	assert.ErrorIs(t, err, exporterrors.ErrArchive)
}

func TestNewWriterRejectsLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.Level = 12
	_, err := NewWriter(afero.NewMemMapFs(), nil, opts)
	assert.Error(t, err)
}

func TestReadEntryMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, nil, DefaultOptions())
	require.NoError(t, err)
	_, err = w.Write("/a.zip", []Entry{{Name: "a.txt", Data: []byte("a")}})
	require.NoError(t, err)

	archive, err := Open(fs, "/a.zip")
	require.NoError(t, err)
	defer archive.Close()

	assert.Equal(t, []string{"a.txt"}, archive.Names())
	_, err = archive.ReadEntry("b.txt")
	assert.ErrorIs(t, err, exporterrors.ErrArchive)

	_, err = Open(fs, "/nope.zip")
	assert.ErrorIs(t, err, exporterrors.ErrArchive)
}

func TestArchiveReadableByPlainZipReader(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := NewWriter(fs, nil, DefaultOptions())
	require.NoError(t, err)
	_, err = w.Write("/a.zip", []Entry{{Name: "a.txt", Data: []byte("hello")}})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/a.zip")
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, uint16(zip.Deflate), zr.File[0].Method)
}
