package fonts

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/sfnt"
)

func newTestRegistry(t *testing.T, dirs ...string) *Registry {
	t.Helper()
	r, err := NewRegistry(Config{Dirs: dirs})
	require.NoError(t, err)
	return r
}

func TestRegistry_BundledFonts(t *testing.T) {
	r := newTestRegistry(t)
	names := r.Names()
	assert.Contains(t, names, "Go")
	assert.Contains(t, names, "Go Mono")
	assert.Contains(t, names, "Go Medium")
	assert.Contains(t, names, "Go Smallcaps")
	assert.True(t, sort.StringsAreSorted(names))

	names[0] = "mutated"
	assert.NotEqual(t, "mutated", r.Names()[0], "Names must return a copy")
}

func TestRegistry_Resolve(t *testing.T) {
	r := newTestRegistry(t)
	tests := []struct {
		name   string
		family string
		want   string
	}{
		{"bundled", "Go Mono", "Go Mono"},
		{"logical sans", "SansSerif", "Go"},
		{"logical mono", "Monospaced", "Go Mono"},
		{"logical case insensitive", "sansserif", "Go"},
		{"unknown falls back", "No Such Font", DefaultFamily},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := r.Resolve(tt.family, 3)
			assert.Equal(t, tt.want, f.Family)
			assert.NotNil(t, f.Font())
			assert.InDelta(t, 3.0, f.Size, 1e-9)
		})
	}
	assert.True(t, r.Has("Go"))
	assert.True(t, r.Has("Serif"))
	assert.False(t, r.Has("No Such Font"))
}

func TestRegistry_ScansDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// Go Bold shares the family name "Go" with the bundled regular face.
	require.NoError(t, os.WriteFile(filepath.Join(sub, "gobold.ttf"), gobold.TTF, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o600))

	r := newTestRegistry(t, dir, filepath.Join(dir, "missing"))
	count := 0
	for _, n := range r.Names() {
		if n == "Go" {
			count++
		}
	}
	assert.Equal(t, 1, count, "family names are de-duplicated")
	assert.Len(t, r.system, 1)
}

func TestRegistry_ResolveCaseInsensitiveIsStable(t *testing.T) {
	bold, err := sfnt.Parse(gobold.TTF)
	require.NoError(t, err)
	r := newTestRegistry(t)
	r.system = map[string]*sfnt.Font{"Label Sans": bold, "LABEL SANS": bold, "label sans": bold, "Other": bold}
	r.folded = r.buildFolded()

	for i := 0; i < 20; i++ {
		assert.Equal(t, "LABEL SANS", r.Resolve("Label sans", 3).Family)
	}
	assert.Equal(t, "label sans", r.Resolve("label sans", 3).Family, "exact match wins")
	assert.Equal(t, "Other", r.Resolve("OTHER", 3).Family)
	assert.True(t, r.Has("other"))
	assert.False(t, r.Has("missing"))
}

func TestRegistry_DisableSystem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gobold.ttf"), gobold.TTF, 0o600))
	r, err := NewRegistry(Config{Dirs: []string{dir}, DisableSystem: true})
	require.NoError(t, err)
	assert.Empty(t, r.system)
}

func TestUsable(t *testing.T) {
	tests := []struct {
		family string
		want   bool
	}{
		{"DejaVu Sans", true},
		{"OCR-B", true},
		{"Symbol", false},
		{"Wingdings 2", false},
		{"Webdings", false},
		{"Zapf Dingbats", false},
		{"Noto Color Emoji", false},
		{"Marlett", false},
		{"MT Extra", false},
		{"Dialog", false},
		{"DialogInput", false},
		{"Monospaced", false},
		{"Serif", false},
		{"SansSerif", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			assert.Equal(t, tt.want, Usable(tt.family))
		})
	}
}

func TestFaceMetrics(t *testing.T) {
	r := newTestRegistry(t)
	f := r.Resolve("Go", 10)

	w := f.Width("0123456789")
	assert.Greater(t, w, 0.0)
	assert.InDelta(t, 2*w, f.WithSize(20).Width("0123456789"), 1e-6)
	assert.Equal(t, 0.0, f.Width(""))

	assert.Greater(t, f.Ascent(), 0.0)
	assert.Greater(t, f.Descent(), 0.0)
	assert.Greater(t, f.CapHeight(), 0.0)
	assert.Less(t, f.CapHeight(), f.Ascent()+1e-9)

	var zero Face
	assert.Equal(t, 0.0, zero.Width("abc"))
}
