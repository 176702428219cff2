// Package fonts provides the font families available for human-readable
// barcode text: the bundled Go fonts plus usable system fonts.
package fonts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/sfnt"
)

// DefaultFamily is used when a requested family cannot be found.
const DefaultFamily = "Go"

// DefaultDirs are the system font directories scanned by default.
var DefaultDirs = []string{"/usr/share/fonts", "/usr/local/share/fonts", "/Library/Fonts", "C:\\Windows\\Fonts"}

// Config controls which fonts a Registry loads.
type Config struct {
	// Dirs are scanned recursively for .ttf and .otf files.
	Dirs []string
	// DisableSystem skips the system font scan.
	DisableSystem bool
	Logger        *slog.Logger
}

// Registry is the immutable font table built at startup.
type Registry struct {
	supplementary map[string]*sfnt.Font
	system        map[string]*sfnt.Font
	folded        map[string]string // lowercase system family -> registered name
	names         []string
}

// logicalNames maps generic family names to bundled families.
var logicalNames = map[string]string{
	"sansserif":   "Go",
	"serif":       "Go",
	"dialog":      "Go",
	"monospaced":  "Go Mono",
	"dialoginput": "Go Mono",
}

// excludedFragments mark families that cannot render barcode text.
var excludedFragments = []string{"symbol", "wingding", "webding", "dingbat", "emoji", "marlett", "mt extra"}

// NewRegistry parses the bundled fonts and scans the configured directories.
func NewRegistry(cfg Config) (*Registry, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sup, err := loadSupplementary()
	if err != nil {
		return nil, err
	}
	r := &Registry{supplementary: sup, system: map[string]*sfnt.Font{}}
	if !cfg.DisableSystem {
		for _, dir := range cfg.Dirs {
			r.scanDir(dir, logger)
		}
	}
	r.folded = r.buildFolded()
	r.names = r.buildNames()
	logger.Debug("font registry ready", "supplementary", len(r.supplementary), "system", len(r.system))
	return r, nil
}

func loadSupplementary() (map[string]*sfnt.Font, error) {
	out := make(map[string]*sfnt.Font)
	for _, data := range [][]byte{goregular.TTF, gomono.TTF, gomedium.TTF, gosmallcaps.TTF} {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse bundled font: %w", err)
		}
		family, err := familyName(f)
		if err != nil {
			return nil, err
		}
		out[family] = f
	}
	return out, nil
}

func familyName(f *sfnt.Font) (string, error) {
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", fmt.Errorf("read font family: %w", err)
	}
	return name, nil
}

func (r *Registry) scanDir(dir string, logger *slog.Logger) {
	if _, err := os.Stat(dir); err != nil {
		return
	}
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".ttf" && ext != ".otf" {
			return nil
		}
		data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from configured font dirs
		if err != nil {
			logger.Debug("skip font", "path", path, "error", err)
			return nil
		}
		f, err := sfnt.Parse(data)
		if err != nil {
			logger.Debug("skip font", "path", path, "error", err)
			return nil
		}
		family, err := familyName(f)
		if err != nil || !Usable(family) || !canDisplay(f, 'A', '9') {
			return nil
		}
		if _, exists := r.system[family]; !exists {
			r.system[family] = f
		}
		return nil
	})
	if walkErr != nil {
		logger.Warn("font scan failed", "dir", dir, "error", walkErr)
	}
}

// Usable reports whether a family name passes the name filter: no symbol,
// dingbat or emoji families and no logical names.
func Usable(family string) bool {
	lower := strings.ToLower(strings.TrimSpace(family))
	if lower == "" {
		return false
	}
	if _, logical := logicalNames[lower]; logical {
		return false
	}
	for _, frag := range excludedFragments {
		if strings.Contains(lower, frag) {
			return false
		}
	}
	return true
}

func (r *Registry) buildNames() []string {
	seen := make(map[string]bool, len(r.system)+len(r.supplementary))
	names := make([]string, 0, len(seen))
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for n := range r.system {
		add(n)
	}
	for n := range r.supplementary {
		add(n)
	}
	sort.Strings(names)
	return names
}

// Names returns the sorted, de-duplicated usable family names.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve returns a face for the family. Lookup order: bundled fonts,
// logical names, system fonts (case-insensitive), then DefaultFamily.
func (r *Registry) Resolve(family string, size float64) Face {
	if f, ok := r.supplementary[family]; ok {
		return NewFace(family, f, size)
	}
	if mapped, ok := logicalNames[strings.ToLower(family)]; ok {
		return NewFace(mapped, r.supplementary[mapped], size)
	}
	if name, f, ok := r.systemFamily(family); ok {
		return NewFace(name, f, size)
	}
	return NewFace(DefaultFamily, r.supplementary[DefaultFamily], size)
}

// systemFamily looks family up exactly, then case-insensitively.
func (r *Registry) systemFamily(family string) (string, *sfnt.Font, bool) {
	if f, ok := r.system[family]; ok {
		return family, f, true
	}
	if name, ok := r.folded[strings.ToLower(family)]; ok {
		return name, r.system[name], true
	}
	return "", nil, false
}

// buildFolded indexes system families by lowercase name. Families that only
// differ in case resolve to the lexically smallest name.
func (r *Registry) buildFolded() map[string]string {
	folded := make(map[string]string, len(r.system))
	for name := range r.system {
		key := strings.ToLower(name)
		if prev, ok := folded[key]; !ok || name < prev {
			folded[key] = name
		}
	}
	return folded
}

// Has reports whether the family resolves without falling back.
func (r *Registry) Has(family string) bool {
	if _, ok := r.supplementary[family]; ok {
		return true
	}
	if _, ok := logicalNames[strings.ToLower(family)]; ok {
		return true
	}
	_, _, ok := r.systemFamily(family)
	return ok
}
