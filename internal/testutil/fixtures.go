package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Sample requests used across packages.
const (
	SampleEAN13 = `{"type":"EAN13","content":"4006381333931","width":40,"height":20,"format":"SVG"}`
	SampleQR    = `{"type":"QRCODE","content":"https://example.com","width":20,"height":20,"format":"PNG","dpi":300}`
)

// Fixture is a stored request together with the expected response.
type Fixture struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Request     json.RawMessage `json:"request"`
	Expected    Expected        `json:"expected"`
}

// Expected describes the response of a fixture.
type Expected struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Path returns the endpoint the fixture is posted to.
func (f Fixture) Path() string {
	return "/create" + f.Kind
}

// ReadFixture reads testdata/fixtures/<name>.json without a testing.T,
// for callers such as godog steps.
func ReadFixture(name string) (Fixture, error) {
	root, err := GetProjectRoot()
	if err != nil {
		return Fixture{}, err
	}
	path := filepath.Join(root, "testdata", "fixtures", name+".json")
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading test fixture files with controlled paths
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture file: %w", err)
	}
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("failed to unmarshal fixture %s: %w", name, err)
	}
	return fixture, nil
}

// LoadFixture loads testdata/fixtures/<name>.json.
func LoadFixture(t *testing.T, name string) Fixture {
	t.Helper()

	fixture, err := ReadFixture(name)
	require.NoError(t, err)
	ValidateFixture(t, fixture)
	return fixture
}

// LoadFixtures loads every fixture in testdata/fixtures.
func LoadFixtures(t *testing.T) []Fixture {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(GetFixturesDir(t), "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no fixtures found")

	out := make([]Fixture, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		out = append(out, LoadFixture(t, name[:len(name)-len(".json")]))
	}
	return out
}

// ValidateFixture checks that a fixture is usable.
func ValidateFixture(t *testing.T, fixture Fixture) {
	t.Helper()

	require.NotEmpty(t, fixture.Name, "Fixture name should not be empty")
	require.Contains(t, []string{"1d", "2d"}, fixture.Kind, "Fixture %s has an unknown kind", fixture.Name)
	require.True(t, json.Valid(fixture.Request), "Fixture %s has an invalid request", fixture.Name)
	require.NotZero(t, fixture.Expected.Status, "Fixture %s has no expected status", fixture.Name)
}

// Envelope returns a job file body for kind and request.
func Envelope(kind, request string) string {
	return fmt.Sprintf(`{"kind":%q,"request":%s}`, kind, request)
}

// WriteJob writes a job envelope file and returns its path.
func WriteJob(t *testing.T, dir, name, kind, request string) string {
	t.Helper()
	return WriteFile(t, dir, name, Envelope(kind, request))
}
