package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios against its
// golden output pair. Run with -update to regenerate the golden files.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func writeScenario(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadScenario_RequiresName(t *testing.T) {
	path := writeScenario(t, `
declarations:
  - id: s1
    name: Point
    kind: struct
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "no name")
}

func TestLoadScenario_RequiresDeclarations(t *testing.T) {
	path := writeScenario(t, `name: empty`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "no declarations")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestScenario_GraphRejectsUnknownKind(t *testing.T) {
	s := &Scenario{
		Name:         "bad",
		Declarations: []DeclSpec{{ID: "x1", Name: "X", Kind: "widget"}},
	}
	_, err := s.Graph()
	assert.ErrorContains(t, err, "unknown kind")
}

func TestScenario_ManifestCarriesOverrides(t *testing.T) {
	s := &Scenario{
		Name:          "m",
		Crate:         "voxgui",
		TypePrefix:    "Qq",
		OpaqueHandles: true,
		Seeds:         []SeedSpec{{Source: "egui::Pos2", Display: "IVec2", Transferable: true}},
	}

	m := s.Manifest()
	assert.Equal(t, "voxgui", m.Crate)
	assert.Equal(t, "Qq", m.TypePrefix)
	assert.True(t, m.OpaqueHandles)
	require.Len(t, m.Seeds, 1)
	assert.Equal(t, "egui::Pos2", m.Seeds[0].Source)
}

func TestScenario_ManifestDefaultPrefix(t *testing.T) {
	s := &Scenario{Name: "m"}
	assert.Equal(t, "Vx", s.Manifest().TypePrefix)
}

func TestCheck_ReportsMissingExpectations(t *testing.T) {
	s := &Scenario{
		Name: "check",
		Declarations: []DeclSpec{{
			ID:   "s1",
			Name: "Point",
			Kind: "struct",
			Fields: []FieldSpec{
				{Name: "x", Type: "f32"},
			},
		}},
		Expect: Expect{Transferable: []string{"Missing"}},
	}

	res, err := Run(s)
	require.NoError(t, err)
	assert.ErrorContains(t, Check(s, res), `expected "Missing" to be registered`)

	s.Expect = Expect{Pending: []string{"s1"}}
	assert.ErrorContains(t, Check(s, res), `expected declaration "s1" to remain pending`)

	s.Expect = Expect{Transferable: []string{"Point"}}
	assert.NoError(t, Check(s, res))
}
