package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, verifies its expectations, and compares
// both rendered buffers against golden files.
//
// Golden files live in testdata/golden/{name}_host.golden and
// testdata/golden/{name}_native.golden. To regenerate them, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if err := Check(scenario, result); err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name+"_host", []byte(result.Host))
	g.Assert(t, scenario.Name+"_native", []byte(result.Native))

	return nil
}
