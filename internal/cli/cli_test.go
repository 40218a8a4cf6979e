package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgui/vxbind/internal/snapshot"
)

const sampleIndex = `{
	"format_version": 1,
	"crate": {"name": "voxgui"},
	"index": {
		"s1": {
			"name": "Point",
			"kind": "struct",
			"struct": {"fields": [
				{"name": "x", "type": "f32"},
				{"name": "y", "type": "f32"}
			]}
		},
		"e1": {
			"name": "Anchor",
			"kind": "enum",
			"enum": {"variants": [{"name": "Min"}, {"name": "Max"}]}
		},
		"w1": {
			"name": "Window",
			"kind": "struct",
			"struct": {"fields": [], "has_stripped_fields": true}
		}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "classify", "whatever.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestGenerate_TextOutput(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)

	stdout, _, err := execute(t, "generate", index)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Generated 1 enum(s), 1 struct(s), 0 handle(s); 1 declaration(s) left unclassified")
	assert.Contains(t, stdout, "// ----- host -----")
	assert.Contains(t, stdout, "public unsafe struct Point {")
	assert.Contains(t, stdout, "// ----- native -----")
	assert.Contains(t, stdout, "pub struct VxPoint {")
}

func TestGenerate_WritesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)
	hostPath := filepath.Join(dir, "bindings.cs")
	nativePath := filepath.Join(dir, "bindings.rs")

	stdout, _, err := execute(t, "generate", index,
		"--out-host", hostPath, "--out-native", nativePath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Wrote host source to "+hostPath)
	assert.Contains(t, stdout, "Wrote native source to "+nativePath)
	// Buffers go to the files, not the terminal.
	assert.NotContains(t, stdout, "// ----- host -----")

	host, err := os.ReadFile(hostPath)
	require.NoError(t, err)
	assert.Contains(t, string(host), "public enum Anchor {")

	native, err := os.ReadFile(nativePath)
	require.NoError(t, err)
	assert.Contains(t, string(native), "pub enum VxAnchor {")
}

func TestGenerate_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)

	stdout, _, err := execute(t, "--format", "json", "generate", index)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   GenerateReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Relevant)
	assert.Equal(t, 1, resp.Data.Enums)
	assert.Equal(t, 1, resp.Data.Structs)
	assert.Equal(t, 1, resp.Data.Remaining)
	assert.Contains(t, resp.Data.Host, "public unsafe struct Point {")
	assert.Contains(t, resp.Data.Native, "pub struct VxPoint {")
}

func TestGenerate_OpaqueHandlesFlag(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)

	stdout, _, err := execute(t, "generate", index, "--opaque-handles")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Generated 1 enum(s), 1 struct(s), 1 handle(s); 1 declaration(s) left unclassified")
	assert.Contains(t, stdout, "public unsafe sealed class Window : VxHandle {")
	assert.Contains(t, stdout, "vx_window_drop")
}

func TestGenerate_ManifestPrefix(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)
	man := writeFile(t, dir, "vxbind.cue", `type_prefix: "Qq"`)

	stdout, _, err := execute(t, "generate", index, "--manifest", man)
	require.NoError(t, err)
	assert.Contains(t, stdout, "pub struct QqPoint {")
}

func TestGenerate_MissingIndex(t *testing.T) {
	stdout, _, err := execute(t, "generate", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]:")
}

func TestGenerate_BadManifest(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)
	man := writeFile(t, dir, "vxbind.cue", `type_prefix: 7`)

	stdout, _, err := execute(t, "generate", index, "--manifest", man)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E002]:")
}

func TestGenerate_MalformedDeclaration(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", `{
		"format_version": 1,
		"crate": {"name": "voxgui"},
		"index": {
			"s1": {"kind": "struct", "struct": {"fields": []}}
		}
	}`)

	stdout, _, err := execute(t, "generate", index)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E003]:")
}

func TestGenerate_SnapshotRecordsRun(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)
	db := filepath.Join(dir, "runs.db")

	_, _, err := execute(t, "generate", index, "--snapshot-db", db)
	require.NoError(t, err)

	// A second run over the same input matches the recorded hashes.
	_, _, err = execute(t, "generate", index, "--snapshot-db", db)
	require.NoError(t, err)

	ledger, err := snapshot.Open(db)
	require.NoError(t, err)
	defer ledger.Close()

	input, err := os.ReadFile(index)
	require.NoError(t, err)
	latest, err := ledger.Latest(snapshot.Digest(input))
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.ItemsTotal)
	assert.Equal(t, 2, latest.ItemsClassified)
}

func TestGenerate_SnapshotDetectsDrift(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)
	db := filepath.Join(dir, "runs.db")

	// Seed the ledger with a prior run over this input whose output hashes
	// cannot match.
	input, err := os.ReadFile(index)
	require.NoError(t, err)
	ledger, err := snapshot.Open(db)
	require.NoError(t, err)
	prior := snapshot.NewRun(input, []byte("stale host"), []byte("stale native"), 3, 2)
	require.NoError(t, ledger.Record(prior))
	require.NoError(t, ledger.Close())

	stdout, _, err := execute(t, "generate", index, "--snapshot-db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E006]:")
	assert.Contains(t, stdout, prior.ID)
}

func TestClassify_TextOutput(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)

	stdout, _, err := execute(t, "classify", index)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Classified 2 of 3 relevant declaration(s)")
	assert.Contains(t, stdout, "bool -> bool (copy)")
	assert.Contains(t, stdout, "Point -> Point (copy)")
	assert.Contains(t, stdout, "Anchor -> Anchor (copy)")
	assert.Contains(t, stdout, "Pending:")
	assert.Contains(t, stdout, "Window (struct, id w1)")
}

func TestClassify_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.json", sampleIndex)

	stdout, _, err := execute(t, "--format", "json", "classify", index)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ClassifyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Relevant)
	assert.Equal(t, 2, resp.Data.Classified)
	require.Len(t, resp.Data.Pending, 1)
	assert.Equal(t, "w1", resp.Data.Pending[0].ID)

	// Built-in primitives come first, then enums, then structs, each in
	// document order.
	require.Greater(t, len(resp.Data.Registered), 2)
	assert.Equal(t, "bool", resp.Data.Registered[0].Source)
	last := resp.Data.Registered[len(resp.Data.Registered)-1]
	prev := resp.Data.Registered[len(resp.Data.Registered)-2]
	assert.Equal(t, "Anchor", prev.Source)
	assert.Equal(t, "Point", last.Source)
}

func TestClassify_MissingIndex(t *testing.T) {
	stdout, _, err := execute(t, "classify", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]:")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
