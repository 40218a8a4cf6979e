package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestDigest(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Digest(nil))
	assert.Equal(t, Digest([]byte("abc")), Digest([]byte("abc")))
	assert.NotEqual(t, Digest([]byte("abc")), Digest([]byte("abd")))
}

func TestNewRun(t *testing.T) {
	r := NewRun([]byte("in"), []byte("host"), []byte("native"), 10, 7)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, Digest([]byte("in")), r.InputSHA256)
	assert.Equal(t, Digest([]byte("host")), r.HostSHA256)
	assert.Equal(t, Digest([]byte("native")), r.NativeSHA256)
	assert.Equal(t, 10, r.ItemsTotal)
	assert.Equal(t, 7, r.ItemsClassified)

	// ids are unique per run
	assert.NotEqual(t, r.ID, NewRun(nil, nil, nil, 0, 0).ID)
}

func TestLedger_RecordAndLatest(t *testing.T) {
	l := openTestLedger(t)

	r := NewRun([]byte("in"), []byte("host"), []byte("native"), 3, 2)
	require.NoError(t, l.Record(r))

	got, err := l.Latest(r.InputSHA256)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r, *got)
}

func TestLedger_LatestUnknownInput(t *testing.T) {
	l := openTestLedger(t)

	got, err := l.Latest(Digest([]byte("never seen")))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLedger_VerifyNoPriorRun(t *testing.T) {
	l := openTestLedger(t)

	drift, err := l.Verify(NewRun([]byte("in"), []byte("h"), []byte("n"), 1, 1))
	require.NoError(t, err)
	assert.Nil(t, drift)
}

func TestLedger_VerifyMatchingOutputs(t *testing.T) {
	l := openTestLedger(t)

	first := NewRun([]byte("in"), []byte("h"), []byte("n"), 1, 1)
	require.NoError(t, l.Record(first))

	drift, err := l.Verify(NewRun([]byte("in"), []byte("h"), []byte("n"), 1, 1))
	require.NoError(t, err)
	assert.Nil(t, drift)
}

func TestLedger_VerifyDetectsDrift(t *testing.T) {
	l := openTestLedger(t)

	first := NewRun([]byte("in"), []byte("h"), []byte("n"), 1, 1)
	require.NoError(t, l.Record(first))

	drift, err := l.Verify(NewRun([]byte("in"), []byte("h2"), []byte("n"), 1, 1))
	require.NoError(t, err)
	require.NotNil(t, drift)
	assert.Equal(t, first.ID, drift.PriorID)
	assert.True(t, drift.HostChanged)
	assert.False(t, drift.NativeChanged)
}

func TestLedger_OpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	l1, err := Open(path)
	require.NoError(t, err)
	r := NewRun([]byte("in"), []byte("h"), []byte("n"), 1, 1)
	require.NoError(t, l1.Record(r))
	require.NoError(t, l1.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()

	got, err := l2.Latest(r.InputSHA256)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.ID, got.ID)
}

func TestLedger_DuplicateIDRejected(t *testing.T) {
	l := openTestLedger(t)

	r := NewRun([]byte("in"), []byte("h"), []byte("n"), 1, 1)
	require.NoError(t, l.Record(r))
	assert.Error(t, l.Record(r))
}
