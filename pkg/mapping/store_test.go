package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID     string
	Target string
	Status Status
}

func (r *testRecord) GetStatus() Status  { return r.Status }
func (r *testRecord) SetStatus(s Status) { r.Status = s }

type testCodec struct{}

func (testCodec) Header() []string { return []string{"id", "target", "status"} }

func (testCodec) Encode(r *testRecord) []string {
	return []string{r.ID, r.Target, string(r.Status)}
}

func (testCodec) Decode(row []string) (*testRecord, error) {
	return &testRecord{ID: row[0], Target: row[1], Status: ParseStatus(row[2])}, nil
}

func newTestStore(t *testing.T) *Store[*testRecord] {
	t.Helper()
	return NewStore[*testRecord](filepath.Join(t.TempDir(), "map.csv"), testCodec{})
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	records := []*testRecord{
		{ID: "1", Target: "a", Status: StatusPending},
		{ID: "2", Target: "b", Status: StatusApplied},
		{ID: "3", Target: "", Status: StatusFailed},
	}

	require.NoError(t, store.Save(records))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, records, loaded)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "run create-map first")
}

func TestStoreLoadHeaderMismatch(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("id,target\n1,a\n"), 0o644))

	_, err := store.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "columns")
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save([]*testRecord{{ID: "1", Status: StatusPending}}))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, filepath.Base(store.Path()), entries[0].Name())
}

func TestParseStatusUnknownIsPending(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"applied", StatusApplied},
		{"failed", StatusFailed},
		{"skipped", StatusSkipped},
		{"pending", StatusPending},
		{"", StatusPending},
		{"not_created", StatusPending},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseStatus(tt.in), "input %q", tt.in)
	}
}
