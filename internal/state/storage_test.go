package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/workbench/internal/geom"
)

func sampleSnapshot() Snapshot {
	s := Empty()
	s.TopZIndex = 3
	s.OpenPrograms = []string{"terminal", "doodle"}
	s.WindowStates["terminal"] = WindowState{
		ID:       "terminal",
		ZIndex:   3,
		Position: &geom.Point{X: 0, Y: 0},
		Size:     &geom.Size{Width: 400, Height: 300},
	}
	s.WindowStates["doodle"] = WindowState{ID: "doodle", ZIndex: 2, IsMinimized: true}
	return s
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope", "state.json"))
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.WindowStates)
	assert.Empty(t, snap.OpenPrograms)
	assert.Equal(t, 0, snap.TopZIndex)
}

func TestFileStore_JSONRoundTripKeepsOriginPlacement(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, store.Save(sampleSnapshot()))

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"terminal", "doodle"}, snap.OpenPrograms)

	r, ok := snap.WindowStates["terminal"].Placement()
	require.True(t, ok, "window at the origin must still count as placed")
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 400, Height: 300}, r)

	_, ok = snap.WindowStates["doodle"].Placement()
	assert.False(t, ok)
}

func TestFileStore_JSONToleratesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	data := `{
  // hand-edited
  "windowStates": {
    "logs": {"zIndex": 7, "position": {"x": 10, "y": 20}, "size": {"width": 300, "height": 200}},
  },
  "topZIndex": 7,
  "openPrograms": ["logs"],
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	snap, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, snap.TopZIndex)
	// The id is restored from the map key.
	assert.Equal(t, "logs", snap.WindowStates["logs"].ID)
}

func TestFileStore_CBORRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.cbor"))
	want := sampleSnapshot()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.TopZIndex, got.TopZIndex)
	assert.Equal(t, want.OpenPrograms, got.OpenPrograms)
	assert.Equal(t, *want.WindowStates["terminal"].Size, *got.WindowStates["terminal"].Size)
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestMemoryStore_CopiesOnSaveAndLoad(t *testing.T) {
	store := NewMemoryStore(Snapshot{})
	snap := sampleSnapshot()
	require.NoError(t, store.Save(snap))

	snap.WindowStates["terminal"].Position.X = 999

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.WindowStates["terminal"].Position.X)
	assert.Equal(t, 1, store.Saves())
}

func TestSnapshotByZIndex(t *testing.T) {
	order := sampleSnapshot().ByZIndex()
	require.Len(t, order, 2)
	assert.Equal(t, "doodle", order[0].ID)
	assert.Equal(t, "terminal", order[1].ID)
}

func TestFileStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(sampleSnapshot()))

	require.NoError(t, store.Remove())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, store.Remove(), "removing a missing file is not an error")

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.OpenPrograms)
}
