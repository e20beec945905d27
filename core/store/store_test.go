package store

import (
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.db")
	s, err := Open(path)
	require.NoError(t, err)

	_, found, err := s.Load()
	require.NoError(t, err)
	assert.False(t, found)

	draft := core.Draft{Text: "# Hi\n", Theme: core.Dark, Divider: 35, SyncScroll: false}
	require.NoError(t, s.Save(draft))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, draft, got)
}

func TestStoreSaveReplaces(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "draft.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(core.Draft{Text: "one"}))
	require.NoError(t, s.Save(core.Draft{Text: "two", Theme: core.Light, Divider: 50, SyncScroll: true}))

	got, _, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "two", got.Text)
	assert.True(t, got.SyncScroll)
}
