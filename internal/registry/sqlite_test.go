package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func Test_SQLiteStore_publishAndGetRoundTrips(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	pkg, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0", Publisher: "alice"}, []byte("binary contents"))
	require.NoError(t, err)
	assert.Equal(t, HashContent([]byte("binary contents")), pkg.ContentHash)
	assert.EqualValues(t, len("binary contents"), pkg.Size)

	got, blob, err := s.Get(ctx, "motorlib", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, pkg.ContentHash, got.ContentHash)
	assert.Equal(t, "alice", got.Publisher)
	assert.Equal(t, []byte("binary contents"), blob)
}

func Test_SQLiteStore_publishRejectsDuplicateVersion(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	_, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("a"))
	require.NoError(t, err)

	_, err = s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("b"))

	assert.ErrorIs(t, err, ErrConflict)
}

func Test_SQLiteStore_getMissingReturnsNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, _, err := s.Get(context.Background(), "ghost", "1.0.0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_SQLiteStore_listFiltersByName(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	_, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("a"))
	require.NoError(t, err)
	_, err = s.Publish(ctx, Package{Name: "motorlib", Version: "1.1.0"}, []byte("b"))
	require.NoError(t, err)
	_, err = s.Publish(ctx, Package{Name: "other", Version: "1.0.0"}, []byte("c"))
	require.NoError(t, err)

	all, err := s.List(ctx, "motorlib")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	everything, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}

func Test_SQLiteStore_verifyDetectsCorruption(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	_, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("good"))
	require.NoError(t, err)
	require.NoError(t, s.Verify(ctx, "motorlib", "1.0.0"))

	_, err = s.db.ExecContext(ctx, `UPDATE packages SET content = ? WHERE name = ? AND version = ?`, []byte("tampered"), "motorlib", "1.0.0")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Verify(ctx, "motorlib", "1.0.0"), ErrHashMismatch)
}

func Test_SQLiteStore_publisherCreateAuthenticateProfile(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.CreatePublisher(ctx, "alice", "hunter2")
	require.NoError(t, err)

	pub, err := s.Authenticate(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", pub.Username)

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assert.Error(t, err)

	prof, err := s.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", prof.Username)
	assert.NotEmpty(t, prof.PasswordHash)
}

func Test_SQLiteStore_createPublisherRejectsDuplicateUsername(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	_, err := s.CreatePublisher(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = s.CreatePublisher(ctx, "alice", "different")

	assert.ErrorIs(t, err, ErrConflict)
}

func Test_SQLiteStore_profileMissingReturnsNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
