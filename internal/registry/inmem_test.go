package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InMemoryStore_publishAndGetRoundTrips(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	pkg, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0", Publisher: "alice"}, []byte("binary contents"))
	require.NoError(t, err)
	assert.Equal(t, HashContent([]byte("binary contents")), pkg.ContentHash)

	got, blob, err := s.Get(ctx, "motorlib", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, pkg.ContentHash, got.ContentHash)
	assert.Equal(t, []byte("binary contents"), blob)
}

func Test_InMemoryStore_publishRejectsDuplicateVersion(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("a"))
	require.NoError(t, err)

	_, err = s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("b"))

	assert.ErrorIs(t, err, ErrConflict)
}

func Test_InMemoryStore_getMissingReturnsNotFound(t *testing.T) {
	s := NewInMemoryStore()
	_, _, err := s.Get(context.Background(), "ghost", "1.0.0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_InMemoryStore_listFiltersByName(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_, _ = s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("a"))
	_, _ = s.Publish(ctx, Package{Name: "motorlib", Version: "1.1.0"}, []byte("b"))
	_, _ = s.Publish(ctx, Package{Name: "other", Version: "1.0.0"}, []byte("c"))

	all, err := s.List(ctx, "motorlib")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	everything, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}

func Test_InMemoryStore_verifyDetectsCorruption(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_, err := s.Publish(ctx, Package{Name: "motorlib", Version: "1.0.0"}, []byte("good"))
	require.NoError(t, err)

	require.NoError(t, s.Verify(ctx, "motorlib", "1.0.0"))

	s.blobs["motorlib"]["1.0.0"] = []byte("tampered")
	assert.ErrorIs(t, s.Verify(ctx, "motorlib", "1.0.0"), ErrHashMismatch)
}

func Test_InMemoryStore_publisherCreateAuthenticateProfile(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, err := s.CreatePublisher(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "alice", "hunter2")
	assert.NoError(t, err)

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assert.Error(t, err)

	prof, err := s.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", prof.Username)
}

func Test_InMemoryStore_createPublisherRejectsDuplicateUsername(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_, err := s.CreatePublisher(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = s.CreatePublisher(ctx, "alice", "different")

	assert.ErrorIs(t, err, ErrConflict)
}
