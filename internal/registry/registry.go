// Package registry implements the versioned package store boundary contract
// of §6: packages stored keyed by {name, version} with a content
// SHA-256, backing the `stc registry {init|publish|verify|list|download|
// profile}` subcommands. Grounded on server/dao's Store-interface-plus-
// multiple-backend shape (sqlite + inmem implementations of one interface).
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNotFound matches dao.ErrNotFound's role: no package/publisher by
	// that key exists.
	ErrNotFound = errors.New("the requested package was not found")

	// ErrConflict matches dao.ErrConstraintViolation's role: a publish
	// attempted to overwrite an existing {name, version}.
	ErrConflict = errors.New("a package with that name and version already exists")

	// ErrHashMismatch is returned by Verify when the stored content no
	// longer hashes to the recorded ContentHash (corruption or tampering).
	ErrHashMismatch = errors.New("stored content hash does not match the recorded hash")
)

// Package is one published library version.
type Package struct {
	Name        string
	Version     string
	ContentHash string
	Size        int64
	Publisher   string
	PublishedAt time.Time
}

// Publisher is a registry account allowed to publish packages.
type Publisher struct {
	Username     string
	PasswordHash []byte
	Created      time.Time
}

// HashContent returns the hex sha256 digest §6 requires every
// published package to be keyed against.
func HashContent(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Store is the registry's storage boundary, implemented by InMemoryStore
// (ephemeral/test registries) and SQLiteStore (a durable one, opened by
// every `stc registry` subcommand).
type Store interface {
	// Publish stores blob under pkg.Name/pkg.Version, computing and
	// stamping pkg.ContentHash and pkg.Size. Returns ErrConflict if that
	// {name, version} is already published.
	Publish(ctx context.Context, pkg Package, blob []byte) (Package, error)

	// Get retrieves a package's metadata and content by name and version.
	Get(ctx context.Context, name, version string) (Package, []byte, error)

	// List retrieves every published version of name, newest first. An
	// empty name lists every package.
	List(ctx context.Context, name string) ([]Package, error)

	// Verify recomputes the stored content's hash and compares it to the
	// recorded ContentHash, reporting ErrHashMismatch on divergence.
	Verify(ctx context.Context, name, version string) error

	// Publishers
	CreatePublisher(ctx context.Context, username, password string) (Publisher, error)
	Authenticate(ctx context.Context, username, password string) (Publisher, error)
	Profile(ctx context.Context, username string) (Publisher, error)

	Close() error
}
