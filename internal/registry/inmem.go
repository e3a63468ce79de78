package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// InMemoryStore is the ephemeral/test registry backend, grounded on
// server/dao/inmem's map-plus-mutex repository shape.
type InMemoryStore struct {
	mu         sync.Mutex
	packages   map[string]map[string]Package // name -> version -> Package
	blobs      map[string]map[string][]byte  // name -> version -> content
	publishers map[string]Publisher
}

// NewInMemoryStore constructs an empty in-memory registry.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		packages:   make(map[string]map[string]Package),
		blobs:      make(map[string]map[string][]byte),
		publishers: make(map[string]Publisher),
	}
}

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) Publish(ctx context.Context, pkg Package, blob []byte) (Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if versions, ok := s.packages[pkg.Name]; ok {
		if _, exists := versions[pkg.Version]; exists {
			return Package{}, ErrConflict
		}
	}

	pkg.ContentHash = HashContent(blob)
	pkg.Size = int64(len(blob))
	pkg.PublishedAt = time.Now()

	if s.packages[pkg.Name] == nil {
		s.packages[pkg.Name] = make(map[string]Package)
		s.blobs[pkg.Name] = make(map[string][]byte)
	}
	s.packages[pkg.Name][pkg.Version] = pkg
	s.blobs[pkg.Name][pkg.Version] = append([]byte(nil), blob...)

	return pkg, nil
}

func (s *InMemoryStore) Get(ctx context.Context, name, version string) (Package, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, ok := s.packages[name]
	if !ok {
		return Package{}, nil, ErrNotFound
	}
	pkg, ok := versions[version]
	if !ok {
		return Package{}, nil, ErrNotFound
	}
	return pkg, append([]byte(nil), s.blobs[name][version]...), nil
}

func (s *InMemoryStore) List(ctx context.Context, name string) ([]Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Package
	for pkgName, versions := range s.packages {
		if name != "" && pkgName != name {
			continue
		}
		for _, pkg := range versions {
			all = append(all, pkg)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	return all, nil
}

func (s *InMemoryStore) Verify(ctx context.Context, name, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, ok := s.packages[name]
	if !ok {
		return ErrNotFound
	}
	pkg, ok := versions[version]
	if !ok {
		return ErrNotFound
	}
	if HashContent(s.blobs[name][version]) != pkg.ContentHash {
		return ErrHashMismatch
	}
	return nil
}

func (s *InMemoryStore) CreatePublisher(ctx context.Context, username, password string) (Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.publishers[username]; exists {
		return Publisher{}, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Publisher{}, fmt.Errorf("hash publish credential: %w", err)
	}

	pub := Publisher{Username: username, PasswordHash: hash, Created: time.Now()}
	s.publishers[username] = pub
	return pub, nil
}

func (s *InMemoryStore) Authenticate(ctx context.Context, username, password string) (Publisher, error) {
	s.mu.Lock()
	pub, ok := s.publishers[username]
	s.mu.Unlock()
	if !ok {
		return Publisher{}, ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(pub.PasswordHash, []byte(password)); err != nil {
		return Publisher{}, fmt.Errorf("invalid publish credentials: %w", err)
	}
	return pub, nil
}

func (s *InMemoryStore) Profile(ctx context.Context, username string) (Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pub, ok := s.publishers[username]
	if !ok {
		return Publisher{}, ErrNotFound
	}
	return pub, nil
}
