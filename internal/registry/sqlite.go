package registry

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite" // registers the "sqlite" driver via its init()
)

// SQLiteStore is the durable registry backend, grounded on
// server/dao/sqlite's single-file-per-store-plus-wrapDBError shape.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the registry database under
// storageDir.
func NewSQLiteStore(storageDir string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", filepath.Join(storageDir, "registry.db"))
	if err != nil {
		return nil, wrapDBError(err)
	}
	st := &SQLiteStore{db: db}
	if err := st.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS packages (
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			size INTEGER NOT NULL,
			publisher TEXT NOT NULL,
			published_at INTEGER NOT NULL,
			content BLOB NOT NULL,
			PRIMARY KEY (name, version)
		);`,
		`CREATE TABLE IF NOT EXISTS publishers (
			username TEXT NOT NULL PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return wrapDBError(err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Publish(ctx context.Context, pkg Package, blob []byte) (Package, error) {
	pkg.ContentHash = HashContent(blob)
	pkg.Size = int64(len(blob))
	pkg.PublishedAt = time.Now()

	stmt, err := s.db.Prepare(`INSERT INTO packages (name, version, content_hash, size, publisher, published_at, content) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Package{}, wrapDBError(err)
	}
	_, err = stmt.ExecContext(ctx, pkg.Name, pkg.Version, pkg.ContentHash, pkg.Size, pkg.Publisher, pkg.PublishedAt.Unix(), blob)
	if err != nil {
		return Package{}, wrapDBError(err)
	}
	return pkg, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name, version string) (Package, []byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, version, content_hash, size, publisher, published_at, content FROM packages WHERE name = ? AND version = ?`, name, version)

	var pkg Package
	var publishedAt int64
	var content []byte
	if err := row.Scan(&pkg.Name, &pkg.Version, &pkg.ContentHash, &pkg.Size, &pkg.Publisher, &publishedAt, &content); err != nil {
		return Package{}, nil, wrapDBError(err)
	}
	pkg.PublishedAt = time.Unix(publishedAt, 0)
	return pkg, content, nil
}

func (s *SQLiteStore) List(ctx context.Context, name string) ([]Package, error) {
	query := `SELECT name, version, content_hash, size, publisher, published_at FROM packages`
	args := []any{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY name, published_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []Package
	for rows.Next() {
		var pkg Package
		var publishedAt int64
		if err := rows.Scan(&pkg.Name, &pkg.Version, &pkg.ContentHash, &pkg.Size, &pkg.Publisher, &publishedAt); err != nil {
			return nil, wrapDBError(err)
		}
		pkg.PublishedAt = time.Unix(publishedAt, 0)
		all = append(all, pkg)
	}
	return all, nil
}

func (s *SQLiteStore) Verify(ctx context.Context, name, version string) error {
	pkg, content, err := s.Get(ctx, name, version)
	if err != nil {
		return err
	}
	if HashContent(content) != pkg.ContentHash {
		return ErrHashMismatch
	}
	return nil
}

func (s *SQLiteStore) CreatePublisher(ctx context.Context, username, password string) (Publisher, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Publisher{}, fmt.Errorf("hash publish credential: %w", err)
	}
	pub := Publisher{Username: username, PasswordHash: hash, Created: time.Now()}

	stmt, err := s.db.Prepare(`INSERT INTO publishers (username, password_hash, created) VALUES (?, ?, ?)`)
	if err != nil {
		return Publisher{}, wrapDBError(err)
	}
	encHash := base64.StdEncoding.EncodeToString(hash)
	if _, err := stmt.ExecContext(ctx, username, encHash, pub.Created.Unix()); err != nil {
		return Publisher{}, wrapDBError(err)
	}
	return pub, nil
}

func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (Publisher, error) {
	pub, err := s.Profile(ctx, username)
	if err != nil {
		return Publisher{}, err
	}
	if err := bcrypt.CompareHashAndPassword(pub.PasswordHash, []byte(password)); err != nil {
		return Publisher{}, fmt.Errorf("invalid publish credentials: %w", err)
	}
	return pub, nil
}

func (s *SQLiteStore) Profile(ctx context.Context, username string) (Publisher, error) {
	row := s.db.QueryRowContext(ctx, `SELECT username, password_hash, created FROM publishers WHERE username = ?`, username)

	var pub Publisher
	var encHash string
	var created int64
	if err := row.Scan(&pub.Username, &encHash, &created); err != nil {
		return Publisher{}, wrapDBError(err)
	}
	hash, err := base64.StdEncoding.DecodeString(encHash)
	if err != nil {
		return Publisher{}, fmt.Errorf("stored password hash is corrupt: %w", err)
	}
	pub.PasswordHash = hash
	pub.Created = time.Unix(created, 0)
	return pub, nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return ErrConflict
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
