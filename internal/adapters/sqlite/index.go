package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"callscope/internal/domain"
	"callscope/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// DefaultSearchLimit is used when Search is called without a limit
const DefaultSearchLimit = 50

// Index implements ports.MethodIndex using SQLite
type Index struct {
	db         *sql.DB
	serviceURL string
	dataDir    string
	dbPath     string
}

// Ensure Index implements MethodIndex
var _ ports.MethodIndex = (*Index)(nil)

// IndexOption configures an Index
type IndexOption func(*Index)

// WithDataDir stores databases under dir instead of the XDG data directory
func WithDataDir(dir string) IndexOption {
	return func(idx *Index) {
		idx.dataDir = dir
	}
}

// NewIndex creates a new SQLite index
func NewIndex(opts ...IndexOption) *Index {
	idx := &Index{}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Open initializes the index for the given service. Every service gets its
// own database file.
func (idx *Index) Open(serviceURL string) error {
	idx.serviceURL = strings.TrimRight(serviceURL, "/")

	dir, err := expandHome(idx.dataDir)
	if err != nil {
		return err
	}
	idx.dbPath = databasePath(dir, idx.serviceURL)

	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS methods (
			graph TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			class TEXT NOT NULL,
			qualified TEXT NOT NULL,
			PRIMARY KEY (graph, id)
		);
		CREATE TABLE IF NOT EXISTS synced_graphs (
			graph TEXT PRIMARY KEY,
			synced_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_methods_name ON methods(name);
		CREATE INDEX IF NOT EXISTS idx_methods_qualified ON methods(qualified);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if err := idx.checkSchema(); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Path returns the database file of the index
func (idx *Index) Path() string {
	return idx.dbPath
}

// NeedsRebuild reports whether the methods of graph have never been indexed
func (idx *Index) NeedsRebuild(graph string) bool {
	var syncedAt int64
	err := idx.db.QueryRow(`SELECT synced_at FROM synced_graphs WHERE graph = ?`, graph).Scan(&syncedAt)
	return err != nil
}

// checkSchema drops indexed data written by another schema version
func (idx *Index) checkSchema() error {
	var version string
	err := idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if version != schemaVersion {
		if _, err := idx.db.Exec(`DELETE FROM methods; DELETE FROM synced_graphs;`); err != nil {
			return err
		}
	}

	_, err = idx.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('service_url_hash', ?);
	`, schemaVersion, hashServiceURL(idx.serviceURL))
	return err
}

// databasePath returns the path for the SQLite database
func databasePath(dataDir, serviceURL string) string {
	if dataDir == "" {
		// XDG data directory
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, _ := os.UserHomeDir()
			dataHome = filepath.Join(home, ".local", "share")
		}
		dataDir = filepath.Join(dataHome, "callscope")
	}

	return filepath.Join(dataDir, hashServiceURL(serviceURL)+".db")
}

// hashServiceURL returns a short hash of the service URL
func hashServiceURL(serviceURL string) string {
	h := sha256.Sum256([]byte(serviceURL))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// Search returns methods whose name or qualified name contains query.
// Exact name matches come first.
func (idx *Index) Search(graph, query string, limit int) ([]domain.MethodEntry, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + escapeLike(query) + "%"

	rows, err := idx.db.Query(`
		SELECT graph, id, name, class
		FROM methods
		WHERE (? = '' OR graph = ?)
		  AND (name LIKE ? ESCAPE '\' OR qualified LIKE ? ESCAPE '\')
		ORDER BY (name = ?) DESC, length(qualified), qualified
		LIMIT ?
	`, graph, graph, pattern, pattern, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search methods: %w", err)
	}
	defer rows.Close()

	var entries []domain.MethodEntry
	for rows.Next() {
		var e domain.MethodEntry
		if err := rows.Scan(&e.Graph, &e.ID, &e.Name, &e.Class); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Lookup retrieves a method by id. A missing method is not an error.
func (idx *Index) Lookup(graph, id string) (*domain.MethodEntry, error) {
	var e domain.MethodEntry
	err := idx.db.QueryRow(`
		SELECT graph, id, name, class
		FROM methods WHERE graph = ? AND id = ?
	`, graph, id).Scan(&e.Graph, &e.ID, &e.Name, &e.Class)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Count returns the number of indexed methods of graph
func (idx *Index) Count(graph string) (int, error) {
	var n int
	err := idx.db.QueryRow(`SELECT COUNT(*) FROM methods WHERE graph = ?`, graph).Scan(&n)
	return n, err
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
