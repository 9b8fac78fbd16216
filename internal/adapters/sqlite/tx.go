package sqlite

import (
	"database/sql"
	"time"

	"callscope/internal/domain"
	"callscope/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// DeleteGraph removes every method of graph and returns how many were removed
func (t *indexTx) DeleteGraph(graph string) (int, error) {
	res, err := t.tx.Exec(`DELETE FROM methods WHERE graph = ?`, graph)
	if err != nil {
		return 0, err
	}
	if _, err := t.tx.Exec(`DELETE FROM synced_graphs WHERE graph = ?`, graph); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// InsertMethod inserts or replaces a method
func (t *indexTx) InsertMethod(entry domain.MethodEntry) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO methods (graph, id, name, class, qualified)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Graph, entry.ID, entry.Name, entry.Class, entry.QualifiedName())
	return err
}

// MarkSynced records that graph has been indexed
func (t *indexTx) MarkSynced(graph string) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO synced_graphs (graph, synced_at) VALUES (?, ?)
	`, graph, time.Now().Unix())
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}
