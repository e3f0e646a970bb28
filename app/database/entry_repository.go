package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

var _ EntryRepository = (*entryRepository)(nil)

type entryRepository struct {
	db *DB
}

func NewEntryRepository(db *DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) GetEntries(feedName string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}

	rows, err := r.db.Query(`
		SELECT id, feed_name, name, fields, content_hash, created_at, updated_at
		FROM entries
		WHERE feed_name = ?
		ORDER BY id
		LIMIT ?
	`, feedName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func (r *entryRepository) GetEntry(feedName, entryName string) (*Entry, error) {
	row := r.db.QueryRow(`
		SELECT id, feed_name, name, fields, content_hash, created_at, updated_at
		FROM entries
		WHERE feed_name = ? AND name = ?
	`, feedName, entryName)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

func (r *entryRepository) GetEntryCount(feedName string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE feed_name = ?`, feedName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

func (r *entryRepository) UpsertEntry(feedName, entryName string, fields map[string][]string, contentHash string) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to serialize entry fields: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO entries (feed_name, name, fields, content_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (feed_name, name) DO UPDATE SET
			fields = excluded.fields,
			content_hash = excluded.content_hash,
			updated_at = CURRENT_TIMESTAMP
	`, feedName, entryName, string(fieldsJSON), contentHash)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}

	return nil
}

func (r *entryRepository) DeleteEntry(feedName, entryName string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM entries WHERE feed_name = ? AND name = ?`, feedName, entryName)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// CheckUnchanged reports whether the stored entry already carries the
// given content hash, allowing the sync task to skip unchanged upserts.
func (r *entryRepository) CheckUnchanged(feedName, entryName, contentHash string) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM entries
		WHERE feed_name = ? AND name = ? AND content_hash = ?
		LIMIT 1
	`, feedName, entryName, contentHash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}

	return true, nil
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var fieldsJSON string

	err := row.Scan(&entry.ID, &entry.FeedName, &entry.Name, &fieldsJSON,
		&entry.ContentHash, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &entry.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode entry fields: %w", err)
	}

	return &entry, nil
}
