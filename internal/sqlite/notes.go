package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

// noteDateFormat is the stored textual date of a note. Lexicographic order
// on this layout matches chronological order.
const noteDateFormat = "2006-01-02 15:04:05"

// loadNotes reads every note on a sheet, newest first.
func loadNotes(db querier) ([]types.Note, error) {
	rows, err := db.Query("SELECT id, date, title, content FROM notes ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	defer rows.Close()

	var notes []types.Note
	for rows.Next() {
		var n types.Note
		var id int64
		var content sql.NullString
		if err := rows.Scan(&id, &n.Date, &n.Title, &content); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.ID = &id
		if content.Valid {
			n.Content = &content.String
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// insertNote creates a note with the current time as its date and returns
// the stored row.
func insertNote(db *sql.DB, in types.InputNote) (types.Note, error) {
	n := types.Note{
		Date:    time.Now().UTC().Format(noteDateFormat),
		Title:   in.Title,
		Content: in.Content,
	}
	res, err := db.Exec("INSERT INTO notes (date, title, content) VALUES (?, ?, ?)",
		n.Date, n.Title, n.Content)
	if err != nil {
		return types.Note{}, fmt.Errorf("inserting note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Note{}, fmt.Errorf("reading inserted note id: %w", err)
	}
	n.ID = &id
	return n, nil
}

// updateNote rewrites an existing note by id. The note must already exist.
func updateNote(db *sql.DB, n types.Note) error {
	if n.ID == nil {
		return fmt.Errorf("note has no id: %w", types.ErrNotFound)
	}
	res, err := db.Exec("UPDATE notes SET date = ?, title = ?, content = ? WHERE id = ?",
		n.Date, n.Title, n.Content, *n.ID)
	if err != nil {
		return fmt.Errorf("updating note %d: %w", *n.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking note update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %d: %w", *n.ID, types.ErrNotFound)
	}
	return nil
}
