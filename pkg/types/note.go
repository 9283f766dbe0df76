package types

// Note is one free-form note on a character sheet.
type Note struct {
	ID      *int64  `json:"id"`
	Date    string  `json:"date"`
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// InputNote describes a new note; the date is assigned on insert.
type InputNote struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}
