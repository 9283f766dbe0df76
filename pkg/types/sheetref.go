package types

// SheetRef is one row of the root catalog: a character's name and uuid plus
// the path of its backing store file.
type SheetRef struct {
	ID     *int64 `json:"id"`
	Name   string `json:"name"`
	UUID   string `json:"uuid"`
	DBPath string `json:"db_path"`
}
