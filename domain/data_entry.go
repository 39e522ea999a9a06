package domain

// DataEntry is an arbitrary payload tagged with a free-form format label.
// UserID is stored as supplied by the caller.
type DataEntry struct {
	ID      int64  `db:"id" json:"id"`
	Content string `db:"content" json:"content"`
	Format  string `db:"format" json:"format"`
	UserID  int64  `db:"user_id" json:"user_id"`
}
