package models

import "time"

// Account represents a registered user
type Account struct {
	ID           string
	Handle       string
	PasswordHash string
	CreatedAt    time.Time
}

// Album is a named collection of photos owned by one account
type Album struct {
	ID          string
	AccountID   string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Photo is an uploaded image belonging to exactly one album
type Photo struct {
	ID          string
	AlbumID     string
	AccountID   string
	BlobKey     string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Like marks that an account liked a photo. At most one row exists
// per (account, photo) pair; the database enforces this.
type Like struct {
	AccountID string
	PhotoID   string
	CreatedAt time.Time
}

// Comment is a text note attached to a photo
type Comment struct {
	ID        string
	PhotoID   string
	AccountID string
	Body      string
	CreatedAt time.Time
}

// CommentWithAuthor pairs a comment with the handle of its author,
// as needed by the comment list view.
type CommentWithAuthor struct {
	Comment
	AuthorHandle string
}
