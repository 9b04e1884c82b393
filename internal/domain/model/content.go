package model

import "time"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Image is a metadata record; the bytes live in the external blob store
// under FileKey. Validated gates public visibility, Active is the
// soft-delete flag.
type Image struct {
	ID         string    `json:"id"`
	FileKey    string    `json:"file_key"`
	Title      string    `json:"title,omitempty"`
	UploaderID string    `json:"uploader_id"`
	Validated  bool      `json:"validated"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
