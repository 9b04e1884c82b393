package model

import "time"

// GameKind selects which labeling game an answer belongs to.
type GameKind string

const (
	GameImages GameKind = "image"
	GameTags   GameKind = "tag"
)

// Answer records a user's current categorical opinion on one item (image or
// tag). Re-answering overwrites the same row; no history is kept.
type Answer struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	ItemID              string    `json:"item_id"`
	CategoryID          string    `json:"category_id"`
	RejectedCategoryIDs []string  `json:"rejected_category_ids"`
	Latitude            *float64  `json:"latitude,omitempty"`
	Longitude           *float64  `json:"longitude,omitempty"`
	OtherText           string    `json:"other_text,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Resolved lazily; nil until a resolver fills it in.
	Category *Category `json:"category,omitempty"`
}
