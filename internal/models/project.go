package models

import "time"

// Project is a portfolio entry surfaced on the public site and managed from
// the admin dashboard.
type Project struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Summary     string    `db:"summary" json:"summary"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	ImageKey    *string   `db:"image_key" json:"imageKey,omitempty"`
	Featured    bool      `db:"featured" json:"featured"`
	SortOrder   int       `db:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
