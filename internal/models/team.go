package models

import "time"

// TeamMember is a staff profile shown on the public site.
type TeamMember struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Title     string    `db:"title" json:"title"`
	Bio       string    `db:"bio" json:"bio"`
	ImageKey  *string   `db:"image_key" json:"imageKey,omitempty"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
