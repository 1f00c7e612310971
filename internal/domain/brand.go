package domain

import "time"

// Brand owns domains and SEO networks and scopes user access. Brand CRUD
// itself lives outside this system's core; this type
// exists so other entities can reference a brand_id with a concrete shape.
type Brand struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
