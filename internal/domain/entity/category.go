package entity

import "time"

// Category agrupa productos. Slug es el identificador público (único), Name también es único.
type Category struct {
	ID          int64
	Name        string
	Description string
	Slug        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
