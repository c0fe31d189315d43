package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría. Slug se deriva del nombre si viene vacío.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

// UpdateCategoryRequest actualización parcial de una categoría.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"`
}

// CategorySummary proyección de lectura de una categoría.
// ProductCount cuenta solo productos disponibles.
type CategorySummary struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Slug         string    `json:"slug"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}
