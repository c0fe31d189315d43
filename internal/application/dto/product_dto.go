package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. IsAvailable es true si se omite.
type CreateProductRequest struct {
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsAvailable *bool           `json:"is_available"`
	Featured    bool            `json:"featured"`
	Image       string          `json:"image"`
}

// UpdateProductRequest actualización parcial; los campos nil no se tocan.
type UpdateProductRequest struct {
	CategoryID  *int64           `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	IsAvailable *bool            `json:"is_available"`
	Featured    *bool            `json:"featured"`
	Image       *string          `json:"image"`
}

// ProductSummary proyección de listado.
type ProductSummary struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CategoryName string          `json:"category_name"`
	Stock        int             `json:"stock"`
	IsAvailable  bool            `json:"is_available"`
	Featured     bool            `json:"featured"`
	InStock      bool            `json:"in_stock"`
	Image        string          `json:"image,omitempty"`
}

// ProductDetail proyección completa de un producto.
type ProductDetail struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    CategorySummary `json:"category"`
	Stock       int             `json:"stock"`
	IsAvailable bool            `json:"is_available"`
	Featured    bool            `json:"featured"`
	InStock     bool            `json:"in_stock"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductSummary `json:"items"`
	Page  PageResponse     `json:"page"`
}

// ProductQuery parámetros crudos del listado tal como llegan en la query string.
// Los valores mal formados se ignoran al convertirlos en filtro.
type ProductQuery struct {
	Category    string `query:"category"`
	IsAvailable string `query:"is_available"`
	Featured    string `query:"featured"`
	MinPrice    string `query:"min_price"`
	MaxPrice    string `query:"max_price"`
	InStockOnly string `query:"in_stock_only"`
	Search      string `query:"search"`
	Ordering    string `query:"ordering"`
	Limit       string `query:"limit"`
	Offset      string `query:"offset"`
}

// FeedItem entrada del feed de productos.
type FeedItem struct {
	ID           int64
	Title        string
	Description  string
	Link         string
	Image        string
	Price        decimal.Decimal
	InStock      bool
	CategoryName string
	UpdatedAt    time.Time
}
