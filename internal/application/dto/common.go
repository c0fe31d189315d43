package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Límites de página para listados de productos.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// DefaultPage aplica valores por defecto y acota el tamaño de página.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StockErrorResponse cuerpo de error por stock insuficiente (409).
type StockErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available int    `json:"available"`
	InCart    int    `json:"in_cart,omitempty"`
}

// HealthResponse respuesta de /health.
type HealthResponse struct {
	Status string `json:"status"`
}
