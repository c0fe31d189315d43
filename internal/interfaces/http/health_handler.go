package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/eshop-api/internal/application/dto"
)

// HealthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func HealthHandler(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok"})
}
