package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/application/usecase"
)

// CategoryHandler maneja las peticiones HTTP de categorías.
type CategoryHandler struct {
	uc *usecase.CategoryUseCase
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

// List godoc
// @Summary      Listar categorías
// @Tags         categories
// @Produce      json
// @Param        search    query  string  false  "Texto en nombre o descripción"
// @Param        ordering  query  string  false  "name, -name, created_at, -created_at"
// @Success      200  {array}   dto.CategorySummary
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("search"), c.Query("ordering"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategorySummary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener categoría por slug
// @Tags         categories
// @Produce      json
// @Param        slug  path  string  true  "Slug"
// @Success      200   {object}  dto.CategorySummary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{slug} [get]
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        slug  path  string                     true  "Slug"
// @Param        body  body  dto.UpdateCategoryRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.CategorySummary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories/{slug} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría (con sus productos)
// @Tags         categories
// @Param        slug  path  string  true  "Slug"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{slug} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("slug")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Products godoc
// @Summary      Productos disponibles de una categoría
// @Tags         categories
// @Produce      json
// @Param        slug  path  string  true  "Slug"
// @Success      200   {array}   dto.ProductSummary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/{slug}/products [get]
func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	out, err := h.uc.Products(c.UserContext(), c.Params("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
