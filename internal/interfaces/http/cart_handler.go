package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/eshop-api/internal/application/cart"
	"github.com/jhoicas/eshop-api/internal/application/dto"
)

// CartHandler maneja el carrito de la sesión actual (requiere SessionMiddleware).
type CartHandler struct {
	svc *cart.Service
}

// NewCartHandler construye el handler.
func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

// Get godoc
// @Summary      Carrito de la sesión
// @Tags         cart
// @Produce      json
// @Success      200  {object}  dto.CartSummary
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.GetOrCreateCart(c.UserContext(), GetSessionKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart.ToCartSummary(out))
}

// AddItem godoc
// @Summary      Añadir producto al carrito
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddItemRequest  true  "Producto y cantidad (por defecto 1)"
// @Success      201   {object}  dto.CartMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Router       /api/cart/add_item [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	res, err := h.svc.AddItem(c.UserContext(), GetSessionKey(c), in.ProductID, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mutation(res))
}

// UpdateItem godoc
// @Summary      Cambiar la cantidad de una línea
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateItemRequest  true  "Línea y nueva cantidad"
// @Success      200   {object}  dto.CartMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Router       /api/cart/update_item [put]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.UpdateItem(c.UserContext(), GetSessionKey(c), in.ItemID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mutation(res))
}

// RemoveItem godoc
// @Summary      Quitar una línea del carrito
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body     body   dto.RemoveItemRequest  false  "Línea a quitar"
// @Param        item_id  query  int                    false  "Alternativa al cuerpo"
// @Success      200   {object}  dto.CartMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/remove_item [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	var in dto.RemoveItemRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if in.ItemID == 0 {
		// DELETE con cuerpo no siempre llega a través de proxies
		in.ItemID, _ = strconv.ParseInt(c.Query("item_id"), 10, 64)
	}
	res, err := h.svc.RemoveItem(c.UserContext(), GetSessionKey(c), in.ItemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mutation(res))
}

// Clear godoc
// @Summary      Vaciar el carrito
// @Tags         cart
// @Produce      json
// @Success      200  {object}  dto.CartMutationResponse
// @Router       /api/cart/clear [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	res, err := h.svc.Clear(c.UserContext(), GetSessionKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mutation(res))
}

// QuotePDF godoc
// @Summary      Presupuesto del carrito en PDF
// @Tags         cart
// @Produce      application/pdf
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cart/quote.pdf [get]
func (h *CartHandler) QuotePDF(c *fiber.Ctx) error {
	body, err := h.svc.QuotePDF(c.UserContext(), GetSessionKey(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="presupuesto.pdf"`)
	return c.Send(body)
}

func mutation(res *cart.Result) dto.CartMutationResponse {
	return dto.CartMutationResponse{Message: res.Message, Cart: cart.ToCartSummary(res.Cart)}
}
