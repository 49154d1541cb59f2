package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/application/cart"
)

// CartHandler handles the caller's shopping cart
type CartHandler struct {
	BaseHandler
	cartService *cart.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// Get godoc
// @Summary      Get cart
// @Description  The priced cart. Lines whose product vanished or went inactive are dropped.
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.CartView}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	view, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// AddItem godoc
// @Summary      Add to cart
// @Description  Merges with an existing line; the quantity is capped by stock
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cart.AddItemRequest true "Item"
// @Success      200 {object} dto.Response{data=cart.CartView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// UpdateItem godoc
// @Summary      Change a line quantity
// @Description  A quantity of zero removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        productId path string true "Product ID"
// @Param        request body cart.UpdateItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cart.CartView}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{productId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// RemoveItem godoc
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} dto.Response{data=cart.CartView}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Success      204
// @Security     BearerAuth
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
