package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/application/trade"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
)

// OrderHandler handles checkout, the customer's orders and order administration
type OrderHandler struct {
	BaseHandler
	checkoutService *trade.CheckoutService
	orderService    *trade.OrderService
	invoiceService  *trade.InvoiceService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(
	checkoutService *trade.CheckoutService,
	orderService *trade.OrderService,
	invoiceService *trade.InvoiceService,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		invoiceService:  invoiceService,
	}
}

// Checkout godoc
// @Summary      Place an order
// @Description  Turns the caller's cart into an order. Prices are re-read from the catalog and stock is decremented in the same transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body trade.CheckoutRequest true "Shipping and payment"
// @Success      201 {object} dto.Response{data=trade.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req trade.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// ListMine godoc
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]trade.OrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var query trade.OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.ListMine(c.Request.Context(), userID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// GetMine godoc
// @Summary      Get one of my orders
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=trade.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetMine(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// CancelMine godoc
// @Summary      Cancel one of my orders
// @Description  Only pending orders can be cancelled by the customer; stock is restored
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=trade.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelMine(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// InvoiceMine godoc
// @Summary      Download my invoice
// @Tags         orders
// @Produce      application/pdf
// @Param        id path int true "Order ID"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) InvoiceMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.ForCustomer(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendInvoice(c, invoice)
}

// List godoc
// @Summary      List orders (admin)
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "Order status"
// @Param        search query string false "Order id, customer name or email"
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]trade.OrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query trade.OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get order (admin)
// @Tags         admin-orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=trade.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Change order status
// @Description  pending → processing → shipped → delivered; pending and processing may be cancelled (restocks)
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body trade.UpdateOrderStatusRequest true "Status"
// @Success      200 {object} dto.Response{data=trade.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	var req trade.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @Summary      Delete order
// @Description  Deletes the order and renumbers the remaining orders 1..N in creation order, atomically. The refreshed listing is returned on success and, under error.details, on failure.
// @Tags         admin-orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        status query string false "Listing filter to refresh with"
// @Param        page query int false "Listing page to refresh with"
// @Success      200 {object} dto.Response{data=trade.DeleteOrderResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	var query trade.OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orderService.Delete(c.Request.Context(), id, query)
	if err != nil {
		h.deleteFailed(c, err, result)
		return
	}

	h.Success(c, result)
}

// deleteFailed reports the error together with the re-fetched listing
func (h *OrderHandler) deleteFailed(c *gin.Context, err error, result *trade.DeleteOrderResult) {
	if result == nil {
		h.HandleError(c, err)
		return
	}

	code, message := dto.ErrCodeInternal, "Failed to delete order"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code, message = dto.NormalizeErrorCode(domainErr.Code), domainErr.Message
	}
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithDetails(code, message, getRequestID(c), result))
}

// Invoice godoc
// @Summary      Download invoice (admin)
// @Tags         admin-orders
// @Produce      application/pdf
// @Param        id path int true "Order ID"
// @Success      200 {file} file
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.ForAdmin(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.sendInvoice(c, invoice)
}

func (h *OrderHandler) sendInvoice(c *gin.Context, invoice *trade.Invoice) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, invoice.ContentType, invoice.Data)
}
