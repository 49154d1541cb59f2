package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/application/review"
	"github.com/jewelry/backend/internal/domain/shared"
)

// ReviewHandler handles product reviews and their moderation
type ReviewHandler struct {
	BaseHandler
	reviewService *review.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// ListForProduct godoc
// @Summary      Product reviews
// @Description  Approved reviews of a product, newest first
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]review.ReviewResponse,meta=dto.Meta}
// @Router       /products/{id}/reviews [get]
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	page, err := h.reviewService.ListForProduct(c.Request.Context(), productID,
		intQuery(c, "page", 1), shared.PageLimit(intQuery(c, "page_size", 0)))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// Submit godoc
// @Summary      Review a product
// @Description  One review per customer and product; reviews are published after moderation
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body review.SubmitReviewRequest true "Review"
// @Success      201 {object} dto.Response{data=review.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req review.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.reviewService.Submit(c.Request.Context(), userID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, created)
}

// List godoc
// @Summary      List reviews (admin)
// @Tags         admin-reviews
// @Produce      json
// @Param        status query string false "pending, approved or rejected"
// @Param        product_id query string false "Product ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]review.ReviewResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var query review.ReviewListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.reviewService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// Approve godoc
// @Summary      Approve review
// @Description  Publishes the review and recomputes the product rating
// @Tags         admin-reviews
// @Produce      json
// @Param        id path string true "Review ID"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	h.moderate(c, h.reviewService.Approve)
}

// Reject godoc
// @Summary      Reject review
// @Tags         admin-reviews
// @Produce      json
// @Param        id path string true "Review ID"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	h.moderate(c, h.reviewService.Reject)
}

func (h *ReviewHandler) moderate(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*review.ReviewResponse, error)) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	moderated, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, moderated)
}

// Delete godoc
// @Summary      Delete review
// @Tags         admin-reviews
// @Param        id path string true "Review ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
