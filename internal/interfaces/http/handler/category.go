package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/application/catalog"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	BaseHandler
	categoryService *catalog.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// List godoc
// @Summary      List categories
// @Description  All categories ordered by sort order, then name
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.CategoryResponse}
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}

// Get godoc
// @Summary      Get category
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// Create godoc
// @Summary      Create category
// @Description  The slug is derived from the name when omitted
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalog.CategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalog.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// Update godoc
// @Summary      Update category
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body catalog.CategoryRequest true "Category"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// Delete godoc
// @Summary      Delete category
// @Description  Refused while products reference the category
// @Tags         admin-catalog
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
