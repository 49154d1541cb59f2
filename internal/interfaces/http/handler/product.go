package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/application/catalog"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the storefront catalog and the admin product screens
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
	imageService   *catalog.ImageService
}

// NewProductHandler creates a new product handler. imageService may be nil
// when object storage is not configured.
func NewProductHandler(productService *catalog.ProductService, imageService *catalog.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// List godoc
// @Summary      List products
// @Description  Storefront product listing. Inactive products are hidden.
// @Tags         catalog
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        category query string false "Category id or slug"
// @Param        metal_type query int false "Metal type id"
// @Param        stone_type query int false "Stone type id"
// @Param        occasion query int false "Occasion id"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        featured query bool false "Featured only"
// @Param        in_stock query bool false "In stock only"
// @Param        sort query string false "newest, price_asc, price_desc, name, rating"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, false)
}

// AdminList godoc
// @Summary      List products (admin)
// @Description  Product listing including inactive products
// @Tags         admin-products
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        active query bool false "Filter by active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	h.list(c, true)
}

func (h *ProductHandler) list(c *gin.Context, admin bool) {
	var query catalog.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.productService.List(c.Request.Context(), query, admin)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	h.get(c, false)
}

// AdminGet godoc
// @Summary      Get product (admin)
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	h.get(c, true)
}

func (h *ProductHandler) get(c *gin.Context, admin bool) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id, admin)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Related godoc
// @Summary      Related products
// @Description  Active products of the same category
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        limit query int false "Maximum number of products" default(4)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id}/related [get]
func (h *ProductHandler) Related(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	products, err := h.productService.Related(c.Request.Context(), id, intQuery(c, "limit", catalog.DefaultRelatedLimit))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Create godoc
// @Summary      Create product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update godoc
// @Summary      Update product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.UpdateProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete product
// @Tags         admin-products
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SetStock godoc
// @Summary      Set stock level
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.SetStockRequest true "Stock"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/stock [put]
func (h *ProductHandler) SetStock(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.SetStock(c.Request.Context(), id, req.Stock)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// SetFeatured godoc
// @Summary      Set featured flag
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.SetFlagRequest true "Featured"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/featured [put]
func (h *ProductHandler) SetFeatured(c *gin.Context) {
	h.setFlag(c, h.productService.SetFeatured)
}

// ToggleFeatured godoc
// @Summary      Toggle featured flag
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/featured/toggle [post]
func (h *ProductHandler) ToggleFeatured(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.ToggleFeatured(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// SetActive godoc
// @Summary      Activate or deactivate a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.SetFlagRequest true "Active"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/active [put]
func (h *ProductHandler) SetActive(c *gin.Context) {
	h.setFlag(c, h.productService.SetActive)
}

func (h *ProductHandler) setFlag(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, value bool) (*catalog.ProductResponse, error)) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := apply(c.Request.Context(), id, req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// RequestImageUpload godoc
// @Summary      Request an image upload URL
// @Description  Returns a presigned PUT URL for a JPEG, PNG or WebP image
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.ImageUploadRequest true "File"
// @Success      200 {object} dto.Response{data=catalog.ImageUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/images/upload-url [post]
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	if !h.imagesEnabled(c) {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	upload, err := h.imageService.RequestUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, upload)
}

// AttachImage godoc
// @Summary      Attach an uploaded image
// @Description  Adds the uploaded object to the gallery; the first image becomes the cover
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.AttachImageRequest true "Storage key"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) AttachImage(c *gin.Context) {
	if !h.imagesEnabled(c) {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.AttachImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.imageService.Attach(c.Request.Context(), id, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// RemoveImage godoc
// @Summary      Remove an image
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.RemoveImageRequest true "Image URL"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [delete]
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	if !h.imagesEnabled(c) {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req catalog.RemoveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.imageService.Remove(c.Request.Context(), id, req.URL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

func (h *ProductHandler) imagesEnabled(c *gin.Context) bool {
	if h.imageService == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Image storage is not configured")
		return false
	}
	return true
}
