package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/application/catalog"
	domaincatalog "github.com/jewelry/backend/internal/domain/catalog"
)

// LookupHandler serves metal types, stone types and occasions
type LookupHandler struct {
	BaseHandler
	lookupService *catalog.LookupService
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookupService *catalog.LookupService) *LookupHandler {
	return &LookupHandler{
		lookupService: lookupService,
	}
}

// ListKind returns the public listing handler of one lookup table
//
// @Summary      List lookup values
// @Description  Served at /metal-types, /stone-types and /occasions
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.LookupResponse}
// @Router       /metal-types [get]
// @Router       /stone-types [get]
// @Router       /occasions [get]
func (h *LookupHandler) ListKind(kind domaincatalog.LookupKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.list(c, kind)
	}
}

// List godoc
// @Summary      List lookup values (admin)
// @Tags         admin-catalog
// @Produce      json
// @Param        kind path string true "metal-types, stone-types or occasions"
// @Success      200 {object} dto.Response{data=[]catalog.LookupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/lookups/{kind} [get]
func (h *LookupHandler) List(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	h.list(c, kind)
}

func (h *LookupHandler) list(c *gin.Context, kind domaincatalog.LookupKind) {
	values, err := h.lookupService.List(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, values)
}

// Create godoc
// @Summary      Create lookup value
// @Description  Names are trimmed, title-cased and unique per table
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        kind path string true "metal-types, stone-types or occasions"
// @Param        request body catalog.LookupRequest true "Name"
// @Success      201 {object} dto.Response{data=catalog.LookupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/lookups/{kind} [post]
func (h *LookupHandler) Create(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}

	var req catalog.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	value, err := h.lookupService.Create(c.Request.Context(), kind, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, value)
}

// Rename godoc
// @Summary      Rename lookup value
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        kind path string true "metal-types, stone-types or occasions"
// @Param        id path int true "Lookup ID"
// @Param        request body catalog.LookupRequest true "Name"
// @Success      200 {object} dto.Response{data=catalog.LookupResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/lookups/{kind}/{id} [put]
func (h *LookupHandler) Rename(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	var req catalog.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	value, err := h.lookupService.Rename(c.Request.Context(), kind, id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, value)
}

// Delete godoc
// @Summary      Delete lookup value
// @Description  Refused while products reference the value
// @Tags         admin-catalog
// @Param        kind path string true "metal-types, stone-types or occasions"
// @Param        id path int true "Lookup ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/lookups/{kind}/{id} [delete]
func (h *LookupHandler) Delete(c *gin.Context) {
	kind, ok := h.kindParam(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.lookupService.Delete(c.Request.Context(), kind, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *LookupHandler) kindParam(c *gin.Context) (domaincatalog.LookupKind, bool) {
	kind, err := domaincatalog.ParseLookupKind(c.Param("kind"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return kind, true
}
