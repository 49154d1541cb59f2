package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/application/identity"
)

// UserHandler handles user administration
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsersQuery filters the admin user list
type ListUsersQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Role     string `form:"role" binding:"omitempty,oneof=customer admin"`
	Status   string `form:"status" binding:"omitempty,oneof=active disabled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin"`
}

// UpdateUserStatusRequest enables or disables an account
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// List godoc
// @Summary      List users
// @Tags         admin-users
// @Produce      json
// @Param        search query string false "Email or name"
// @Param        role query string false "customer or admin"
// @Param        status query string false "active or disabled"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]identity.UserResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.userService.List(c.Request.Context(), identity.ListUsersInput{
		Search:   query.Search,
		Role:     query.Role,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, page)
}

// Get godoc
// @Summary      Get user
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// UpdateRole godoc
// @Summary      Change user role
// @Description  Admins cannot change their own role. The user's sessions are revoked.
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateRoleRequest true "Role"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actorID, id, req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// UpdateStatus godoc
// @Summary      Enable or disable a user
// @Description  Disabling revokes the user's sessions. Admins cannot disable themselves.
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateUserStatusRequest true "Status"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/status [put]
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), actorID, id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Delete godoc
// @Summary      Delete user
// @Description  Admins cannot delete themselves
// @Tags         admin-users
// @Param        id path string true "User ID"
// @Success      204
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, id, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *UserHandler) actorAndTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actorID, ok := h.currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return actorID, id, true
}
