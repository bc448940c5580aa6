package v1

import (
	"net/http"

	"hirematrix-backend/internal/delivery/http/middleware"
	"hirematrix-backend/internal/delivery/http/response"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC   domain.UserUsecase
	healthUC domain.HealthUsecase
}

// NewUserHandler registers the admin routes.
func NewUserHandler(protected *gin.RouterGroup, userUC domain.UserUsecase, healthUC domain.HealthUsecase) {
	handler := &UserHandler{userUC: userUC, healthUC: healthUC}

	users := protected.Group("/users")
	{
		users.POST("", handler.Create)
		users.GET("", handler.List)
	}
	protected.GET("/db/status", handler.DBStatus)
}

// Create godoc
// @Summary      Create user
// @Description  Create a staff or candidate account in the tenant named by tenant_id
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateUserRequest  true  "User"
// @Success      201      {object}  response.Response{data=domain.User}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users [post]
// @Security     BearerAuth
func (h *UserHandler) Create(c *gin.Context) {
	p, err := middleware.RequireRole(c, domain.RoleAdmin)
	if err != nil {
		c.Error(err)
		return
	}

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	user, err := h.userUC.CreateUser(c.Request.Context(), p, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "User created", user)
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.User}
// @Failure      403  {object}  response.Response
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) List(c *gin.Context) {
	p, err := middleware.RequireRole(c, domain.RoleAdmin)
	if err != nil {
		c.Error(err)
		return
	}

	users, err := h.userUC.ListUsers(c.Request.Context(), p)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Users retrieved", users)
}

// DBStatus godoc
// @Summary      Database status
// @Description  Probe PostgreSQL and Redis connectivity
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /db/status [get]
// @Security     BearerAuth
func (h *UserHandler) DBStatus(c *gin.Context) {
	if _, err := middleware.RequireRole(c, domain.RoleAdmin); err != nil {
		c.Error(err)
		return
	}

	status, err := h.healthUC.DatabaseStatus(c.Request.Context())
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Database status", status)
}
