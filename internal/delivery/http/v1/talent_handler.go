package v1

import (
	"net/http"

	"hirematrix-backend/internal/delivery/http/middleware"
	"hirematrix-backend/internal/delivery/http/response"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type TalentHandler struct {
	talentUC domain.TalentUsecase
}

func NewTalentHandler(protected *gin.RouterGroup, talentUC domain.TalentUsecase) {
	handler := &TalentHandler{talentUC: talentUC}

	protected.POST("/talent/search", handler.Search)
}

// Search godoc
// @Summary      Search talent
// @Description  Rank candidates against a job description using the talent-search engine
// @Tags         talent
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TalentSearchRequest  true  "Search"
// @Success      200      {object}  response.Response{data=domain.TalentSearchResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /talent/search [post]
// @Security     BearerAuth
func (h *TalentHandler) Search(c *gin.Context) {
	p, err := middleware.RequireRole(c, domain.RoleRecruiter, domain.RoleAdmin)
	if err != nil {
		c.Error(err)
		return
	}

	var req domain.TalentSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	res, err := h.talentUC.Search(c.Request.Context(), p, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Search results", res)
}
