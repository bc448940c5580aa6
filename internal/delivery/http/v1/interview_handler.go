package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"hirematrix-backend/internal/delivery/http/middleware"
	"hirematrix-backend/internal/delivery/http/response"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InterviewHandler struct {
	interviewUC  domain.InterviewUsecase
	onboardingUC domain.OnboardingUsecase
}

// NewInterviewHandler registers the interview routes. answerMiddleware runs
// before SubmitAnswer.
func NewInterviewHandler(protected *gin.RouterGroup, interviewUC domain.InterviewUsecase, onboardingUC domain.OnboardingUsecase, answerMiddleware ...gin.HandlerFunc) {
	handler := &InterviewHandler{
		interviewUC:  interviewUC,
		onboardingUC: onboardingUC,
	}

	interviews := protected.Group("/interviews")
	{
		interviews.GET("", handler.List)
		interviews.GET("/export", handler.Export)
		interviews.POST("/forward", handler.Forward)
		interviews.GET("/:interviewId/session", handler.StartSession)
		interviews.POST("/:interviewId/answer", append(answerMiddleware, handler.SubmitAnswer)...)
	}
}

// StartSession godoc
// @Summary      Resume an interview session
// @Description  Return the current question of an ongoing interview in the caller's tenant
// @Tags         interviews
// @Produce      json
// @Param        interviewId  path      string  true  "Interview ID"
// @Success      200          {object}  response.Response{data=domain.SessionView}
// @Failure      400          {object}  response.Response
// @Failure      401          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /interviews/{interviewId}/session [get]
// @Security     BearerAuth
func (h *InterviewHandler) StartSession(c *gin.Context) {
	p, err := middleware.RequireRole(c)
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.interviewUC.StartSession(c.Request.Context(), p, c.Param("interviewId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview session", view)
}

// SubmitAnswer godoc
// @Summary      Submit an answer
// @Description  Forward the answer to the interview engine and record the result.
// @Description  The engine response is returned unchanged with interview_id added.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        interviewId      path      string                      true   "Interview ID"
// @Param        Idempotency-Key  header    string                      false  "Replay protection key"
// @Param        request          body      domain.SubmitAnswerRequest  true   "Answer"
// @Success      200              {object}  response.Response
// @Failure      400              {object}  response.Response
// @Failure      404              {object}  response.Response
// @Failure      409              {object}  response.Response
// @Failure      502              {object}  response.Response
// @Router       /interviews/{interviewId}/answer [post]
// @Security     BearerAuth
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	p, err := middleware.RequireRole(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req domain.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		req.IdempotencyKey = key
	}

	raw, err := h.interviewUC.SubmitAnswer(c.Request.Context(), p, c.Param("interviewId"), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Answer recorded", json.RawMessage(raw))
}

// List godoc
// @Summary      Interview dashboard
// @Description  List the tenant's interviews with scores and cost
// @Tags         interviews
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.InterviewDashboardRow}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /interviews [get]
// @Security     BearerAuth
func (h *InterviewHandler) List(c *gin.Context) {
	p, err := middleware.RequireRole(c, domain.RoleDirector, domain.RoleAdmin)
	if err != nil {
		c.Error(err)
		return
	}

	rows, err := h.interviewUC.ListInterviews(c.Request.Context(), p)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interviews retrieved", rows)
}

// Export godoc
// @Summary      Export interviews
// @Description  Download the tenant's interview dashboard as an XLSX workbook
// @Tags         interviews
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /interviews/export [get]
// @Security     BearerAuth
func (h *InterviewHandler) Export(c *gin.Context) {
	p, err := middleware.RequireRole(c, domain.RoleDirector, domain.RoleAdmin)
	if err != nil {
		c.Error(err)
		return
	}

	data, filename, err := h.interviewUC.ExportInterviews(c.Request.Context(), p)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Forward godoc
// @Summary      Forward a candidate to interview
// @Description  Start an engine interview for a shortlisted candidate and issue portal credentials.
// @Description  The temporary password is returned only in this response.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ForwardCandidateRequest  true  "Candidate"
// @Success      201      {object}  response.Response{data=domain.ForwardCandidateResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /interviews/forward [post]
// @Security     BearerAuth
func (h *InterviewHandler) Forward(c *gin.Context) {
	p, err := middleware.RequireRole(c, domain.RoleRecruiter, domain.RoleAdmin)
	if err != nil {
		c.Error(err)
		return
	}

	var req domain.ForwardCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	res, err := h.onboardingUC.ForwardCandidate(c.Request.Context(), p, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Candidate forwarded to interview", res)
}
