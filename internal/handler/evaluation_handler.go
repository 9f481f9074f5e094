package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

type evaluationService interface {
	Submit(ctx context.Context, userID string, req dto.SubmitEvaluationRequest) (*dto.SubmitEvaluationResponse, error)
	MyGroups(ctx context.Context, userID string) ([]dto.StudentGroup, error)
	Questions(ctx context.Context, userID, groupID string) ([]models.EvaluationQuestion, error)
	InvalidateQuestionCache(ctx context.Context) error
}

// EvaluationHandler exposes the student survey endpoints.
type EvaluationHandler struct {
	evaluations evaluationService
}

// NewEvaluationHandler constructs an EvaluationHandler.
func NewEvaluationHandler(evaluations evaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// MyGroups godoc
// @Summary Groups of the current student
// @Description Active enrolments with the professors the student may evaluate
// @Tags Evaluations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/me/groups [get]
func (h *EvaluationHandler) MyGroups(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groups, err := h.evaluations.MyGroups(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, groups)
}

// Questions godoc
// @Summary Survey questions for a group
// @Tags Evaluations
// @Produce json
// @Param group_id query string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /evaluations/questions [get]
func (h *EvaluationHandler) Questions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	questions, err := h.evaluations.Questions(c.Request.Context(), userID, c.Query("group_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, questions)
}

// Submit godoc
// @Summary Submit an evaluation
// @Description One evaluation per student, professor, group and period
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.SubmitEvaluationRequest true "Evaluation"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	res, err := h.evaluations.Submit(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// InvalidateQuestionCache godoc
// @Summary Drop cached question catalogs
// @Tags Evaluations
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /evaluations/questions/cache [delete]
func (h *EvaluationHandler) InvalidateQuestionCache(c *gin.Context) {
	if err := h.evaluations.InvalidateQuestionCache(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
