package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/middleware"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

type reportService interface {
	ProfessorStatistics(ctx context.Context, userID, professorID, period string) (*dto.ProfessorStatisticsResponse, error)
	CourseStatistics(ctx context.Context, userID, courseID, period string) (*dto.CourseStatisticsResponse, error)
	CareerReport(ctx context.Context, userID, careerID, period string) (*dto.CareerReport, error)
	AllCareersReport(ctx context.Context, userID, period string) (*dto.AllCareersReport, error)
}

// StatisticsHandler serves per-professor and per-course statistics.
type StatisticsHandler struct {
	reports reportService
}

// NewStatisticsHandler constructs a StatisticsHandler.
func NewStatisticsHandler(reports reportService) *StatisticsHandler {
	return &StatisticsHandler{reports: reports}
}

// ProfessorStatistics godoc
// @Summary Professor statistics
// @Description Use "me" as id for the caller's own professor profile
// @Tags Statistics
// @Produce json
// @Param id path string true "Professor ID or me"
// @Param period query string false "Academic period (YYYY-1 or YYYY-2)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /professors/{id}/statistics [get]
func (h *StatisticsHandler) ProfessorStatistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	period := c.Query("period")
	res, err := h.reports.ProfessorStatistics(c.Request.Context(), userID, c.Param("id"), period)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "period", period)
	respond(c, res)
}

// CourseStatistics godoc
// @Summary Course statistics
// @Tags Statistics
// @Produce json
// @Param id path string true "Course ID"
// @Param period query string false "Academic period (YYYY-1 or YYYY-2)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/statistics [get]
func (h *StatisticsHandler) CourseStatistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	period := c.Query("period")
	res, err := h.reports.CourseStatistics(c.Request.Context(), userID, c.Param("id"), period)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "period", period)
	respond(c, res)
}
