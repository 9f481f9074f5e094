package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eval-api/internal/service"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

type reportExporter interface {
	ExportCareerReport(ctx context.Context, userID, careerID, period, format string) (*service.ExportedFile, error)
	ExportAllCareers(ctx context.Context, userID, period, format string) (*service.ExportedFile, error)
}

// ReportHandler exposes career and faculty reports with their exports.
type ReportHandler struct {
	reports  reportService
	exporter reportExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService, exporter reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exporter: exporter}
}

// CareerReport godoc
// @Summary Career report
// @Description Career statistics plus the professor roster. Coordinators only see their own career.
// @Tags Reports
// @Produce json
// @Param careerId path string true "Career ID"
// @Param period query string false "Academic period (YYYY-1 or YYYY-2)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/by-career/{careerId} [get]
func (h *ReportHandler) CareerReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	report, err := h.reports.CareerReport(c.Request.Context(), userID, c.Param("careerId"), c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, report)
}

// AllCareers godoc
// @Summary Faculty report
// @Tags Reports
// @Produce json
// @Param period query string false "Academic period (YYYY-1 or YYYY-2)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/all-careers [get]
func (h *ReportHandler) AllCareers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	report, err := h.reports.AllCareersReport(c.Request.Context(), userID, c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, report)
}

// ExportCareerReport godoc
// @Summary Download a career report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param careerId path string true "Career ID"
// @Param period query string false "Academic period"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /reports/by-career/{careerId}/export [get]
func (h *ReportHandler) ExportCareerReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportCareerReport(c.Request.Context(), userID, c.Param("careerId"), c.Query("period"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// ExportAllCareers godoc
// @Summary Download the faculty report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param period query string false "Academic period"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /reports/all-careers/export [get]
func (h *ReportHandler) ExportAllCareers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	file, err := h.exporter.ExportAllCareers(c.Request.Context(), userID, c.Query("period"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
