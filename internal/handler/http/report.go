package http

import (
	"net/http"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/domain/report"
	"github.com/attendx/attendx-backend-go/internal/handler/http/response"
	"github.com/attendx/attendx-backend-go/internal/pkg/jwt"
)

type ReportHandler interface {
	MySummary(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	TodayStatus(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	EmployeeDashboard(w http.ResponseWriter, r *http.Request)
	ManagerDashboard(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	jwtService    jwt.Service
}

func NewReportHandler(reportService report.ReportService, jwtService jwt.Service) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		jwtService:    jwtService,
	}
}

// MySummary implements ReportHandler.
func (h *reportHandlerImpl) MySummary(w http.ResponseWriter, r *http.Request) {
	identity, err := h.jwtService.Identity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	result, err := h.reportService.MySummary(r.Context(), identity.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Summary implements ReportHandler.
func (h *reportHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.ManagerSummary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TodayStatus implements ReportHandler.
func (h *reportHandlerImpl) TodayStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.TodayStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements ReportHandler.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	filter := report.ExportFilter{}

	if start := r.URL.Query().Get("start"); start != "" {
		filter.Start = &start
	}
	if end := r.URL.Query().Get("end"); end != "" {
		filter.End = &end
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := attendance.Status(status)
		filter.Status = &s
	}

	body, err := h.reportService.Export(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.CSV(w, "attendance_export.csv", body)
}

// EmployeeDashboard implements ReportHandler.
func (h *reportHandlerImpl) EmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	identity, err := h.jwtService.Identity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	result, err := h.reportService.EmployeeDashboard(r.Context(), identity.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ManagerDashboard implements ReportHandler.
func (h *reportHandlerImpl) ManagerDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.ManagerSummary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
