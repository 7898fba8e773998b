package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/handler/http/response"
	"github.com/attendx/attendx-backend-go/internal/pkg/jwt"
	"github.com/attendx/attendx-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	MyHistory(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	EmployeeHistory(w http.ResponseWriter, r *http.Request)
	MarkAbsent(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	recordService attendance.RecordService
	jwtService    jwt.Service
}

func NewAttendanceHandler(recordService attendance.RecordService, jwtService jwt.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		recordService: recordService,
		jwtService:    jwtService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	identity, err := h.jwtService.Identity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.CheckInRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.recordService.CheckIn(r.Context(), identity.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	identity, err := h.jwtService.Identity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.CheckOutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.recordService.CheckOut(r.Context(), identity.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	identity, err := h.jwtService.Identity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	result, err := h.recordService.Today(r.Context(), identity.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MyHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) MyHistory(w http.ResponseWriter, r *http.Request) {
	identity, err := h.jwtService.Identity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	filter := attendance.HistoryFilter{}
	if start := r.URL.Query().Get("start"); start != "" {
		filter.Start = &start
	}
	if end := r.URL.Query().Get("end"); end != "" {
		filter.End = &end
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.recordService.MyHistory(r.Context(), identity.UserID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.RecordFilter{}

	if userID := r.URL.Query().Get("userId"); userID != "" {
		filter.UserID = &userID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := attendance.Status(status)
		filter.Status = &s
	}
	if start := r.URL.Query().Get("start"); start != "" {
		filter.Start = &start
	}
	if end := r.URL.Query().Get("end"); end != "" {
		filter.End = &end
	}
	if department := r.URL.Query().Get("department"); department != "" {
		filter.Department = &department
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.recordService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// EmployeeHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) EmployeeHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid employee id", nil)
		return
	}

	results, err := h.recordService.EmployeeHistory(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// MarkAbsent implements AttendanceHandler.
func (h *attendanceHandlerImpl) MarkAbsent(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAbsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	date, _ := time.ParseInLocation("2006-01-02", req.Date, time.Local)

	results, err := h.recordService.MarkAbsent(r.Context(), date, req.UserIDs)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance marked as absent", results)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req attendance.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.recordService.UpdateRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", result)
}
