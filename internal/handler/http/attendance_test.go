package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendx/attendx-backend-go/internal/config"
	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/domain/report"
	"github.com/attendx/attendx-backend-go/internal/handler/http/response"
	"github.com/attendx/attendx-backend-go/internal/pkg/jwt"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeRecordService struct {
	checkInResp attendance.RecordResponse
	checkInErr  error
}

func (f *fakeRecordService) CheckIn(ctx context.Context, userID string, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	return f.checkInResp, f.checkInErr
}

func (f *fakeRecordService) CheckOut(ctx context.Context, userID string, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, nil
}

func (f *fakeRecordService) Today(ctx context.Context, userID string) (*attendance.RecordResponse, error) {
	return nil, nil
}

func (f *fakeRecordService) MyHistory(ctx context.Context, userID string, filter attendance.HistoryFilter) ([]attendance.RecordResponse, error) {
	return nil, nil
}

func (f *fakeRecordService) EmployeeHistory(ctx context.Context, userID string) ([]attendance.RecordResponse, error) {
	return nil, nil
}

func (f *fakeRecordService) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.RecordResponse, error) {
	return []attendance.RecordResponse{}, nil
}

func (f *fakeRecordService) MarkAbsent(ctx context.Context, date time.Time, userIDs []string) ([]attendance.RecordResponse, error) {
	return nil, nil
}

func (f *fakeRecordService) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, nil
}

type fakeReportService struct{}

func (f *fakeReportService) MonthlySummary(ctx context.Context, userID string, ref time.Time) (report.MonthlySummary, error) {
	return report.MonthlySummary{}, nil
}

func (f *fakeReportService) RollingWindow(ctx context.Context, userID string, nDays int) ([]attendance.RecordResponse, error) {
	return nil, nil
}

func (f *fakeReportService) Trend(ctx context.Context, nDays int) ([]report.TrendPoint, []report.TrendPoint, error) {
	return nil, nil, nil
}

func (f *fakeReportService) DepartmentRollup(ctx context.Context, date time.Time) (map[string]report.DepartmentCount, error) {
	return nil, nil
}

func (f *fakeReportService) TodayStatus(ctx context.Context) (report.TodayStatus, error) {
	return report.TodayStatus{}, nil
}

func (f *fakeReportService) ManagerSummary(ctx context.Context) (report.ManagerSummary, error) {
	return report.ManagerSummary{}, nil
}

func (f *fakeReportService) MySummary(ctx context.Context, userID string) (report.MySummary, error) {
	return report.MySummary{}, nil
}

func (f *fakeReportService) EmployeeDashboard(ctx context.Context, userID string) (report.EmployeeDashboard, error) {
	return report.EmployeeDashboard{}, nil
}

func (f *fakeReportService) Export(ctx context.Context, filter report.ExportFilter) ([]byte, error) {
	return []byte("Employee Name\n"), nil
}

func newTestRouter(recordSvc attendance.RecordService) (http.Handler, jwt.Service) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.AllowedOrigins = []string{"http://localhost:3000"}

	jwtService := jwt.NewJWTService(handlerTestSecret)
	attendanceHandler := NewAttendanceHandler(recordSvc, jwtService)
	reportHandler := NewReportHandler(&fakeReportService{}, jwtService)

	return NewRouter(cfg, jwtService, attendanceHandler, reportHandler), jwtService
}

func mintToken(t *testing.T, jwtService jwt.Service, role string) string {
	t.Helper()
	_, token, err := jwtService.JWTAuth().Encode(map[string]interface{}{
		"user_id": uuid.NewString(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var env response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCheckIn_RequiresToken(t *testing.T) {
	router, _ := newTestRouter(&fakeRecordService{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/attendance/checkin", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckIn_ManagerForbidden(t *testing.T) {
	router, jwtService := newTestRouter(&fakeRecordService{})
	token := mintToken(t, jwtService, "manager")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/attendance/checkin", token, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestCheckIn_Success(t *testing.T) {
	svc := &fakeRecordService{checkInResp: attendance.RecordResponse{
		ID:     uuid.NewString(),
		Date:   "2026-03-10",
		Status: attendance.StatusPresent,
		Device: attendance.DeviceWeb,
	}}
	router, jwtService := newTestRouter(svc)
	token := mintToken(t, jwtService, "employee")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/attendance/checkin", token,
		map[string]string{"device": "web"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestCheckIn_ConflictEnvelope(t *testing.T) {
	svc := &fakeRecordService{checkInErr: attendance.ErrAlreadyCheckedIn}
	router, jwtService := newTestRouter(svc)
	token := mintToken(t, jwtService, "employee")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/attendance/checkin", token, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestList_EmployeeForbidden(t *testing.T) {
	router, jwtService := newTestRouter(&fakeRecordService{})
	token := mintToken(t, jwtService, "employee")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/attendance/all", token, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkAbsent_ValidationEnvelope(t *testing.T) {
	router, jwtService := newTestRouter(&fakeRecordService{})
	token := mintToken(t, jwtService, "manager")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/attendance/mark-absent", token,
		map[string]interface{}{"date": "not-a-date", "userIds": []string{}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "date")
	assert.Contains(t, env.Error.Details, "userIds")
}

func TestExport_ServedAsAttachment(t *testing.T) {
	router, jwtService := newTestRouter(&fakeRecordService{})
	token := mintToken(t, jwtService, "manager")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/attendance/export", token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=attendance_export.csv", rec.Header().Get("Content-Disposition"))
}
