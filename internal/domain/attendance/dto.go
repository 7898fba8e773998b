package attendance

import (
	"time"

	"github.com/attendx/attendx-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Device Device `json:"device"`
	// At carries the instant the action was initiated on the client. It is
	// only sent when a queued offline action is replayed; live requests
	// leave it empty and the server clock is used instead.
	At *time.Time `json:"at,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Device == "" {
		r.Device = DeviceWeb
	}
	if !r.Device.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "device",
			Message: "device must be one of mobile, web, qr",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	At *time.Time `json:"at,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	return nil
}

type MarkAbsentRequest struct {
	Date    string   `json:"date"`
	UserIDs []string `json:"userIds"`
}

func (r *MarkAbsentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(r.UserIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "userIds",
			Message: "userIds must be a non-empty array",
		})
	}
	for _, id := range r.UserIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "userIds",
				Message: "userIds must contain valid user ids",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateRecordRequest is the manager's restricted field patch. Status is
// applied verbatim when present; total hours are recomputed whenever a time
// field changes and both times are resolvable.
type UpdateRecordRequest struct {
	ID           string     `json:"-"`
	Status       *Status    `json:"status,omitempty"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	TotalHours   *float64   `json:"totalHours,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid record id",
		})
	}

	if r.Status != nil && !r.Status.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of present, late, half-day, absent",
		})
	}

	if r.TotalHours != nil && *r.TotalHours < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "totalHours",
			Message: "totalHours must not be negative",
		})
	}

	if r.Status == nil && r.CheckInTime == nil && r.CheckOutTime == nil && r.TotalHours == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one of status, checkInTime, checkOutTime, totalHours is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// HistoryFilter bounds an employee's own history query.
type HistoryFilter struct {
	Start *string
	End   *string
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Start != nil && *f.Start != "" {
		if _, ok := validator.IsValidDate(*f.Start); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start",
				Message: "start must be in YYYY-MM-DD format",
			})
		}
	}
	if f.End != nil && *f.End != "" {
		if _, ok := validator.IsValidDate(*f.End); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end",
				Message: "end must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordFilter is the manager-side query across all users, including the
// department filter resolved through the users join.
type RecordFilter struct {
	UserID     *string
	Status     *Status
	Start      *string
	End        *string
	Department *string
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.UserID != nil && *f.UserID != "" && !validator.IsValidUUID(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "userId",
			Message: "userId must be a valid user id",
		})
	}
	if f.Status != nil && *f.Status != "" && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of present, late, half-day, absent",
		})
	}
	if f.Start != nil && *f.Start != "" {
		if _, ok := validator.IsValidDate(*f.Start); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start",
				Message: "start must be in YYYY-MM-DD format",
			})
		}
	}
	if f.End != nil && *f.End != "" {
		if _, ok := validator.IsValidDate(*f.End); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end",
				Message: "end must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type RecordResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	Date         string  `json:"date"`
	CheckInTime  *string `json:"checkInTime"`
	CheckOutTime *string `json:"checkOutTime"`
	Status       Status  `json:"status"`
	TotalHours   float64 `json:"totalHours"`
	Device       Device  `json:"device"`

	UserName       *string `json:"userName,omitempty"`
	UserEmail      *string `json:"userEmail,omitempty"`
	UserEmployeeID *string `json:"userEmployeeId,omitempty"`
	UserDepartment *string `json:"userDepartment,omitempty"`
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

// NewRecordResponse converts a Record entity to its response shape.
func NewRecordResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Date:           rec.Date.Format("2006-01-02"),
		CheckInTime:    timePtrToString(rec.CheckInTime),
		CheckOutTime:   timePtrToString(rec.CheckOutTime),
		Status:         rec.Status,
		TotalHours:     rec.TotalHours,
		Device:         rec.Device,
		UserName:       rec.UserName,
		UserEmail:      rec.UserEmail,
		UserEmployeeID: rec.UserEmployeeID,
		UserDepartment: rec.UserDepartment,
	}
}

func NewRecordResponses(recs []Record) []RecordResponse {
	responses := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		responses = append(responses, NewRecordResponse(rec))
	}
	return responses
}
