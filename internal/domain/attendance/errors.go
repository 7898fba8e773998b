package attendance

import "errors"

// Attendance domain errors
var (
	// Lifecycle guard errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")

	// General errors
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrDuplicateRecord  = errors.New("attendance record already exists for this user and date")
	ErrInvalidTimeRange = errors.New("check-out time must be after check-in time")
)
