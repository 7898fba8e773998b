package attendance

import "time"

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half-day"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay, StatusAbsent:
		return true
	}
	return false
}

type Device string

const (
	DeviceMobile Device = "mobile"
	DeviceWeb    Device = "web"
	DeviceQR     Device = "qr"
)

func (d Device) Valid() bool {
	switch d {
	case DeviceMobile, DeviceWeb, DeviceQR:
		return true
	}
	return false
}

// Record is one user's attendance entry for one calendar day. Date carries
// no time-of-day component; at most one Record exists per (UserID, Date),
// enforced by the store's composite unique key.
type Record struct {
	ID           string
	UserID       string
	Date         time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       Status
	TotalHours   float64
	Device       Device
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined from users on read, for reports and exports
	UserName       *string
	UserEmail      *string
	UserEmployeeID *string
	UserDepartment *string
}
