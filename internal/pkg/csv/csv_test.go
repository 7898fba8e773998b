package csv

import (
	"strings"
	"testing"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestRenderHeaderOnly(t *testing.T) {
	out := string(Render(nil))
	assert.Equal(t, "Employee Name,Employee ID,Email,Department,Date,Check In,Check Out,Status,Total Hours", out)
}

func TestRenderOneRowPerRecord(t *testing.T) {
	date := time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local)
	in := time.Date(2024, 5, 6, 9, 20, 0, 0, time.Local)
	out := time.Date(2024, 5, 6, 17, 0, 0, 0, time.Local)

	records := []attendance.Record{
		{
			UserName:       strPtr("Ada Lovelace"),
			UserEmployeeID: strPtr("EMP001"),
			UserEmail:      strPtr("ada@example.com"),
			UserDepartment: strPtr("Engineering"),
			Date:           date,
			CheckInTime:    timePtr(in),
			CheckOutTime:   timePtr(out),
			Status:         attendance.StatusLate,
			TotalHours:     7.67,
		},
		{
			UserName:       strPtr("Grace Hopper"),
			UserEmployeeID: strPtr("EMP002"),
			UserEmail:      strPtr("grace@example.com"),
			UserDepartment: strPtr("Engineering"),
			Date:           date,
			Status:         attendance.StatusAbsent,
		},
	}

	lines := strings.Split(string(Render(records)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Ada Lovelace,EMP001,ada@example.com,Engineering,2024-05-06,09:20,17:00,late,7.67", lines[1])
	assert.Equal(t, "Grace Hopper,EMP002,grace@example.com,Engineering,2024-05-06,,,absent,0.00", lines[2])
}

func TestRenderNullDisplayFields(t *testing.T) {
	records := []attendance.Record{{
		Date:   time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local),
		Status: attendance.StatusPresent,
	}}
	lines := strings.Split(string(Render(records)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, ",,,,2024-05-06,,,present,0.00", lines[1])
}
