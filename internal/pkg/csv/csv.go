// Package csv renders attendance record sets in the fixed export layout.
//
// The nine-column header, the column order and the cell formats are a
// compatibility contract with existing export consumers. Fields are written
// raw, without quoting; the format predates proper CSV escaping and changing
// it would alter every historical export byte-for-byte.
package csv

import (
	"fmt"
	"strings"
	"time"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
)

var header = []string{
	"Employee Name",
	"Employee ID",
	"Email",
	"Department",
	"Date",
	"Check In",
	"Check Out",
	"Status",
	"Total Hours",
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// Render produces the export document: the header row followed by exactly
// one row per record, rows joined by newlines.
func Render(records []attendance.Record) []byte {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(header, ","))

	for _, rec := range records {
		row := []string{
			derefOrEmpty(rec.UserName),
			derefOrEmpty(rec.UserEmployeeID),
			derefOrEmpty(rec.UserEmail),
			derefOrEmpty(rec.UserDepartment),
			rec.Date.Format("2006-01-02"),
			formatClock(rec.CheckInTime),
			formatClock(rec.CheckOutTime),
			string(rec.Status),
			fmt.Sprintf("%.2f", rec.TotalHours),
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return []byte(strings.Join(lines, "\n"))
}
