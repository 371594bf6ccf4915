// internal/app/system/xlsxexport/xlsxexport.go
package xlsxexport

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an .xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	attendanceSheet = "Attendance"
	groupsSheet     = "Groups"
)

// Attendance builds the attendance sheet for one session and date.
// Unmarked students appear with an empty time.
func Attendance(session models.ClassSession, date string, records []models.AttendanceRecord) (*excelize.File, error) {
	f, err := newBook(attendanceSheet)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s · %s · %s", date, session.TimeSlot, session.Room)
	if err := f.SetCellValue(attendanceSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := writeRow(f, attendanceSheet, 3, []any{"#", "MSSV", "Full name", "Status", "Time"}); err != nil {
		return nil, err
	}
	for i, rec := range records {
		row := []any{i + 1, rec.MSSV, rec.FullName, rec.Status.Label(), rec.Time}
		if err := writeRow(f, attendanceSheet, i+4, row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// GroupRoster lists every member of every group in a session, one row per
// member, grouped in list order.
func GroupRoster(session models.ClassSession, groups []models.Group) (*excelize.File, error) {
	f, err := newBook(groupsSheet)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(groupsSheet, "A1", session.Label()); err != nil {
		return nil, err
	}
	if err := writeRow(f, groupsSheet, 3, []any{"Group", "Mode", "MSSV", "Full name"}); err != nil {
		return nil, err
	}
	row := 4
	for _, g := range groups {
		for _, m := range g.Members {
			if err := writeRow(f, groupsSheet, row, []any{g.Name, g.Mode.Label(), m.MSSV, m.FullName}); err != nil {
				return nil, err
			}
			row++
		}
	}
	return f, nil
}

func newBook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	// NewFile starts with "Sheet1"; rename it rather than adding a second sheet.
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 3, 3, style); err != nil {
		return nil, err
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName builds a download name like "attendance_2026-03-02_A101.xlsx".
func FileName(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(unsafeName.ReplaceAllString(p, "-"), "-"); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "_") + ".xlsx"
}

// Write sends f as an attachment named filename.
func Write(w http.ResponseWriter, f *excelize.File, filename string) error {
	defer f.Close()
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return f.Write(w)
}
