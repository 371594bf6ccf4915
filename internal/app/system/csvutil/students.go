// internal/app/system/csvutil/students.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// ErrTooManyRows is returned when the file holds more data rows than
// ParseOptions.MaxRows.
var ErrTooManyRows = errors.New("csv has too many rows")

// ParseOptions bounds a parse. MaxRows 0 means unlimited.
type ParseOptions struct {
	MaxRows int
}

// DefaultParseOptions returns options with no row limit.
func DefaultParseOptions() ParseOptions { return ParseOptions{} }

// RowError describes one rejected row. Line is 1-based in the file.
type RowError struct {
	Line   int
	Reason string
	Raw    []string
}

// ParseResult holds the accepted rows and every rejected one.
type ParseResult struct {
	Rows   []models.Student
	Errors []RowError
}

// HasErrors reports whether any row was rejected.
func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// FormatErrorsHTML renders up to maxShow row errors as an HTML fragment
// for the import page. It returns "" when there are none.
func (r *ParseResult) FormatErrorsHTML(maxShow int) template.HTML {
	if len(r.Errors) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Import rejected: %d row(s) are invalid.<br>", len(r.Errors))
	b.WriteString("Columns: mssv, hoten, khoa, lop, ngaysinh (YYYY-MM-DD).<br>")

	show := min(maxShow, len(r.Errors))
	for _, e := range r.Errors[:show] {
		b.WriteString("• Line ")
		fmt.Fprintf(&b, "%d", e.Line)
		if len(e.Raw) > 0 && strings.TrimSpace(e.Raw[0]) != "" {
			b.WriteString(" (")
			b.WriteString(template.HTMLEscapeString(strings.TrimSpace(e.Raw[0])))
			b.WriteString(")")
		}
		b.WriteString(": ")
		b.WriteString(template.HTMLEscapeString(e.Reason))
		b.WriteString("<br>")
	}
	if rest := len(r.Errors) - show; rest > 0 {
		fmt.Fprintf(&b, "…and %d more.<br>", rest)
	}
	return template.HTML(b.String())
}

// isHeader reports whether rec looks like the column header row.
func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	return first == "mssv" || first == "student id"
}

// ParseStudentCSV reads roster rows (mssv, hoten, khoa, lop, ngaysinh).
// A header row and a UTF-8 BOM are skipped, blank rows ignored. Each row is
// validated with the same rules as the add-student form; a repeated mssv
// is rejected. It never touches the backend.
func ParseStudentCSV(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	res := &ParseResult{}
	seen := make(map[string]int)
	dataRows := 0

	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Errors = append(res.Errors, RowError{Line: pe.Line, Reason: pe.Err.Error()})
				continue
			}
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		header := first
		if first && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		first = false
		if blank(rec) {
			continue
		}
		if header && isHeader(rec) {
			continue
		}

		dataRows++
		if opts.MaxRows > 0 && dataRows > opts.MaxRows {
			return nil, ErrTooManyRows
		}

		s := toStudent(rec)
		if prev, dup := seen[strings.ToLower(s.MSSV)]; dup && s.MSSV != "" {
			res.Errors = append(res.Errors, RowError{
				Line:   line,
				Reason: fmt.Sprintf("duplicate mssv (first seen on line %d)", prev),
				Raw:    rec,
			})
			continue
		}
		if v := inputval.Validate(s); v.HasErrors() {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: v.All(), Raw: rec})
			continue
		}
		seen[strings.ToLower(s.MSSV)] = line
		res.Rows = append(res.Rows, s)
	}
	return res, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func toStudent(rec []string) models.Student {
	col := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	s := models.Student{
		MSSV:      col(0),
		FullName:  col(1),
		Faculty:   col(2),
		Class:     col(3),
		BirthDate: col(4),
	}
	s.Normalize()
	return s
}
