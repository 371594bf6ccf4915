// internal/app/features/students/importcsv.go
package students

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/csvutil"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxErrorsShown caps the row errors listed on the import page.
const maxErrorsShown = 20

type importFailure struct {
	MSSV   string
	Reason string
}

type importData struct {
	viewdata.BaseVM
	Error    string
	Report   template.HTML
	Created  int
	Failures []importFailure
	Done     bool
}

func (h *Handler) importPage(w http.ResponseWriter, r *http.Request) importData {
	return importData{BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Import students", "/home")}
}

func (h *Handler) ServeImport(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "students_import", h.importPage(w, r))
}

// HandleImport reads a CSV of students and adds each one. Any invalid row
// rejects the whole file before the backend is called; rows the backend
// refuses are reported after the others are added.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	data := h.importPage(w, r)
	render := func() { templates.Render(w, r, "students_import", data) }

	file, _, err := r.FormFile("csv")
	if err != nil {
		data.Error = "CSV file is required."
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			data.Error = "CSV file is too large. Maximum size is 5 MB."
		}
		render()
		return
	}
	defer file.Close()

	parsed, err := csvutil.ParseStudentCSV(file, csvutil.ParseOptions{MaxRows: csvutil.MaxRows})
	if err != nil {
		if errors.Is(err, csvutil.ErrTooManyRows) {
			data.Error = fmt.Sprintf("CSV file has too many rows. Maximum is %d.", csvutil.MaxRows)
		} else {
			data.Error = "CSV file could not be read: " + err.Error()
		}
		render()
		return
	}
	if parsed.HasErrors() {
		data.Report = parsed.FormatErrorsHTML(maxErrorsShown)
		render()
		return
	}
	if len(parsed.Rows) == 0 {
		data.Error = "CSV file has no student rows."
		render()
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "student CSV import")
	defer cancel()

	created, failures := h.addAll(ctx, parsed.Rows)
	h.AuditLog.StudentsImported(ctx, r, authz.ActorEmail(r), created, len(failures))

	if len(failures) == 0 {
		h.SessionMgr.AddToast(w, r, auth.ToastSuccess, fmt.Sprintf("Imported %d student(s).", created))
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	data.Done = true
	data.Created = created
	data.Failures = failures
	render()
}

// addAll adds rows with at most ImportWorkers calls in flight. Failures are
// returned in file order.
func (h *Handler) addAll(ctx context.Context, rows []models.Student) (int, []importFailure) {
	var (
		mu      sync.Mutex
		created int
		reasons = make([]string, len(rows))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, h.ImportWorkers))
	for i, s := range rows {
		g.Go(func() error {
			if err := h.GW.AddStudent(gctx, s); err != nil {
				h.Log.Debug("import row rejected", zap.String("mssv", s.MSSV), zap.Error(err))
				reasons[i] = gateway.MessageFor(err, "Could not add the student.")
				return nil
			}
			mu.Lock()
			created++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var failures []importFailure
	for i, reason := range reasons {
		if reason != "" {
			failures = append(failures, importFailure{MSSV: rows[i].MSSV, Reason: reason})
		}
	}
	return created, failures
}
