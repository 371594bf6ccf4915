// internal/app/features/groups/page.go
package groups

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/classhub/internal/app/groupflow"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type sessionOption struct {
	ID       string
	Label    string
	Selected bool
}

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

type studentRow struct {
	MSSV     string
	FullName string
	Class    string
	Checked  bool
}

type memberRow struct {
	MSSV     string
	FullName string
}

type groupRow struct {
	ID          string
	Name        string
	Mode        string
	MinMembers  int
	MaxMembers  int
	MemberCount int
	Members     []memberRow
	Adding      bool
	Removing    bool
}

// hidden is one state field carried through a POST form.
type hidden struct {
	Name  string
	Value string
}

type pageData struct {
	viewdata.BaseVM
	Errors []string

	Sessions     []sessionOption
	SessionID    string
	SessionLabel string

	Students []studentRow
	Groups   []groupRow
	Editing  bool

	Modes          []modeOption
	Min            int
	Max            int
	NeedsSelection bool

	Composing    bool
	DraftMessage string

	// Keep carries the selected session and the create-form draft through
	// action forms so a redirect lands on the same view.
	Keep      []hidden
	ExportURL string
}

// failures collects failed outcomes for display on a rendered page.
type failures struct {
	msgs []string
}

func (f *failures) Report(o groupflow.Outcome) {
	if !o.OK {
		f.msgs = append(f.msgs, o.Message)
	}
}

// keepFields lists the hidden fields for st. The draft selection is not
// carried; edit and compose actions clear it anyway.
func keepFields(st *groupflow.State) []hidden {
	var out []hidden
	if !st.SelectedSession.IsZero() {
		out = append(out, hidden{groupflow.KeySession, st.SelectedSession.String()})
	}
	def := groupflow.DefaultSettings()
	if st.Settings.Mode != def.Mode {
		out = append(out, hidden{groupflow.KeyGroupMode, string(st.Settings.Mode)})
	}
	if st.Settings.Min != def.Min {
		out = append(out, hidden{groupflow.KeyMin, strconv.Itoa(st.Settings.Min)})
	}
	if st.Settings.Max != def.Max {
		out = append(out, hidden{groupflow.KeyMax, strconv.Itoa(st.Settings.Max)})
	}
	return out
}

// newPage maps a loaded State onto the template data.
func (h *Handler) newPage(w http.ResponseWriter, r *http.Request, st *groupflow.State, errs []string) pageData {
	data := pageData{
		BaseVM:         viewdata.NewBaseVM(w, r, h.SessionMgr, "Group management", basePath),
		Errors:         errs,
		Min:            st.Settings.Min,
		Max:            st.Settings.Max,
		NeedsSelection: st.Settings.Mode.RequiresSelection(),
		Composing:      st.Composing,
		DraftMessage:   st.DraftMessage,
		Keep:           keepFields(st),
		Editing:        st.Editing() != nil,
	}

	for _, s := range st.Sessions {
		data.Sessions = append(data.Sessions, sessionOption{
			ID:       s.ID.String(),
			Label:    s.Label(),
			Selected: s.ID == st.SelectedSession,
		})
	}
	if s := st.Session(); s != nil {
		data.SessionID = s.ID.String()
		data.SessionLabel = s.Label()
		data.ExportURL = basePath + "/export?" + url.Values{groupflow.KeySession: {s.ID.String()}}.Encode()
	}

	for _, m := range models.GroupModes {
		data.Modes = append(data.Modes, modeOption{Value: string(m), Label: m.Label(), Selected: m == st.Settings.Mode})
	}

	for _, s := range st.Students {
		data.Students = append(data.Students, studentRow{
			MSSV:     s.MSSV,
			FullName: s.FullName,
			Class:    s.Class,
			Checked:  st.IsSelected(s.MSSV),
		})
	}

	for _, g := range st.Groups {
		row := groupRow{
			ID:          g.ID.String(),
			Name:        g.Name,
			Mode:        g.Mode.Label(),
			MinMembers:  g.MinMembers,
			MaxMembers:  g.MaxMembers,
			MemberCount: g.MemberCount,
		}
		if g.ID == st.EditingGroup {
			row.Adding = st.EditMode == groupflow.EditAdd
			row.Removing = st.EditMode == groupflow.EditRemove
		}
		for _, m := range g.Members {
			row.Members = append(row.Members, memberRow{MSSV: m.MSSV, FullName: m.FullName})
		}
		data.Groups = append(data.Groups, row)
	}
	return data
}

// ServePage handles GET /group-management. The view (selected session,
// open edit, draft settings, compose dialog) comes from the query string.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	st := groupflow.FromValues(r.URL.Query())
	var errs failures
	h.load(ctx, st, &errs)
	h.render(w, r, st, errs.msgs)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, st *groupflow.State, errs []string) {
	templates.Render(w, r, "groups_page", h.newPage(w, r, st, errs))
}
