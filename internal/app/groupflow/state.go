// internal/app/groupflow/state.go
package groupflow

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// EditMode is what the admin is doing on the group page right now.
type EditMode string

const (
	EditNone EditMode = ""
	// EditAdd shows student checkboxes for adding to EditingGroup.
	EditAdd EditMode = "add"
	// EditRemove shows per-member remove buttons on EditingGroup.
	EditRemove EditMode = "remove"
	// EditSelecting shows student checkboxes for a new group draft.
	EditSelecting EditMode = "selecting"
)

// ParseEditMode maps a query value to an EditMode; unknown values are none.
func ParseEditMode(s string) EditMode {
	switch m := EditMode(strings.ToLower(strings.TrimSpace(s))); m {
	case EditAdd, EditRemove, EditSelecting:
		return m
	}
	return EditNone
}

// Settings is the create-group form draft.
type Settings struct {
	Mode models.GroupMode
	Min  int
	Max  int
}

// DefaultSettings are used whenever the draft is reset.
func DefaultSettings() Settings {
	return Settings{Mode: models.ModeRandom, Min: 2, Max: 5}
}

// State is everything the group page shows. One State belongs to one
// request; nothing in it is shared.
type State struct {
	Sessions        []models.ClassSession
	SelectedSession models.ID

	// Students are the selected session's enrolled students that are in no
	// group. Always derived from the groups fetched in the same reload.
	Students []models.Student
	Groups   []models.Group

	// Selected is the draft selection of student ids, in click order.
	Selected []string

	EditingGroup models.ID
	EditMode     EditMode

	Settings     Settings
	DraftMessage string
	Composing    bool

	Loading bool
}

// NewState returns an empty state with default settings.
func NewState() *State {
	return &State{Settings: DefaultSettings()}
}

// Session returns the selected session, or nil when none is selected or it
// is not among Sessions.
func (s *State) Session() *models.ClassSession {
	for i := range s.Sessions {
		if s.Sessions[i].ID == s.SelectedSession {
			return &s.Sessions[i]
		}
	}
	return nil
}

// Editing returns the group being edited, or nil.
func (s *State) Editing() *models.Group {
	if s.EditingGroup.IsZero() {
		return nil
	}
	return models.FindGroup(s.Groups, s.EditingGroup)
}

// IsSelected reports whether mssv is in the draft selection.
func (s *State) IsSelected(mssv string) bool {
	for _, id := range s.Selected {
		if id == mssv {
			return true
		}
	}
	return false
}

// Select adds ids to the draft selection, skipping blanks and duplicates.
func (s *State) Select(ids ...string) {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || s.IsSelected(id) {
			continue
		}
		s.Selected = append(s.Selected, id)
	}
}

// Toggle flips one id in the draft selection.
func (s *State) Toggle(mssv string) {
	for i, id := range s.Selected {
		if id == mssv {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return
		}
	}
	s.Select(mssv)
}

// ClearSelection empties the draft selection.
func (s *State) ClearSelection() { s.Selected = nil }

func (s *State) resetEdit() {
	s.EditingGroup = ""
	s.EditMode = EditNone
}

func (s *State) resetDrafts() {
	s.resetEdit()
	s.ClearSelection()
	s.Settings = DefaultSettings()
	s.DraftMessage = ""
	s.Composing = false
}

// keepSelectable drops selected ids that are no longer ungrouped.
func (s *State) keepSelectable() {
	if len(s.Selected) == 0 {
		return
	}
	free := make(map[string]struct{}, len(s.Students))
	for _, st := range s.Students {
		free[st.MSSV] = struct{}{}
	}
	kept := s.Selected[:0]
	for _, id := range s.Selected {
		if _, ok := free[id]; ok {
			kept = append(kept, id)
		}
	}
	s.Selected = kept
	if len(s.Selected) == 0 {
		s.Selected = nil
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Query-string transport                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Query keys used to carry State between a POST and the GET it redirects to.
const (
	KeySession   = "session"
	KeyEdit      = "edit"
	KeyMode      = "mode"
	KeyCompose   = "compose"
	KeyStudents  = "students"
	KeyGroupMode = "group_mode"
	KeyMin       = "min_members"
	KeyMax       = "max_members"
	KeyMessage   = "message"
)

// FromValues rebuilds the navigational part of a State from query or form
// values. Fetched data (sessions, students, groups) is left empty.
// Unparseable numbers keep their defaults; an unknown grouping mode is kept
// verbatim so validation can reject it.
func FromValues(v url.Values) *State {
	st := NewState()
	st.SelectedSession = models.ID(strings.TrimSpace(v.Get(KeySession)))
	st.EditingGroup = models.ID(strings.TrimSpace(v.Get(KeyEdit)))
	st.EditMode = ParseEditMode(v.Get(KeyMode))
	if st.EditMode == EditAdd || st.EditMode == EditRemove {
		if st.EditingGroup.IsZero() {
			st.EditMode = EditNone
		}
	} else {
		st.EditingGroup = ""
	}
	st.Composing = v.Get(KeyCompose) == "1"
	st.DraftMessage = v.Get(KeyMessage)
	st.Select(v[KeyStudents]...)

	if raw := strings.TrimSpace(v.Get(KeyGroupMode)); raw != "" {
		if m, ok := models.ParseGroupMode(raw); ok {
			st.Settings.Mode = m
		} else {
			st.Settings.Mode = models.GroupMode(raw)
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(KeyMin))); err == nil {
		st.Settings.Min = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(KeyMax))); err == nil {
		st.Settings.Max = n
	}
	return st
}

// Values encodes the navigational part of s. Defaults are omitted, and the
// draft message is never put in a URL.
func (s *State) Values() url.Values {
	v := url.Values{}
	if !s.SelectedSession.IsZero() {
		v.Set(KeySession, s.SelectedSession.String())
	}
	if s.EditMode != EditNone {
		v.Set(KeyMode, string(s.EditMode))
		if !s.EditingGroup.IsZero() {
			v.Set(KeyEdit, s.EditingGroup.String())
		}
	}
	if s.Composing {
		v.Set(KeyCompose, "1")
	}
	for _, id := range s.Selected {
		v.Add(KeyStudents, id)
	}
	def := DefaultSettings()
	if s.Settings.Mode != def.Mode {
		v.Set(KeyGroupMode, string(s.Settings.Mode))
	}
	if s.Settings.Min != def.Min {
		v.Set(KeyMin, strconv.Itoa(s.Settings.Min))
	}
	if s.Settings.Max != def.Max {
		v.Set(KeyMax, strconv.Itoa(s.Settings.Max))
	}
	return v
}

// URL returns base with s encoded as its query string.
func (s *State) URL(base string) string {
	if q := s.Values().Encode(); q != "" {
		return base + "?" + q
	}
	return base
}
