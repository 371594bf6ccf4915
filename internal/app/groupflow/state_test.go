package groupflow_test

import (
	"net/url"
	"testing"

	"github.com/dalemusser/classhub/internal/app/groupflow"
	"github.com/dalemusser/classhub/internal/domain/models"
)

func TestState_ValuesRoundTrip(t *testing.T) {
	st := groupflow.NewState()
	st.SelectedSession = "sess-1"
	st.EditingGroup = "grp-2"
	st.EditMode = groupflow.EditAdd
	st.Composing = true
	st.Select("A", "B", "A")
	st.Settings = groupflow.Settings{Mode: models.ModeTeacher, Min: 1, Max: 3}

	got := groupflow.FromValues(st.Values())

	if got.SelectedSession != "sess-1" || got.EditingGroup != "grp-2" || got.EditMode != groupflow.EditAdd {
		t.Errorf("navigation lost: %+v", got)
	}
	if !got.Composing {
		t.Error("compose flag lost")
	}
	if len(got.Selected) != 2 || got.Selected[0] != "A" || got.Selected[1] != "B" {
		t.Errorf("selection: got %v, want [A B]", got.Selected)
	}
	if got.Settings != st.Settings {
		t.Errorf("settings: got %+v, want %+v", got.Settings, st.Settings)
	}
}

func TestState_URLOmitsDefaults(t *testing.T) {
	st := groupflow.NewState()
	if got := st.URL("/group-management"); got != "/group-management" {
		t.Errorf("empty state URL: got %q", got)
	}
	st.SelectedSession = "s1"
	if got := st.URL("/group-management"); got != "/group-management?session=s1" {
		t.Errorf("session URL: got %q", got)
	}
}

func TestFromValues_Sanitizes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantMode groupflow.EditMode
		wantEdit models.ID
	}{
		{"add without group", "mode=add", groupflow.EditNone, ""},
		{"group without mode", "edit=g1", groupflow.EditNone, ""},
		{"unknown mode", "mode=explode&edit=g1", groupflow.EditNone, ""},
		{"remove", "mode=REMOVE&edit=g1", groupflow.EditRemove, "g1"},
		{"selecting drops group", "mode=selecting&edit=g1", groupflow.EditSelecting, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := url.ParseQuery(tt.query)
			st := groupflow.FromValues(v)
			if st.EditMode != tt.wantMode || st.EditingGroup != tt.wantEdit {
				t.Errorf("got mode=%q edit=%q, want mode=%q edit=%q", st.EditMode, st.EditingGroup, tt.wantMode, tt.wantEdit)
			}
		})
	}
}

func TestFromValues_KeepsBadModeForValidation(t *testing.T) {
	v := url.Values{"group_mode": {"lottery"}, "min_members": {"x"}}
	st := groupflow.FromValues(v)
	if st.Settings.Mode != "lottery" {
		t.Errorf("mode: got %q, want raw value kept", st.Settings.Mode)
	}
	if st.Settings.Min != groupflow.DefaultSettings().Min {
		t.Errorf("unparseable min should keep default, got %d", st.Settings.Min)
	}
}

func TestToggle(t *testing.T) {
	st := groupflow.NewState()
	st.Toggle("A")
	st.Toggle("B")
	st.Toggle("A")
	if len(st.Selected) != 1 || st.Selected[0] != "B" {
		t.Errorf("selection: got %v, want [B]", st.Selected)
	}
	if !st.IsSelected("B") || st.IsSelected("A") {
		t.Error("IsSelected disagrees with Selected")
	}
}
