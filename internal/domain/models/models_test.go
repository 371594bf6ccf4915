package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dalemusser/classhub/internal/domain/models"
)

func TestParseGroupMode(t *testing.T) {
	tests := []struct {
		in     string
		want   models.GroupMode
		wantOK bool
	}{
		{"random", models.ModeRandom, true},
		{" Teacher ", models.ModeTeacher, true},
		{"STUDENT", models.ModeStudent, true},
		{"", "", false},
		{"lottery", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := models.ParseGroupMode(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseGroupMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGroupMode_RequiresSelection(t *testing.T) {
	if models.ModeRandom.RequiresSelection() {
		t.Error("random mode should not require a selection")
	}
	if !models.ModeTeacher.RequiresSelection() {
		t.Error("teacher mode should require a selection")
	}
	if !models.ModeStudent.RequiresSelection() {
		t.Error("student mode should require a selection")
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	var v struct {
		A models.ID `json:"a"`
		B models.ID `json:"b"`
		C models.ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"abc","b":42,"c":null}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.A != "abc" || v.B != "42" || v.C != "" {
		t.Errorf("got %q %q %q", v.A, v.B, v.C)
	}
}

func TestTimestamp_UnmarshalJSON_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-03-01T08:30:00Z"`, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
		{`"2024-03-01 08:30:00"`, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
		{`"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var ts models.Timestamp
		if err := json.Unmarshal([]byte(tt.in), &ts); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if !ts.Equal(tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, ts.Time, tt.want)
		}
	}

	var ts models.Timestamp
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Errorf("null should decode to zero, got %v, %v", ts.Time, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for unrecognised timestamp")
	}
}

func TestGroup_SetMembersKeepsCount(t *testing.T) {
	var g models.Group
	g.SetMembers([]models.GroupMember{{MSSV: "A"}, {MSSV: "B"}})
	if g.MemberCount != 2 {
		t.Errorf("member count: got %d, want 2", g.MemberCount)
	}
	g.SetMembers(g.Members[:1])
	if g.MemberCount != 1 || !g.HasMember("A") || g.HasMember("B") {
		t.Errorf("unexpected group after shrink: %+v", g)
	}
}

func TestFilterStudents(t *testing.T) {
	all := []models.Student{
		{MSSV: "SV001", FullName: "Nguyen Van An", Class: "CNTT1"},
		{MSSV: "SV002", FullName: "Tran Thi Binh", Class: "CNTT2"},
		{MSSV: "SV003", FullName: "Le Van Cuong", Class: "KT1"},
	}
	tests := []struct {
		q    string
		want int
	}{
		{"", 3},
		{"sv00", 3},
		{"binh", 1},
		{"cntt", 2},
		{"nobody", 0},
	}
	for _, tt := range tests {
		if got := len(models.FilterStudents(all, tt.q)); got != tt.want {
			t.Errorf("FilterStudents(%q): got %d, want %d", tt.q, got, tt.want)
		}
	}
}

func TestSortSessions(t *testing.T) {
	ss := []models.ClassSession{
		{ID: "3", Date: "2024-03-02", TimeSlot: "07:00"},
		{ID: "1", Date: "2024-03-01", TimeSlot: "13:00"},
		{ID: "2", Date: "2024-03-01", TimeSlot: "07:00"},
	}
	models.SortSessions(ss)
	if ss[0].ID != "2" || ss[1].ID != "1" || ss[2].ID != "3" {
		t.Errorf("unexpected order: %v %v %v", ss[0].ID, ss[1].ID, ss[2].ID)
	}
}
