package groupflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/groupflow"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"go.uber.org/zap"
)

func students(ids ...string) []models.Student {
	out := make([]models.Student, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Student{MSSV: id, FullName: "Student " + id, Faculty: "IT", Class: "C1", BirthDate: "2003-01-01"})
	}
	return out
}

// setup returns a backend with one session enrolling ids, an engine and a
// state that already has the session loaded.
func setup(t *testing.T, ids ...string) (*testutil.FakeBackend, *groupflow.Engine, *groupflow.State, models.ID) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	fb.AddStudents(students(ids...)...)
	sid := fb.AddSession("2024-09-10", "07:00-09:00", "B2-101", ids...)

	eng := groupflow.New(fb, zap.NewNop())
	st := groupflow.NewState()
	st.SelectedSession = sid
	if err := eng.Load(context.Background(), st, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return fb, eng, st, sid
}

func mssvs(ss []models.Student) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.MSSV)
	}
	return out
}

func assertCounts(t *testing.T, groups []models.Group) {
	t.Helper()
	for _, g := range groups {
		if g.MemberCount != len(g.Members) {
			t.Errorf("%s: member_count %d, len(members) %d", g.Name, g.MemberCount, len(g.Members))
		}
	}
}

// assertUngrouped checks Students == enrolled minus every group member.
func assertUngrouped(t *testing.T, st *groupflow.State, enrolled []string) {
	t.Helper()
	grouped := map[string]bool{}
	for _, g := range st.Groups {
		for _, m := range g.Members {
			grouped[m.MSSV] = true
		}
	}
	var want []string
	for _, id := range enrolled {
		if !grouped[id] {
			want = append(want, id)
		}
	}
	got := mssvs(st.Students)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ungrouped: got %v, want %v", got, want)
	}
}

func TestLoad_UngroupedIsEnrolledMinusMembers(t *testing.T) {
	enrolled := []string{"A", "B", "C", "D", "E"}
	tests := []struct {
		name   string
		groups [][]string
	}{
		{"no groups", nil},
		{"one group", [][]string{{"A", "C"}}},
		{"two groups", [][]string{{"A"}, {"B", "E"}}},
		{"all grouped", [][]string{{"A", "B"}, {"C", "D", "E"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend()
			fb.AddStudents(students(enrolled...)...)
			sid := fb.AddSession("2024-09-10", "07:00", "R1", enrolled...)
			for i, members := range tt.groups {
				fb.AddGroup(sid, fmt.Sprintf("Group %d", i+1), members...)
			}

			st := groupflow.NewState()
			st.SelectedSession = sid
			if err := groupflow.New(fb, nil).Load(context.Background(), st, nil); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(st.Groups) != len(tt.groups) {
				t.Fatalf("groups: got %d, want %d", len(st.Groups), len(tt.groups))
			}
			assertUngrouped(t, st, enrolled)
			if st.Loading {
				t.Error("Loading left set")
			}
		})
	}
}

func TestCreateGroup_RandomFourIntoPairs(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B", "C", "D")
	st.Settings = groupflow.Settings{Mode: models.ModeRandom, Min: 2, Max: 2}
	rec := &groupflow.Recorder{}

	if err := eng.CreateGroup(context.Background(), st, rec); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if len(st.Groups) != 2 {
		t.Fatalf("groups: got %d, want 2", len(st.Groups))
	}
	seen := map[string]int{}
	for _, g := range st.Groups {
		if len(g.Members) != 2 {
			t.Errorf("%s has %d members, want 2", g.Name, len(g.Members))
		}
		for _, m := range g.Members {
			seen[m.MSSV]++
		}
	}
	for _, id := range []string{"A", "B", "C", "D"} {
		if seen[id] != 1 {
			t.Errorf("student %s placed %d times", id, seen[id])
		}
	}
	assertCounts(t, st.Groups)
	if len(st.Students) != 0 {
		t.Errorf("ungrouped: got %v, want none", mssvs(st.Students))
	}
	if got := len(fb.GroupsOf(sid)); got != 2 {
		t.Errorf("backend groups: got %d, want 2", got)
	}
	if o := rec.Outcomes[0]; !o.OK || o.Op != groupflow.OpCreateGroup {
		t.Errorf("first outcome: got %+v", o)
	}
}

func TestCreateGroup_RandomIgnoresSelection(t *testing.T) {
	_, eng, st, _ := setup(t, "A", "B", "C", "D")
	st.Select("A")

	if err := eng.CreateGroup(context.Background(), st, nil); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if len(st.Selected) != 0 {
		t.Errorf("selection not cleared: %v", st.Selected)
	}
	total := 0
	for _, g := range st.Groups {
		total += g.MemberCount
	}
	if total != 4 {
		t.Errorf("random mode grouped %d students, want all 4", total)
	}
}

func TestCreateGroup_TeacherMode(t *testing.T) {
	_, eng, st, _ := setup(t, "A", "B", "C", "D")
	st.Settings = groupflow.Settings{Mode: models.ModeTeacher, Min: 1, Max: 3}
	st.Select("B", "D")

	if err := eng.CreateGroup(context.Background(), st, nil); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if len(st.Groups) != 1 {
		t.Fatalf("groups: got %d, want 1", len(st.Groups))
	}
	g := st.Groups[0]
	if g.MemberCount != 2 || !g.HasMember("B") || !g.HasMember("D") {
		t.Errorf("unexpected group: %+v", g)
	}
	assertUngrouped(t, st, []string{"A", "B", "C", "D"})
	if len(st.Selected) != 0 {
		t.Error("selection not cleared after success")
	}
}

func TestCreateGroup_ValidationNeverCallsBackend(t *testing.T) {
	tests := []struct {
		name     string
		session  bool
		settings groupflow.Settings
		selected []string
		want     error
	}{
		{"no session", false, groupflow.DefaultSettings(), nil, groupflow.ErrNoSession},
		{"unknown mode", true, groupflow.Settings{Mode: "lottery", Min: 1, Max: 2}, nil, groupflow.ErrBadMode},
		{"min above max", true, groupflow.Settings{Mode: models.ModeRandom, Min: 4, Max: 2}, nil, groupflow.ErrBadBounds},
		{"zero min", true, groupflow.Settings{Mode: models.ModeRandom, Min: 0, Max: 2}, nil, groupflow.ErrBadBounds},
		{"teacher without selection", true, groupflow.Settings{Mode: models.ModeTeacher, Min: 1, Max: 2}, nil, groupflow.ErrEmptySelection},
		{"student without selection", true, groupflow.Settings{Mode: models.ModeStudent, Min: 1, Max: 2}, nil, groupflow.ErrEmptySelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend()
			eng := groupflow.New(fb, nil)
			st := groupflow.NewState()
			if tt.session {
				st.SelectedSession = "sess-x"
			}
			st.Settings = tt.settings
			st.Select(tt.selected...)
			rec := &groupflow.Recorder{}

			err := eng.CreateGroup(context.Background(), st, rec)

			var ve *groupflow.ValidationError
			if !errors.As(err, &ve) || !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want ValidationError wrapping %v", err, tt.want)
			}
			if n := fb.TotalCalls(); n != 0 {
				t.Errorf("backend called %d times", n)
			}
			if o := rec.Last(); o.OK || o.Message != ve.Message() {
				t.Errorf("outcome: got %+v", o)
			}
			if st.Loading {
				t.Error("Loading set by rejected submission")
			}
		})
	}
}

func TestCreateGroup_ServerMessageShown(t *testing.T) {
	fb, eng, st, _ := setup(t, "A", "B")
	fb.FailOn("CreateGroup", testutil.ServerError("create group", "Session is locked."))
	st.Select("A")
	st.Settings.Mode = models.ModeTeacher
	st.Settings.Min = 1
	rec := &groupflow.Recorder{}

	if err := eng.CreateGroup(context.Background(), st, rec); err == nil {
		t.Fatal("expected error")
	}
	if got := rec.Last().Message; got != "Session is locked." {
		t.Errorf("message: got %q", got)
	}
	if len(st.Selected) != 1 {
		t.Error("selection must survive a failed create")
	}
}

func TestAddMembers_UnionAndCount(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B", "C", "D")
	gid := fb.AddGroup(sid, "Group 1", "A")
	if err := eng.Reload(context.Background(), st, nil); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if err := eng.BeginEdit(st, gid, groupflow.EditAdd, nil); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	st.Select("C", "D")
	rec := &groupflow.Recorder{}
	if err := eng.AddMembers(context.Background(), st, rec); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}

	g, _ := fb.Group(gid)
	if got := strings.Join(g.MemberMSSVs(), ","); got != "A,C,D" {
		t.Errorf("backend members: got %s, want A,C,D", got)
	}
	local := models.FindGroup(st.Groups, gid)
	if local == nil || local.MemberCount != 3 {
		t.Fatalf("local group: %+v", local)
	}
	assertCounts(t, st.Groups)
	assertUngrouped(t, st, []string{"A", "B", "C", "D"})
	if st.EditMode != groupflow.EditNone || !st.EditingGroup.IsZero() || len(st.Selected) != 0 {
		t.Errorf("edit state not cleared: mode=%q group=%q selected=%v", st.EditMode, st.EditingGroup, st.Selected)
	}
	if !rec.Outcomes[0].OK {
		t.Errorf("outcome: %+v", rec.Outcomes[0])
	}
}

func TestAddMembers_FromFreshStateLoadsGroup(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddStudents(students("A", "B")...)
	sid := fb.AddSession("2024-09-10", "07:00", "R1", "A", "B")
	gid := fb.AddGroup(sid, "Group 1", "A")

	// A POST handler only has the form values, not the fetched lists.
	st := groupflow.NewState()
	st.SelectedSession = sid
	st.EditingGroup, st.EditMode = gid, groupflow.EditAdd
	st.Select("B")

	if err := groupflow.New(fb, nil).AddMembers(context.Background(), st, nil); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	g, _ := fb.Group(gid)
	if g.MemberCount != 2 {
		t.Errorf("member count: got %d, want 2", g.MemberCount)
	}
}

func TestAddMembers_EmptySelectionRejected(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	gid := fb.AddGroup(sid, "Group 1", "A")
	_ = eng.BeginEdit(st, gid, groupflow.EditAdd, nil)
	before := fb.TotalCalls()

	err := eng.AddMembers(context.Background(), st, nil)
	if !errors.Is(err, groupflow.ErrEmptySelection) {
		t.Fatalf("got %v, want ErrEmptySelection", err)
	}
	if fb.TotalCalls() != before {
		t.Error("backend called for an empty selection")
	}
}

func TestRemoveMember_ThenLastDeletesGroup(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B", "C")
	gid := fb.AddGroup(sid, "Group 1", "A", "B")
	_ = eng.Reload(context.Background(), st, nil)

	if err := eng.RemoveMember(context.Background(), st, gid, "B", nil); err != nil {
		t.Fatalf("remove B: %v", err)
	}
	g := models.FindGroup(st.Groups, gid)
	if g == nil || g.MemberCount != 1 || !g.HasMember("A") {
		t.Fatalf("after removing B: %+v", g)
	}
	assertUngrouped(t, st, []string{"A", "B", "C"})

	rec := &groupflow.Recorder{}
	if err := eng.RemoveMember(context.Background(), st, gid, "A", rec); err != nil {
		t.Fatalf("remove A: %v", err)
	}
	if _, ok := fb.Group(gid); ok {
		t.Error("group should be deleted on the backend")
	}
	if models.FindGroup(st.Groups, gid) != nil {
		t.Error("group should be gone locally")
	}
	if fb.Calls("DeleteGroup") != 1 {
		t.Errorf("DeleteGroup calls: got %d, want 1", fb.Calls("DeleteGroup"))
	}
	if fb.Calls("UpdateGroupMembers") != 1 {
		t.Errorf("an empty membership must never be submitted; update calls = %d", fb.Calls("UpdateGroupMembers"))
	}
	assertUngrouped(t, st, []string{"A", "B", "C"})
	if o := rec.Outcomes[0]; !o.OK || o.Op != groupflow.OpRemoveMember {
		t.Errorf("outcome: %+v", o)
	}
}

func TestRemoveLastEqualsDelete(t *testing.T) {
	run := func(viaRemove bool) *groupflow.State {
		fb, eng, st, sid := setup(t, "A", "B")
		gid := fb.AddGroup(sid, "Group 1", "A")
		_ = eng.Reload(context.Background(), st, nil)
		if viaRemove {
			_ = eng.RemoveMember(context.Background(), st, gid, "A", nil)
		} else {
			_ = eng.DeleteGroup(context.Background(), st, gid, nil)
		}
		return st
	}
	a, b := run(true), run(false)
	if len(a.Groups) != len(b.Groups) || strings.Join(mssvs(a.Students), ",") != strings.Join(mssvs(b.Students), ",") {
		t.Errorf("remove-last state %v/%v differs from delete state %v/%v",
			len(a.Groups), mssvs(a.Students), len(b.Groups), mssvs(b.Students))
	}
}

func TestRemoveMember_NotMember(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	gid := fb.AddGroup(sid, "Group 1", "A")
	_ = eng.Reload(context.Background(), st, nil)

	if err := eng.RemoveMember(context.Background(), st, gid, "B", nil); !errors.Is(err, groupflow.ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
}

func TestDeleteGroup_ClearsEditState(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	gid := fb.AddGroup(sid, "Group 1", "A", "B")
	_ = eng.Reload(context.Background(), st, nil)
	_ = eng.BeginEdit(st, gid, groupflow.EditRemove, nil)

	if err := eng.DeleteGroup(context.Background(), st, gid, nil); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if st.EditMode != groupflow.EditNone || !st.EditingGroup.IsZero() {
		t.Errorf("edit state kept: %q %q", st.EditMode, st.EditingGroup)
	}
	assertUngrouped(t, st, []string{"A", "B"})
}

func TestReload_StudentFetchNetworkError(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	fb.FailOn("StudentsBySession", testutil.ConnectivityError("students for session"))
	rec := &groupflow.Recorder{}

	err := eng.SelectSession(context.Background(), st, sid, rec)
	if !gateway.IsKind(err, gateway.KindConnectivity) {
		t.Fatalf("got %v, want connectivity error", err)
	}
	if len(st.Students) != 0 {
		t.Errorf("students: got %v, want empty", mssvs(st.Students))
	}
	fails := rec.Failures()
	if len(fails) != 1 || fails[0].Message != gateway.MsgConnectivity {
		t.Errorf("failures: got %+v", fails)
	}
	if st.Loading {
		t.Error("Loading left set after failure")
	}

	// Reselecting retries.
	fb.FailOn("StudentsBySession", nil)
	if err := eng.SelectSession(context.Background(), st, sid, nil); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(st.Students) != 2 {
		t.Errorf("students after retry: got %d, want 2", len(st.Students))
	}
	if fb.Calls("StudentsBySession") != 3 {
		t.Errorf("StudentsBySession calls: got %d, want 3", fb.Calls("StudentsBySession"))
	}
}

func TestReload_GroupFetchFailureEmptiesUngrouped(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	fb.AddGroup(sid, "Group 1", "A")
	fb.FailOn("GroupsBySession", testutil.ServerError("list groups", "Groups unavailable."))
	rec := &groupflow.Recorder{}

	_ = eng.Reload(context.Background(), st, rec)

	if len(st.Students) != 0 || len(st.Groups) != 0 {
		t.Errorf("expected empty lists, got students=%d groups=%d", len(st.Students), len(st.Groups))
	}
	if got := rec.Last().Message; got != "Groups unavailable." {
		t.Errorf("message: got %q", got)
	}
}

func TestReload_BothFetchesFailReportsEach(t *testing.T) {
	fb, eng, st, _ := setup(t, "A", "B")
	fb.FailOn("StudentsBySession", testutil.ConnectivityError("students for session"))
	fb.FailOn("GroupsBySession", testutil.ServerError("list groups", "Groups unavailable."))
	rec := &groupflow.Recorder{}

	err := eng.Reload(context.Background(), st, rec)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !gateway.IsKind(err, gateway.KindConnectivity) {
		t.Errorf("student fetch error missing from %v", err)
	}
	if !strings.Contains(err.Error(), "Groups unavailable.") {
		t.Errorf("group fetch error missing from %v", err)
	}
	if got := len(rec.Failures()); got != 2 {
		t.Errorf("failures: got %d, want 2", got)
	}
	// Neither fetch was skipped because the other failed.
	if fb.Calls("StudentsBySession") != 2 || fb.Calls("GroupsBySession") != 2 {
		t.Errorf("calls: students=%d groups=%d, want 2 each",
			fb.Calls("StudentsBySession"), fb.Calls("GroupsBySession"))
	}
	if len(st.Students) != 0 || len(st.Groups) != 0 {
		t.Errorf("expected empty lists, got students=%d groups=%d", len(st.Students), len(st.Groups))
	}
}

func TestListSessions_Failure(t *testing.T) {
	fb, eng, st, _ := setup(t, "A")
	fb.FailOn("ListSessions", testutil.ConnectivityError("list sessions"))
	rec := &groupflow.Recorder{}

	_ = eng.ListSessions(context.Background(), st, rec)

	if len(st.Sessions) != 0 {
		t.Errorf("sessions: got %d, want 0", len(st.Sessions))
	}
	if rec.Last().OK || rec.Last().Op != groupflow.OpListSessions {
		t.Errorf("outcome: %+v", rec.Last())
	}
}

func TestCancelledContextDoesNotMutate(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	fb.AddGroup(sid, "Group 1", "A")
	before := mssvs(st.Students)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := eng.Reload(ctx, st, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if strings.Join(mssvs(st.Students), ",") != strings.Join(before, ",") {
		t.Errorf("students changed after cancel: %v -> %v", before, mssvs(st.Students))
	}
	if st.Loading {
		t.Error("Loading left set after cancel")
	}
}

func TestSendNotification(t *testing.T) {
	fb, eng, st, sid := setup(t, "A", "B")
	fb.AddGroup(sid, "Group 1", "A", "B")
	st.Composing = true
	st.DraftMessage = "  <b>Bring</b> laptops  "
	rec := &groupflow.Recorder{}

	if err := eng.SendNotification(context.Background(), st, "admin@uni.edu", rec); err != nil {
		t.Fatalf("SendNotification: %v", err)
	}
	sent := fb.SentNotifications()
	if len(sent) != 1 {
		t.Fatalf("sent: got %d, want 1", len(sent))
	}
	if sent[0].Message != "Bring laptops" || sent[0].CreatedBy != "admin@uni.edu" {
		t.Errorf("sent notification: %+v", sent[0])
	}
	if st.Composing || st.DraftMessage != "" {
		t.Error("draft not cleared after success")
	}
	if !rec.Last().OK {
		t.Errorf("outcome: %+v", rec.Last())
	}
}

func TestSendNotification_Rejections(t *testing.T) {
	fb := testutil.NewFakeBackend()
	eng := groupflow.New(fb, nil)

	st := groupflow.NewState()
	st.DraftMessage = "hello"
	if err := eng.SendNotification(context.Background(), st, "a@b.c", nil); !errors.Is(err, groupflow.ErrNoSession) {
		t.Errorf("no session: got %v", err)
	}

	st.SelectedSession = "sess-1"
	st.DraftMessage = "<p>  </p>"
	if err := eng.SendNotification(context.Background(), st, "a@b.c", nil); !errors.Is(err, groupflow.ErrEmptyMessage) {
		t.Errorf("blank message: got %v", err)
	}
	if fb.TotalCalls() != 0 {
		t.Error("backend called for rejected notification")
	}
}

func TestSendNotification_FailureKeepsDraft(t *testing.T) {
	fb, eng, st, _ := setup(t, "A")
	fb.FailOn("SendNotification", testutil.ConnectivityError("send notification"))
	st.Composing = true
	st.DraftMessage = "Quiz moved"
	rec := &groupflow.Recorder{}

	_ = eng.SendNotification(context.Background(), st, "admin@uni.edu", rec)

	if !st.Composing || st.DraftMessage != "Quiz moved" {
		t.Error("draft lost after failure")
	}
	if rec.Last().Message != gateway.MsgConnectivity {
		t.Errorf("message: got %q", rec.Last().Message)
	}
}

func TestRefresh_ResetsDrafts(t *testing.T) {
	_, eng, st, sid := setup(t, "A", "B")
	st.Select("A")
	st.Settings = groupflow.Settings{Mode: models.ModeStudent, Min: 3, Max: 4}
	st.DraftMessage = "x"
	st.Composing = true
	st.EditMode = groupflow.EditSelecting

	if err := eng.Refresh(context.Background(), st, nil); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st.SelectedSession != sid {
		t.Error("refresh dropped the selected session")
	}
	if len(st.Selected) != 0 || st.Composing || st.DraftMessage != "" || st.EditMode != groupflow.EditNone {
		t.Errorf("drafts not reset: %+v", st)
	}
	if st.Settings != groupflow.DefaultSettings() {
		t.Errorf("settings: got %+v", st.Settings)
	}
	if len(st.Students) != 2 {
		t.Errorf("students: got %d, want 2", len(st.Students))
	}
}

func TestBeginEdit_Validation(t *testing.T) {
	eng := groupflow.New(testutil.NewFakeBackend(), nil)
	st := groupflow.NewState()
	st.Select("A")

	if err := eng.BeginEdit(st, "", groupflow.EditAdd, nil); !errors.Is(err, groupflow.ErrNoGroup) {
		t.Errorf("no group: got %v", err)
	}
	if err := eng.BeginEdit(st, "g1", groupflow.EditSelecting, nil); !errors.Is(err, groupflow.ErrBadMode) {
		t.Errorf("bad mode: got %v", err)
	}
	if err := eng.BeginEdit(st, "g1", groupflow.EditRemove, nil); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if len(st.Selected) != 0 || st.EditMode != groupflow.EditRemove || st.EditingGroup != "g1" {
		t.Errorf("state after BeginEdit: %+v", st)
	}
}
