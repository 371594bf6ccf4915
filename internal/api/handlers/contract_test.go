package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/classhub/internal/api/handlers"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

// setup serves the API over a fresh test database and returns a gateway
// client pointed at it.
func setup(t *testing.T) (*gateway.Client, *handlers.Handler) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := handlers.New(db, bcrypt.MinCost, nil)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := h.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	srv := httptest.NewServer(handlers.Routes(h))
	t.Cleanup(srv.Close)

	gw, err := gateway.New(gateway.Config{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	return gw, h
}

func student(mssv, name string) models.Student {
	return models.Student{MSSV: mssv, FullName: name, Faculty: "IT", Class: "CNTT1", BirthDate: "2003-04-05"}
}

// seedSession adds the students, creates one session and enrolls them all.
func seedSession(t *testing.T, ctx context.Context, gw *gateway.Client, students ...models.Student) models.ID {
	t.Helper()
	ids := make([]string, 0, len(students))
	for _, s := range students {
		if err := gw.AddStudent(ctx, s); err != nil {
			t.Fatalf("AddStudent %s: %v", s.MSSV, err)
		}
		ids = append(ids, s.MSSV)
	}
	cs, err := gw.CreateSession(ctx, models.ClassSession{Date: "2026-10-20", TimeSlot: "07:30-09:30", Room: "A101"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if cs.ID.IsZero() {
		t.Fatal("CreateSession returned no id")
	}
	if err := gw.EnrollStudents(ctx, cs.ID, ids); err != nil {
		t.Fatalf("EnrollStudents: %v", err)
	}
	return cs.ID
}

func TestContract_Students(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := gw.AddStudent(ctx, student("SV001", "An")); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	err := gw.AddStudent(ctx, student("SV001", "Other"))
	if !gateway.IsKind(err, gateway.KindServer) || gateway.MessageFor(err, "") != "A student with this MSSV already exists." {
		t.Errorf("duplicate add: %v", err)
	}

	upd := student("SV001", "An Nguyen")
	if err := gw.EditStudent(ctx, upd); err != nil {
		t.Fatalf("EditStudent: %v", err)
	}
	got, err := gw.GetStudent(ctx, "SV001")
	if err != nil || got.FullName != "An Nguyen" {
		t.Errorf("GetStudent: %+v %v", got, err)
	}

	all, err := gw.ListStudents(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("ListStudents: %+v %v", all, err)
	}

	if err := gw.DeleteStudent(ctx, "SV001"); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}
	_, err = gw.GetStudent(ctx, "SV001")
	if gateway.MessageFor(err, "") != "Student not found." {
		t.Errorf("after delete: %v", err)
	}
}

func TestContract_SessionsAndSchedule(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := seedSession(t, ctx, gw, student("SV001", "An"), student("SV002", "Binh"))

	_, err := gw.CreateSession(ctx, models.ClassSession{Date: "2026-10-20", TimeSlot: "07:30-09:30", Room: "A101"})
	if gateway.MessageFor(err, "") != "A session already exists for that date, time slot and room." {
		t.Errorf("duplicate session: %v", err)
	}

	err = gw.EnrollStudents(ctx, id, []string{"SV404"})
	if gateway.MessageFor(err, "") != "Unknown student: SV404." {
		t.Errorf("enroll unknown: %v", err)
	}

	sessions, err := gw.ListSessions(ctx)
	if err != nil || len(sessions) != 1 || sessions[0].ID != id {
		t.Fatalf("ListSessions: %+v %v", sessions, err)
	}

	enrolled, err := gw.StudentsBySession(ctx, id)
	if err != nil || len(enrolled) != 2 || enrolled[0].MSSV != "SV001" {
		t.Errorf("StudentsBySession: %+v %v", enrolled, err)
	}

	mine, err := gw.StudentSessions(ctx, "SV002")
	if err != nil || len(mine) != 1 || mine[0].Room != "A101" {
		t.Errorf("StudentSessions: %+v %v", mine, err)
	}
}

func TestContract_RandomGroupsSplitEveryone(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := seedSession(t, ctx, gw,
		student("SV001", "An"), student("SV002", "Binh"),
		student("SV003", "Cuong"), student("SV004", "Dung"))

	created, err := gw.CreateGroup(ctx, gateway.CreateGroupRequest{
		SessionID: id, Mode: models.ModeRandom, MinMembers: 2, MaxMembers: 2,
	})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("got %d groups, want 2", len(created))
	}
	seen := map[string]bool{}
	for _, g := range created {
		if g.MemberCount != 2 {
			t.Errorf("%s has %d members", g.Name, g.MemberCount)
		}
		for _, m := range g.MemberMSSVs() {
			if seen[m] {
				t.Errorf("%s placed twice", m)
			}
			seen[m] = true
		}
	}
	if len(seen) != 4 {
		t.Errorf("grouped %d students, want 4", len(seen))
	}

	_, err = gw.CreateGroup(ctx, gateway.CreateGroupRequest{
		SessionID: id, Mode: models.ModeRandom, MinMembers: 2, MaxMembers: 2,
	})
	if gateway.MessageFor(err, "") != "No students to group." {
		t.Errorf("second random run: %v", err)
	}

	listed, err := gw.GroupsBySession(ctx, id)
	if err != nil || len(listed) != 2 || listed[0].Name != "Group 1" || listed[1].Name != "Group 2" {
		t.Errorf("GroupsBySession: %+v %v", listed, err)
	}
}

func TestContract_TeacherGroupMembership(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := seedSession(t, ctx, gw, student("SV001", "An"), student("SV002", "Binh"), student("SV003", "Cuong"))

	created, err := gw.CreateGroup(ctx, gateway.CreateGroupRequest{
		SessionID: id, Mode: models.ModeTeacher, MinMembers: 1, MaxMembers: 3,
		Students: []string{"SV001", "SV002"},
	})
	if err != nil || len(created) != 1 {
		t.Fatalf("CreateGroup: %+v %v", created, err)
	}
	g := created[0]
	if g.Name != "Group 1" || g.Members[1].FullName != "Binh" {
		t.Errorf("created: %+v", g)
	}

	_, err = gw.CreateGroup(ctx, gateway.CreateGroupRequest{
		SessionID: id, Mode: models.ModeStudent, MinMembers: 1, MaxMembers: 3,
		Students: []string{"SV002"},
	})
	if gateway.MessageFor(err, "") != "Student already belongs to a group in this session: SV002." {
		t.Errorf("regroup: %v", err)
	}

	updated, err := gw.UpdateGroupMembers(ctx, g.ID, []string{"SV001", "SV003"})
	if err != nil || updated.MemberCount != 2 || updated.HasMember("SV002") {
		t.Errorf("UpdateGroupMembers: %+v %v", updated, err)
	}

	_, err = gw.UpdateGroupMembers(ctx, g.ID, nil)
	if gateway.MessageFor(err, "") != "A group needs at least one member." {
		t.Errorf("empty update: %v", err)
	}

	mine, err := gw.StudentGroup(ctx, "SV003")
	if err != nil || mine == nil || mine.ID != g.ID || mine.Session == nil || mine.Session.Room != "A101" {
		t.Errorf("StudentGroup: %+v %v", mine, err)
	}
	none, err := gw.StudentGroup(ctx, "SV002")
	if err != nil || none != nil {
		t.Errorf("ungrouped StudentGroup: %+v %v", none, err)
	}

	if err := gw.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if err := gw.DeleteGroup(ctx, g.ID); gateway.MessageFor(err, "") != "Group not found." {
		t.Errorf("second delete: %v", err)
	}
}

func TestContract_DeletingLastMembersDropsGroup(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := seedSession(t, ctx, gw, student("SV001", "An"), student("SV002", "Binh"))
	if _, err := gw.CreateGroup(ctx, gateway.CreateGroupRequest{
		SessionID: id, Mode: models.ModeTeacher, MinMembers: 1, MaxMembers: 2,
		Students: []string{"SV001", "SV002"},
	}); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if err := gw.DeleteStudent(ctx, "SV002"); err != nil {
		t.Fatalf("DeleteStudent SV002: %v", err)
	}
	groups, _ := gw.GroupsBySession(ctx, id)
	if len(groups) != 1 || groups[0].MemberCount != 1 {
		t.Fatalf("after first delete: %+v", groups)
	}
	enrolled, _ := gw.StudentsBySession(ctx, id)
	if len(enrolled) != 1 {
		t.Errorf("roster after delete: %+v", enrolled)
	}

	if err := gw.DeleteStudent(ctx, "SV001"); err != nil {
		t.Fatalf("DeleteStudent SV001: %v", err)
	}
	groups, _ = gw.GroupsBySession(ctx, id)
	if len(groups) != 0 {
		t.Errorf("group should be gone: %+v", groups)
	}
}

func TestContract_NotificationsAndReceipts(t *testing.T) {
	gw, h := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := seedSession(t, ctx, gw, student("SV001", "An"), student("SV002", "Binh"))

	err := gw.SendNotification(ctx, id, "Room changed", "admin@test.edu")
	if gateway.MessageFor(err, "") != "No grouped students in this session." {
		t.Errorf("send without groups: %v", err)
	}

	if _, err := gw.CreateGroup(ctx, gateway.CreateGroupRequest{
		SessionID: id, Mode: models.ModeTeacher, MinMembers: 1, MaxMembers: 2,
		Students: []string{"SV001"},
	}); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := gw.SendNotification(ctx, id, "Room changed", "admin@test.edu"); err != nil {
		t.Fatalf("SendNotification: %v", err)
	}

	list, err := gw.Notifications(ctx, id, "SV001")
	if err != nil || len(list) != 1 || list[0].IsRead || list[0].Message != "Room changed" {
		t.Fatalf("Notifications: %+v %v", list, err)
	}
	if other, _ := gw.Notifications(ctx, id, "SV002"); len(other) != 0 {
		t.Errorf("ungrouped student sees %d notifications", len(other))
	}

	for i := 0; i < 2; i++ {
		if err := gw.MarkNotificationRead(ctx, list[0].ID, "SV001"); err != nil {
			t.Fatalf("MarkNotificationRead: %v", err)
		}
	}
	if n, _ := h.Notifications.ReadCount(ctx, list[0].ID, "SV001"); n != 1 {
		t.Errorf("receipts: got %d, want 1", n)
	}
	if err := gw.MarkNotificationRead(ctx, list[0].ID, "SV002"); gateway.MessageFor(err, "") != "This notification was not sent to you." {
		t.Errorf("mark by non-recipient: %v", err)
	}

	list, _ = gw.Notifications(ctx, id, "SV001")
	if len(list) != 1 || !list[0].IsRead {
		t.Errorf("after read: %+v", list)
	}
}

func TestContract_Attendance(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := seedSession(t, ctx, gw, student("SV001", "An"), student("SV002", "Binh"))

	sheet, err := gw.SessionAttendance(ctx, id, "2026-10-20")
	if err != nil || len(sheet) != 2 || sheet[0].Status != models.StatusUnmarked {
		t.Fatalf("empty sheet: %+v %v", sheet, err)
	}

	if err := gw.MarkAttendance(ctx, id, "SV002", models.StatusPresent, "2026-10-20"); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	if err := gw.MarkAttendance(ctx, id, "SV002", models.StatusAbsent, "2026-10-20"); err != nil {
		t.Fatalf("MarkAttendance again: %v", err)
	}
	err = gw.MarkAttendance(ctx, id, "SV404", models.StatusPresent, "2026-10-20")
	if gateway.MessageFor(err, "") != "Student is not enrolled in this session." {
		t.Errorf("mark outsider: %v", err)
	}

	sheet, _ = gw.SessionAttendance(ctx, id, "2026-10-20")
	if sheet[1].MSSV != "SV002" || sheet[1].Status != models.StatusAbsent || sheet[1].FullName != "Binh" {
		t.Errorf("marked row: %+v", sheet[1])
	}

	mine, err := gw.StudentAttendance(ctx, "SV002")
	if err != nil || len(mine) != 1 || mine[0].Room != "A101" || mine[0].TimeSlot != "07:30-09:30" {
		t.Errorf("StudentAttendance: %+v %v", mine, err)
	}
}

func TestContract_RegisterAndLogin(t *testing.T) {
	gw, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := gateway.RegisterRequest{
		Email:    "SV001@Test.edu",
		Password: "secret1",
		Role:     models.RoleStudent,
		Student:  student("SV001", "An"),
	}
	if err := gw.Register(ctx, req); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := gw.Register(ctx, req); gateway.MessageFor(err, "") != "Email is already registered." {
		t.Errorf("duplicate register: %v", err)
	}

	if st, err := gw.GetStudent(ctx, "SV001"); err != nil || st.FullName != "An" {
		t.Errorf("register should create the student: %+v %v", st, err)
	}

	id, err := gw.Login(ctx, "sv001@test.edu", "secret1", models.RoleStudent)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id.MSSV() != "SV001" || id.DisplayName() != "An" {
		t.Errorf("identity: %+v", id)
	}

	tests := []struct {
		name, email, password, role string
	}{
		{"wrong password", "sv001@test.edu", "nope12", models.RoleStudent},
		{"wrong role", "sv001@test.edu", "secret1", models.RoleAdmin},
		{"unknown email", "nobody@test.edu", "secret1", models.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Login(ctx, tt.email, tt.password, tt.role)
			if gateway.MessageFor(err, "") != "Invalid email, password or role." {
				t.Errorf("got %v", err)
			}
		})
	}

	accounts, err := gw.ListAccounts(ctx)
	if err != nil || len(accounts) != 1 || accounts[0].Email != "sv001@test.edu" {
		t.Fatalf("ListAccounts: %+v %v", accounts, err)
	}
	if err := gw.DeleteAccount(ctx, accounts[0].ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := gw.DeleteAccount(ctx, accounts[0].ID); !gateway.IsKind(err, gateway.KindServer) {
		t.Errorf("second delete: %v", err)
	}
}
