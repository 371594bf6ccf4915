package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/domain/grouping"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// FakeBackend is an in-memory stand-in for the classroom backend. It has
// the same method set as *gateway.Client and applies the same membership
// rules as the reference backend, so workflow and handler tests can run
// without a network.
//
// Failures are injected per method name with FailOn; every call is counted
// so tests can assert that validation never reached the backend.
type FakeBackend struct {
	mu sync.Mutex

	sessions      []models.ClassSession
	students      []models.Student
	groups        []models.Group
	notifications []models.Notification
	reads         map[models.ID]map[string]bool
	attendance    []models.AttendanceRecord
	accounts      []models.Account
	passwords     map[string]string

	calls map[string]int
	fail  map[string]error
	seq   int
	rnd   *rand.Rand
}

// NewFakeBackend returns an empty backend with a fixed random seed.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		reads:     map[models.ID]map[string]bool{},
		passwords: map[string]string{},
		calls:     map[string]int{},
		fail:      map[string]error{},
		rnd:       rand.New(rand.NewSource(1)),
	}
}

// ConnectivityError is what the real client returns when the backend is
// unreachable.
func ConnectivityError(op string) error {
	return &gateway.Error{Kind: gateway.KindConnectivity, Op: op, Message: gateway.MsgConnectivity}
}

// ServerError is a success:false reply carrying msg.
func ServerError(op, msg string) error {
	return &gateway.Error{Kind: gateway.KindServer, Op: op, Status: 400, Message: msg}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Test controls                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// FailOn makes every later call to method return err. A nil err clears it.
func (f *FakeBackend) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, method)
		return
	}
	f.fail[method] = err
}

// Calls returns how many times method was invoked.
func (f *FakeBackend) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across every method.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// enter records a call and returns any injected failure. Callers hold mu.
func (f *FakeBackend) enter(method string) error {
	f.calls[method]++
	return f.fail[method]
}

func (f *FakeBackend) nextID(prefix string) models.ID {
	f.seq++
	return models.ID(prefix + strconv.Itoa(f.seq))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Seeding                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// AddStudents puts students on the roster.
func (f *FakeBackend) AddStudents(ss ...models.Student) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students = append(f.students, ss...)
}

// AddSession creates a session with the given enrolled students and
// returns its id.
func (f *FakeBackend) AddSession(date, slot, room string, enrolled ...string) models.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("sess-")
	f.sessions = append(f.sessions, models.ClassSession{
		ID: id, Date: date, TimeSlot: slot, Room: room,
		Enrolled:  append([]string(nil), enrolled...),
		CreatedAt: models.Now(),
	})
	return id
}

// AddGroup stores a group directly, bypassing the create rules.
func (f *FakeBackend) AddGroup(sessionID models.ID, name string, mssvs ...string) models.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := models.Group{ID: f.nextID("grp-"), Name: name, SessionID: sessionID, Mode: models.ModeTeacher, MinMembers: 1, MaxMembers: 10}
	members := make([]models.GroupMember, 0, len(mssvs))
	for _, id := range mssvs {
		members = append(members, models.GroupMember{MSSV: id, FullName: f.nameOf(id)})
	}
	g.SetMembers(members)
	f.groups = append(f.groups, g)
	return g.ID
}

// AddAccount stores a login. For students the roster profile must exist.
func (f *FakeBackend) AddAccount(email, password, role, mssv string) models.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("acc-")
	f.accounts = append(f.accounts, models.Account{ID: id, Email: email, Role: role, MSSV: mssv, CreatedAt: models.Now()})
	f.passwords[strings.ToLower(email)] = password
	return id
}

// Group returns a copy of the stored group, or false.
func (f *FakeBackend) Group(id models.ID) (models.Group, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g := models.FindGroup(f.groups, id); g != nil {
		return *g, true
	}
	return models.Group{}, false
}

// GroupsOf returns copies of the stored groups of a session.
func (f *FakeBackend) GroupsOf(sessionID models.ID) []models.Group {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionGroups(sessionID)
}

// ReadCount returns how many read records exist for a notification.
func (f *FakeBackend) ReadCount(id models.ID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reads[id])
}

// SentNotifications returns copies of every stored notification.
func (f *FakeBackend) SentNotifications() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.notifications...)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Internal lookups (callers hold mu)                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) nameOf(mssv string) string {
	for _, s := range f.students {
		if s.MSSV == mssv {
			return s.FullName
		}
	}
	return ""
}

func (f *FakeBackend) session(id models.ID) *models.ClassSession {
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			return &f.sessions[i]
		}
	}
	return nil
}

func (f *FakeBackend) enrolled(sessionID models.ID) []models.Student {
	sess := f.session(sessionID)
	if sess == nil {
		return nil
	}
	out := make([]models.Student, 0, len(sess.Enrolled))
	for _, id := range sess.Enrolled {
		for _, s := range f.students {
			if s.MSSV == id {
				out = append(out, s)
			}
		}
	}
	return out
}

func (f *FakeBackend) sessionGroups(sessionID models.ID) []models.Group {
	var out []models.Group
	for _, g := range f.groups {
		if g.SessionID == sessionID {
			cp := g
			cp.Members = append([]models.GroupMember(nil), g.Members...)
			out = append(out, cp)
		}
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sessions                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) ListSessions(ctx context.Context) ([]models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListSessions"); err != nil {
		return nil, err
	}
	out := append([]models.ClassSession(nil), f.sessions...)
	models.SortSessions(out)
	return out, nil
}

func (f *FakeBackend) CreateSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateSession"); err != nil {
		return models.ClassSession{}, err
	}
	for _, ex := range f.sessions {
		if ex.Date == s.Date && ex.TimeSlot == s.TimeSlot && ex.Room == s.Room {
			return models.ClassSession{}, ServerError("create session", "A session already exists for that date, time slot and room.")
		}
	}
	s.ID = f.nextID("sess-")
	s.CreatedAt = models.Now()
	s.Enrolled = nil
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *FakeBackend) EnrollStudents(ctx context.Context, sessionID models.ID, mssvs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EnrollStudents"); err != nil {
		return err
	}
	sess := f.session(sessionID)
	if sess == nil {
		return ServerError("enroll students", "Class session not found.")
	}
	for _, id := range mssvs {
		if f.nameOf(id) == "" {
			return ServerError("enroll students", "Student "+id+" does not exist.")
		}
		found := false
		for _, e := range sess.Enrolled {
			found = found || e == id
		}
		if !found {
			sess.Enrolled = append(sess.Enrolled, id)
		}
	}
	return nil
}

func (f *FakeBackend) StudentSessions(ctx context.Context, mssv string) ([]models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("StudentSessions"); err != nil {
		return nil, err
	}
	var out []models.ClassSession
	for _, s := range f.sessions {
		for _, e := range s.Enrolled {
			if e == mssv {
				out = append(out, s)
				break
			}
		}
	}
	models.SortSessions(out)
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Students                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) ListStudents(ctx context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListStudents"); err != nil {
		return nil, err
	}
	out := append([]models.Student{}, f.students...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MSSV < out[j].MSSV })
	return out, nil
}

func (f *FakeBackend) StudentsBySession(ctx context.Context, sessionID models.ID) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("StudentsBySession"); err != nil {
		return nil, err
	}
	if f.session(sessionID) == nil {
		return nil, ServerError("students for session", "Class session not found.")
	}
	return f.enrolled(sessionID), nil
}

func (f *FakeBackend) GetStudent(ctx context.Context, mssv string) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetStudent"); err != nil {
		return models.Student{}, err
	}
	for _, s := range f.students {
		if s.MSSV == mssv {
			return s, nil
		}
	}
	return models.Student{}, ServerError("get student", "Student not found.")
}

func (f *FakeBackend) AddStudent(ctx context.Context, s models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddStudent"); err != nil {
		return err
	}
	if f.nameOf(s.MSSV) != "" {
		return ServerError("add student", "A student with this MSSV already exists.")
	}
	f.students = append(f.students, s)
	return nil
}

func (f *FakeBackend) EditStudent(ctx context.Context, s models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EditStudent"); err != nil {
		return err
	}
	for i := range f.students {
		if f.students[i].MSSV == s.MSSV {
			f.students[i] = s
			return nil
		}
	}
	return ServerError("edit student", "Student not found.")
}

func (f *FakeBackend) DeleteStudent(ctx context.Context, mssv string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteStudent"); err != nil {
		return err
	}
	for i := range f.students {
		if f.students[i].MSSV == mssv {
			f.students = append(f.students[:i], f.students[i+1:]...)
			return nil
		}
	}
	return ServerError("delete student", "Student not found.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Groups                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) GroupsBySession(ctx context.Context, sessionID models.ID) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GroupsBySession"); err != nil {
		return nil, err
	}
	out := f.sessionGroups(sessionID)
	if out == nil {
		out = []models.Group{}
	}
	return out, nil
}

func (f *FakeBackend) CreateGroup(ctx context.Context, req gateway.CreateGroupRequest) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateGroup"); err != nil {
		return nil, err
	}
	if f.session(req.SessionID) == nil {
		return nil, ServerError("create group", "Class session not found.")
	}
	formed, err := grouping.Form(grouping.Request{
		SessionID: req.SessionID,
		Mode:      req.Mode,
		Min:       req.MinMembers,
		Max:       req.MaxMembers,
		Students:  req.Students,
	}, f.enrolled(req.SessionID), f.sessionGroups(req.SessionID), f.rnd)
	if err != nil {
		return nil, ServerError("create group", err.Error())
	}
	for i := range formed {
		formed[i].ID = f.nextID("grp-")
		formed[i].CreatedAt = models.Now()
		f.groups = append(f.groups, formed[i])
	}
	return formed, nil
}

func (f *FakeBackend) UpdateGroupMembers(ctx context.Context, groupID models.ID, mssvs []string) (models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateGroupMembers"); err != nil {
		return models.Group{}, err
	}
	g := models.FindGroup(f.groups, groupID)
	if g == nil {
		return models.Group{}, ServerError("update group members", "Group not found.")
	}
	members, err := grouping.CheckMembers(groupID, mssvs, f.enrolled(g.SessionID), f.sessionGroups(g.SessionID))
	if err != nil {
		return models.Group{}, ServerError("update group members", err.Error())
	}
	g.SetMembers(members)
	cp := *g
	cp.Members = append([]models.GroupMember(nil), g.Members...)
	return cp, nil
}

func (f *FakeBackend) DeleteGroup(ctx context.Context, groupID models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteGroup"); err != nil {
		return err
	}
	for i := range f.groups {
		if f.groups[i].ID == groupID {
			f.groups = append(f.groups[:i], f.groups[i+1:]...)
			return nil
		}
	}
	return ServerError("delete group", "Group not found.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Notifications                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) SendNotification(ctx context.Context, sessionID models.ID, message, createdBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SendNotification"); err != nil {
		return err
	}
	var recipients []string
	for _, g := range f.sessionGroups(sessionID) {
		recipients = append(recipients, g.MemberMSSVs()...)
	}
	if len(recipients) == 0 {
		return ServerError("send notification", "No grouped students in this session.")
	}
	f.notifications = append(f.notifications, models.Notification{
		ID:         f.nextID("ntf-"),
		SessionID:  sessionID,
		Message:    message,
		CreatedBy:  createdBy,
		Recipients: recipients,
		CreatedAt:  models.Now(),
	})
	return nil
}

func (f *FakeBackend) StudentGroup(ctx context.Context, mssv string) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("StudentGroup"); err != nil {
		return nil, err
	}
	for _, g := range f.groups {
		if g.HasMember(mssv) {
			cp := g
			cp.Members = append([]models.GroupMember(nil), g.Members...)
			if s := f.session(g.SessionID); s != nil {
				cp.Session = &models.SessionInfo{Date: s.Date, TimeSlot: s.TimeSlot, Room: s.Room}
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *FakeBackend) Notifications(ctx context.Context, sessionID models.ID, mssv string) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Notifications"); err != nil {
		return nil, err
	}
	out := []models.Notification{}
	for i := len(f.notifications) - 1; i >= 0; i-- {
		n := f.notifications[i]
		if n.SessionID != sessionID {
			continue
		}
		for _, r := range n.Recipients {
			if r == mssv {
				n.IsRead = f.reads[n.ID][mssv]
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (f *FakeBackend) MarkNotificationRead(ctx context.Context, notificationID models.ID, mssv string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("MarkNotificationRead"); err != nil {
		return err
	}
	if f.reads[notificationID] == nil {
		f.reads[notificationID] = map[string]bool{}
	}
	f.reads[notificationID][mssv] = true
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Attendance                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) SessionAttendance(ctx context.Context, sessionID models.ID, date string) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SessionAttendance"); err != nil {
		return nil, err
	}
	out := []models.AttendanceRecord{}
	for _, s := range f.enrolled(sessionID) {
		rec := models.AttendanceRecord{SessionID: sessionID, MSSV: s.MSSV, FullName: s.FullName, Date: date}
		for _, a := range f.attendance {
			if a.SessionID == sessionID && a.MSSV == s.MSSV && a.Date == date {
				rec.Status, rec.Time = a.Status, a.Time
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *FakeBackend) MarkAttendance(ctx context.Context, sessionID models.ID, mssv string, status models.AttendanceStatus, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("MarkAttendance"); err != nil {
		return err
	}
	now := time.Now().Format("15:04:05")
	for i := range f.attendance {
		a := &f.attendance[i]
		if a.SessionID == sessionID && a.MSSV == mssv && a.Date == date {
			a.Status, a.Time = status, now
			return nil
		}
	}
	f.attendance = append(f.attendance, models.AttendanceRecord{
		SessionID: sessionID, MSSV: mssv, FullName: f.nameOf(mssv), Date: date, Status: status, Time: now,
	})
	return nil
}

func (f *FakeBackend) StudentAttendance(ctx context.Context, mssv string) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("StudentAttendance"); err != nil {
		return nil, err
	}
	out := []models.AttendanceRecord{}
	for _, a := range f.attendance {
		if a.MSSV != mssv {
			continue
		}
		if s := f.session(a.SessionID); s != nil {
			a.TimeSlot, a.Room = s.TimeSlot, s.Room
		}
		out = append(out, a)
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Accounts                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (f *FakeBackend) Login(ctx context.Context, email, password, role string) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Login"); err != nil {
		return models.Identity{}, err
	}
	for _, a := range f.accounts {
		if !strings.EqualFold(a.Email, email) {
			continue
		}
		if f.passwords[strings.ToLower(email)] != password || a.Role != role {
			break
		}
		id := models.Identity{Email: a.Email, Role: a.Role}
		if a.Role == models.RoleStudent {
			for _, s := range f.students {
				if s.MSSV == a.MSSV {
					s := s
					id.Student = &s
				}
			}
		}
		return id, nil
	}
	return models.Identity{}, ServerError("login", "Invalid email, password or role.")
}

func (f *FakeBackend) Register(ctx context.Context, req gateway.RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Register"); err != nil {
		return err
	}
	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, req.Email) {
			return ServerError("register", "Email is already registered.")
		}
	}
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	acc := models.Account{ID: f.nextID("acc-"), Email: req.Email, Role: role, CreatedAt: models.Now()}
	if role == models.RoleStudent {
		acc.MSSV = req.MSSV
		if f.nameOf(req.MSSV) == "" {
			f.students = append(f.students, req.Student)
		}
	}
	f.accounts = append(f.accounts, acc)
	f.passwords[strings.ToLower(req.Email)] = req.Password
	return nil
}

func (f *FakeBackend) ListAccounts(ctx context.Context) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListAccounts"); err != nil {
		return nil, err
	}
	return append([]models.Account{}, f.accounts...), nil
}

func (f *FakeBackend) DeleteAccount(ctx context.Context, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteAccount"); err != nil {
		return err
	}
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			delete(f.passwords, strings.ToLower(f.accounts[i].Email))
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return nil
		}
	}
	return ServerError("delete account", fmt.Sprintf("Account %s not found.", id))
}
