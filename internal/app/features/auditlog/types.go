// internal/app/features/auditlog/types.go
package auditlog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/app/system/paging"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	Time      string
	Category  string
	EventType string
	Actor     string
	Subject   string
	SessionID string
	IP        string
	Success   bool
	Reason    string
	Details   string
}

// filters are the list query parameters, echoed back into the form.
type filters struct {
	Category  string
	EventType string
	Actor     string
	SessionID string
	StartDate string
	EndDate   string
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	filters

	// Filter options
	Categories []categoryOption
	EventTypes []string

	paging.Page
	PrevURL string
	NextURL string
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

var (
	authEvents = []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventAccountRegistered,
		audit.EventAccountDeleted,
	}
	adminEvents = []string{
		audit.EventStudentCreated,
		audit.EventStudentUpdated,
		audit.EventStudentDeleted,
		audit.EventStudentsImported,
		audit.EventSessionCreated,
		audit.EventStudentsEnrolled,
		audit.EventGroupCreated,
		audit.EventGroupDeleted,
		audit.EventMembersAdded,
		audit.EventMemberRemoved,
		audit.EventNotificationSent,
		audit.EventAttendanceMarked,
		audit.EventAttendanceExported,
	}
)

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}

// readFilters trims the query parameters and drops an unknown category.
func readFilters(q url.Values) filters {
	f := filters{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Actor:     strings.ToLower(strings.TrimSpace(q.Get("actor"))),
		SessionID: strings.TrimSpace(q.Get("session")),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
	}
	if eventTypesForCategory(f.Category) == nil {
		f.Category = ""
	}
	return f
}

// query builds the store filter for one page. Unparseable dates are ignored.
func (f filters) query(start int) audit.QueryFilter {
	qf := audit.QueryFilter{
		Actor:     f.Actor,
		SessionID: f.SessionID,
		Category:  f.Category,
		EventType: f.EventType,
		Limit:     paging.PageSize,
		Offset:    paging.Offset(start),
	}
	if t, err := time.Parse("2006-01-02", f.StartDate); err == nil {
		qf.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", f.EndDate); err == nil {
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Second)
		qf.EndTime = &endOfDay
	}
	return qf
}

// pageURL is the list URL for f starting at row start.
func (f filters) pageURL(start int) string {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("category", f.Category)
	set("event_type", f.EventType)
	set("actor", f.Actor)
	set("session", f.SessionID)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	if start > 1 {
		v.Set("start", strconv.Itoa(start))
	}
	if len(v) == 0 {
		return "/audit"
	}
	return "/audit?" + v.Encode()
}

// detailText flattens an event's details into "k=v, k=v" in key order.
func detailText(d map[string]string) string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+d[k])
	}
	return strings.Join(parts, ", ")
}
