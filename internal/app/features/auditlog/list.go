// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/app/system/paging"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// buildList queries one page of events. The error is the store's.
func (h *Handler) buildList(ctx context.Context, w http.ResponseWriter, r *http.Request) (listData, error) {
	f := readFilters(r.URL.Query())
	start := paging.ParseStart(r)
	qf := f.query(start)

	events, err := h.Store.Query(ctx, qf)
	if err != nil {
		return listData{}, err
	}
	total, err := h.Store.CountByFilter(ctx, qf)
	if err != nil {
		return listData{}, err
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			Time:      e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			Category:  e.Category,
			EventType: e.EventType,
			Actor:     e.Actor,
			Subject:   e.Subject,
			SessionID: e.SessionID,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   detailText(e.Details),
		})
	}

	data := listData{
		BaseVM:     viewdata.NewBaseVM(w, r, h.SessionMgr, "Audit Log", "/home"),
		Items:      items,
		filters:    f,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(f.Category),
		Page:       paging.Window(start, len(items), total),
	}
	if data.HasPrev {
		data.PrevURL = f.pageURL(data.PrevStart)
	}
	if data.HasNext {
		data.NextURL = f.pageURL(data.NextStart)
	}
	return data, nil
}

// ServeList handles GET /audit - displays the audit log list with filtering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	data, err := h.buildList(ctx, w, r)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "A database error occurred.", "/home")
		return
	}
	templates.Render(w, r, "audit_list", data)
}
