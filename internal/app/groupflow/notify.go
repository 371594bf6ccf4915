// internal/app/groupflow/notify.go
package groupflow

import (
	"context"

	"github.com/dalemusser/classhub/internal/app/system/htmlsanitize"
)

// OpenCompose shows the notification dialog.
func (e *Engine) OpenCompose(st *State) {
	st.Composing = true
}

// CloseCompose hides the dialog and discards the draft.
func (e *Engine) CloseCompose(st *State) {
	st.Composing = false
	st.DraftMessage = ""
}

// SendNotification broadcasts the draft message to the selected session.
// Markup is stripped first; createdBy is the acting admin's email. On
// success the draft is cleared and the dialog closed; on failure both are
// kept so the admin can retry.
func (e *Engine) SendNotification(ctx context.Context, st *State, createdBy string, rep Reporter) error {
	if st.SelectedSession.IsZero() {
		return e.reject(rep, OpSendNotification, invalid("session", ErrNoSession))
	}
	msg := htmlsanitize.PlainText(st.DraftMessage)
	if msg == "" {
		return e.reject(rep, OpSendNotification, invalid("message", ErrEmptyMessage))
	}
	defer begin(st)()

	err := e.gw.SendNotification(ctx, st.SelectedSession, msg, createdBy)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		e.fail(rep, OpSendNotification, st, err, msgNotify)
		return err
	}

	st.DraftMessage = ""
	st.Composing = false
	succeed(rep, OpSendNotification, "Notification sent.")
	return nil
}
