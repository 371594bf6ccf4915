// internal/app/groupflow/members.go
package groupflow

import (
	"context"
	"fmt"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// BeginEdit opens group id for editing. EditAdd shows the ungrouped students
// as a selection, EditRemove shows per-member remove controls. The draft
// selection is cleared either way. No backend call is made.
func (e *Engine) BeginEdit(st *State, id models.ID, mode EditMode, rep Reporter) error {
	if id.IsZero() {
		return e.reject(rep, OpBeginEdit, invalid("group", ErrNoGroup))
	}
	if mode != EditAdd && mode != EditRemove {
		return e.reject(rep, OpBeginEdit, invalid("mode", ErrBadMode))
	}
	st.EditingGroup = id
	st.EditMode = mode
	st.ClearSelection()
	return nil
}

// CancelEdit closes any open edit and drops the selection.
func (e *Engine) CancelEdit(st *State) {
	st.resetEdit()
	st.ClearSelection()
}

// AddMembers adds the draft selection to the group being edited. The
// backend receives the full new membership (existing members first). On
// success the local group is updated, the selection and edit mode are
// cleared and the session reloaded.
func (e *Engine) AddMembers(ctx context.Context, st *State, rep Reporter) error {
	switch {
	case st.SelectedSession.IsZero():
		return e.reject(rep, OpAddMembers, invalid("session", ErrNoSession))
	case st.EditingGroup.IsZero():
		return e.reject(rep, OpAddMembers, invalid("group", ErrNoGroup))
	case len(st.Selected) == 0:
		return e.reject(rep, OpAddMembers, invalid("students", ErrEmptySelection))
	}
	defer begin(st)()

	selected := append([]string(nil), st.Selected...)
	g, err := e.ensureGroup(ctx, st, OpAddMembers, st.EditingGroup, rep)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(st.Students))
	for _, s := range st.Students {
		names[s.MSSV] = s.FullName
	}
	members := append([]models.GroupMember(nil), g.Members...)
	added := 0
	for _, id := range selected {
		if g.HasMember(id) {
			continue
		}
		members = append(members, models.GroupMember{MSSV: id, FullName: names[id]})
		added++
	}
	if added == 0 {
		return e.reject(rep, OpAddMembers, invalid("students", ErrEmptySelection))
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.MSSV)
	}

	updated, err := e.gw.UpdateGroupMembers(ctx, g.ID, ids)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		e.fail(rep, OpAddMembers, st, err, msgUpdate)
		return err
	}

	applyMembers(g, updated, members)
	st.ClearSelection()
	st.resetEdit()
	succeed(rep, OpAddMembers, fmt.Sprintf("Added %d %s to %s.", added, plural(added, "student", "students"), g.Name))
	return e.reload(ctx, st, rep)
}

// RemoveMember takes mssv out of group id. Removing the last member deletes
// the group instead, so no group is ever left with zero members.
func (e *Engine) RemoveMember(ctx context.Context, st *State, id models.ID, mssv string, rep Reporter) error {
	switch {
	case st.SelectedSession.IsZero():
		return e.reject(rep, OpRemoveMember, invalid("session", ErrNoSession))
	case id.IsZero():
		return e.reject(rep, OpRemoveMember, invalid("group", ErrNoGroup))
	case mssv == "":
		return e.reject(rep, OpRemoveMember, invalid("student", ErrEmptySelection))
	}
	defer begin(st)()

	g, err := e.ensureGroup(ctx, st, OpRemoveMember, id, rep)
	if err != nil {
		return err
	}
	if !g.HasMember(mssv) {
		return e.reject(rep, OpRemoveMember, invalid("student", ErrNotMember))
	}

	remaining := make([]models.GroupMember, 0, len(g.Members))
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m.MSSV != mssv {
			remaining = append(remaining, m)
			ids = append(ids, m.MSSV)
		}
	}
	if len(remaining) == 0 {
		name := g.Name
		if err := e.deleteGroup(ctx, st, id); err != nil {
			e.fail(rep, OpRemoveMember, st, err, msgDelete)
			return err
		}
		succeed(rep, OpRemoveMember, fmt.Sprintf("Removed the last member; %s was deleted.", name))
		return e.reload(ctx, st, rep)
	}

	updated, err := e.gw.UpdateGroupMembers(ctx, id, ids)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		e.fail(rep, OpRemoveMember, st, err, msgUpdate)
		return err
	}

	applyMembers(g, updated, remaining)
	succeed(rep, OpRemoveMember, fmt.Sprintf("Removed %s from %s.", mssv, g.Name))
	return e.reload(ctx, st, rep)
}

// DeleteGroup deletes group id and closes its edit state if open.
func (e *Engine) DeleteGroup(ctx context.Context, st *State, id models.ID, rep Reporter) error {
	if id.IsZero() {
		return e.reject(rep, OpDeleteGroup, invalid("group", ErrNoGroup))
	}
	defer begin(st)()

	name := "The group"
	if g := models.FindGroup(st.Groups, id); g != nil && g.Name != "" {
		name = g.Name
	}
	if err := e.deleteGroup(ctx, st, id); err != nil {
		e.fail(rep, OpDeleteGroup, st, err, msgDelete)
		return err
	}
	succeed(rep, OpDeleteGroup, name+" deleted.")
	return e.reload(ctx, st, rep)
}

// deleteGroup removes the group on the backend and from st.
func (e *Engine) deleteGroup(ctx context.Context, st *State, id models.ID) error {
	err := e.gw.DeleteGroup(ctx, id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	for i := range st.Groups {
		if st.Groups[i].ID == id {
			st.Groups = append(st.Groups[:i], st.Groups[i+1:]...)
			break
		}
	}
	if st.EditingGroup == id {
		st.resetEdit()
	}
	return nil
}

// applyMembers writes the new membership into g, preferring the backend's
// copy when it sent one.
func applyMembers(g *models.Group, fromBackend models.Group, local []models.GroupMember) {
	if !fromBackend.ID.IsZero() && fromBackend.ID == g.ID {
		g.SetMembers(fromBackend.Members)
		return
	}
	g.SetMembers(local)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
