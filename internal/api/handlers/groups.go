package handlers

import (
	"errors"
	"net/http"

	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/normalize"
	"github.com/dalemusser/classhub/internal/domain/grouping"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/domain/partition"
	"go.mongodb.org/mongo-driver/mongo"
)

const msgGroupNotFound = "Group not found."

// ruleError reports whether err came from the grouping rules, which make
// a 400 reply rather than a 500.
func ruleError(err error) bool {
	for _, target := range []error{
		grouping.ErrNoMembers,
		grouping.ErrNotEnrolled,
		grouping.ErrAlreadyGrouped,
		grouping.ErrSize,
		grouping.ErrMode,
		partition.ErrEmpty,
		partition.ErrBounds,
		partition.ErrInfeasible,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GroupsBySession handles GET /get-groups?session_id=.
func (h *Handler) GroupsBySession(w http.ResponseWriter, r *http.Request) {
	id := models.ID(normalize.QueryParam(r.URL.Query().Get("session_id")))
	if id.IsZero() {
		h.fail(w, http.StatusBadRequest, "Class session is required.")
		return
	}
	groups, err := h.Groups.BySession(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "list groups", err, "", "Could not load the groups for this session.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"groups": groups})
}

type createGroupInput struct {
	SessionID  models.ID        `json:"session_id" validate:"required" label:"Class session"`
	Mode       models.GroupMode `json:"mode" validate:"required,groupmode" label:"Grouping mode"`
	MinMembers int              `json:"min_members" validate:"min=1" label:"Minimum members"`
	MaxMembers int              `json:"max_members" validate:"gtefield=MinMembers" label:"Maximum members"`
	Students   []string         `json:"students"`
}

// CreateGroup handles POST /create-group. Random mode partitions every
// ungrouped student of the session; the other modes build one group from
// the listed students.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var in createGroupInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	_, enrolled, err := h.roster(ctx, in.SessionID)
	if err != nil {
		h.serverError(w, r, "create group", err, msgSessionNotFound, "Could not create the group.")
		return
	}
	existing, err := h.Groups.BySession(ctx, in.SessionID)
	if err != nil {
		h.serverError(w, r, "create group", err, "", "Could not create the group.")
		return
	}

	formed, err := grouping.Form(grouping.Request{
		SessionID: in.SessionID,
		Mode:      in.Mode,
		Min:       in.MinMembers,
		Max:       in.MaxMembers,
		Students:  in.Students,
	}, enrolled, existing, nil)
	if err != nil {
		if ruleError(err) {
			h.fail(w, http.StatusBadRequest, sentence(err))
			return
		}
		h.serverError(w, r, "create group", err, "", "Could not create the group.")
		return
	}

	created, err := h.Groups.InsertMany(ctx, formed)
	if err != nil {
		h.serverError(w, r, "create group", err, "", "Could not create the group.")
		return
	}
	msg := "Group created."
	if len(created) > 1 {
		msg = "Groups created."
	}
	h.ok(w, http.StatusCreated, msg, payload{"data": payload{"groups": created}})
}

// UpdateGroupMembers handles PUT /group-management. The body carries the
// group's complete new member list.
func (h *Handler) UpdateGroupMembers(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID       models.ID `json:"id" validate:"required" label:"Group"`
		Students []string  `json:"students"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	g, err := h.Groups.Get(ctx, in.ID)
	if err != nil {
		h.serverError(w, r, "update group members", err, msgGroupNotFound, "Could not update the group.")
		return
	}
	_, enrolled, err := h.roster(ctx, g.SessionID)
	if err != nil {
		h.serverError(w, r, "update group members", err, msgSessionNotFound, "Could not update the group.")
		return
	}
	groups, err := h.Groups.BySession(ctx, g.SessionID)
	if err != nil {
		h.serverError(w, r, "update group members", err, "", "Could not update the group.")
		return
	}

	members, err := grouping.CheckMembers(g.ID, in.Students, enrolled, groups)
	if err != nil {
		h.fail(w, http.StatusBadRequest, sentence(err))
		return
	}
	updated, err := h.Groups.SetMembers(ctx, g.ID, members)
	if err != nil {
		h.serverError(w, r, "update group members", err, msgGroupNotFound, "Could not update the group.")
		return
	}
	h.ok(w, http.StatusOK, "Group updated.", payload{"data": updated})
}

// DeleteGroup handles GET and DELETE /delete-group?group_id=.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := models.ID(normalize.QueryParam(r.URL.Query().Get("group_id")))
	if id.IsZero() {
		h.fail(w, http.StatusBadRequest, "Group is required.")
		return
	}
	found, err := h.Groups.Delete(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "delete group", err, "", "Could not delete the group.")
		return
	}
	if !found {
		h.fail(w, http.StatusNotFound, msgGroupNotFound)
		return
	}
	h.ok(w, http.StatusOK, "Group deleted.", nil)
}

// StudentGroup handles GET /get-student-group?mssv=. A student without a
// group gets success with a null group.
func (h *Handler) StudentGroup(w http.ResponseWriter, r *http.Request) {
	mssv := normalize.MSSV(r.URL.Query().Get("mssv"))
	if mssv == "" {
		h.fail(w, http.StatusBadRequest, "Student ID is required.")
		return
	}
	ctx := r.Context()
	g, err := h.Groups.ForStudent(ctx, mssv)
	if err != nil {
		h.serverError(w, r, "student group", err, "", "Could not load your group.")
		return
	}
	if g == nil {
		h.ok(w, http.StatusOK, "", payload{"group": nil})
		return
	}
	cs, err := h.Sessions.Get(ctx, g.SessionID)
	switch {
	case err == nil:
		g.Session = &models.SessionInfo{Date: cs.Date, TimeSlot: cs.TimeSlot, Room: cs.Room}
	case !errors.Is(err, mongo.ErrNoDocuments):
		h.serverError(w, r, "student group", err, "", "Could not load your group.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"group": g})
}
