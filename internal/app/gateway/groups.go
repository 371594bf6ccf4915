// internal/app/gateway/groups.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// CreateGroupRequest is the create-group payload. Students is sent only
// for modes that require a selection.
type CreateGroupRequest struct {
	SessionID  models.ID        `json:"session_id"`
	Mode       models.GroupMode `json:"mode"`
	MinMembers int              `json:"min_members"`
	MaxMembers int              `json:"max_members"`
	Students   []string         `json:"students,omitempty"`
}

// groupWire tolerates backends that send only member ids.
type groupWire struct {
	models.Group
	MemberMSSVs []string `json:"member_mssvs"`
}

func (w groupWire) normalize() models.Group {
	g := w.Group
	members := g.Members
	if len(members) == 0 && len(w.MemberMSSVs) > 0 {
		members = make([]models.GroupMember, 0, len(w.MemberMSSVs))
		for _, id := range w.MemberMSSVs {
			members = append(members, models.GroupMember{MSSV: id})
		}
	}
	if members == nil {
		members = []models.GroupMember{}
	}
	g.SetMembers(members)
	return g
}

func normalizeGroups(ws []groupWire) []models.Group {
	out := make([]models.Group, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.normalize())
	}
	return out
}

// GroupsBySession lists the groups of a session with their members.
func (c *Client) GroupsBySession(ctx context.Context, sessionID models.ID) ([]models.Group, error) {
	var ws []groupWire
	err := c.decodeInto(ctx, call{
		op:       "list groups",
		method:   http.MethodGet,
		path:     "/get-groups",
		query:    q("session_id", sessionID.String()),
		fallback: "Could not load the groups for this session.",
	}, &ws, "groups", "data.groups", "data")
	if err != nil {
		return nil, err
	}
	return normalizeGroups(ws), nil
}

// CreateGroup asks the backend to form groups. The returned slice holds the
// groups the backend reports as created; it may be empty for backends that
// only acknowledge.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) ([]models.Group, error) {
	if !req.Mode.RequiresSelection() {
		req.Students = nil
	}
	cl := call{
		op:       "create group",
		method:   http.MethodPost,
		path:     "/create-group",
		body:     req,
		fallback: "Could not create the group.",
	}
	env, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	var ws []groupWire
	if _, err := env.decodeOptional(&ws, "data.groups", "groups"); err != nil {
		return nil, c.malformed(cl, err)
	}
	return normalizeGroups(ws), nil
}

// UpdateGroupMembers replaces the group's membership with mssvs.
// The returned group is zero when the backend only acknowledges.
func (c *Client) UpdateGroupMembers(ctx context.Context, groupID models.ID, mssvs []string) (models.Group, error) {
	cl := call{
		op:     "update group members",
		method: http.MethodPut,
		path:   "/group-management",
		body: map[string]any{
			"id":       groupID,
			"students": mssvs,
		},
		fallback: "Could not update the group.",
	}
	env, err := c.do(ctx, cl)
	if err != nil {
		return models.Group{}, err
	}
	var w groupWire
	found, err := env.decodeOptional(&w, "data", "group")
	if err != nil {
		return models.Group{}, c.malformed(cl, err)
	}
	if !found {
		return models.Group{}, nil
	}
	return w.normalize(), nil
}

// DeleteGroup removes a group.
func (c *Client) DeleteGroup(ctx context.Context, groupID models.ID) error {
	_, err := c.do(ctx, call{
		op:       "delete group",
		method:   http.MethodGet,
		path:     "/delete-group",
		query:    q("group_id", groupID.String()),
		fallback: "Could not delete the group.",
	})
	return err
}
