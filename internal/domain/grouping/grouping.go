// Package grouping holds the membership rules shared by every component that
// forms or edits groups: who is still ungrouped, which students may join a
// group and how new groups are named.
package grouping

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/domain/partition"
)

var (
	// ErrNoMembers is returned when a group would end up empty.
	ErrNoMembers = errors.New("a group needs at least one member")
	// ErrNotEnrolled is returned for a student outside the session.
	ErrNotEnrolled = errors.New("student is not enrolled in this session")
	// ErrAlreadyGrouped is returned for a student who already has a group
	// in the session.
	ErrAlreadyGrouped = errors.New("student already belongs to a group in this session")
	// ErrSize is returned when a hand-picked group violates its bounds.
	ErrSize = errors.New("group size is outside the allowed range")
	// ErrMode is returned for an unknown grouping mode.
	ErrMode = errors.New("unknown grouping mode")
)

// Ungrouped returns the enrolled students that appear in none of groups,
// preserving roster order.
func Ungrouped(enrolled []models.Student, groups []models.Group) []models.Student {
	taken := make(map[string]struct{})
	for _, g := range groups {
		for _, m := range g.Members {
			taken[m.MSSV] = struct{}{}
		}
	}
	out := make([]models.Student, 0, len(enrolled))
	for _, s := range enrolled {
		if _, ok := taken[s.MSSV]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Request describes a create-group submission.
type Request struct {
	SessionID models.ID
	Mode      models.GroupMode
	Min       int
	Max       int
	Students  []string
}

// Form builds the groups a create-group request produces. The returned
// groups carry names, members and bounds; the caller assigns ids and
// timestamps. enrolled and existing describe the session as it is now.
func Form(req Request, enrolled []models.Student, existing []models.Group, rnd *rand.Rand) ([]models.Group, error) {
	if req.Min < 1 || req.Max < req.Min {
		return nil, partition.ErrBounds
	}
	mode, ok := models.ParseGroupMode(string(req.Mode))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMode, req.Mode)
	}

	var memberSets [][]models.GroupMember
	if mode == models.ModeRandom {
		free := Ungrouped(enrolled, existing)
		split, err := partition.Split(free, req.Min, req.Max, rnd)
		if err != nil {
			return nil, err
		}
		for _, part := range split {
			memberSets = append(memberSets, toMembers(part))
		}
	} else {
		members, err := CheckMembers("", req.Students, enrolled, existing)
		if err != nil {
			return nil, err
		}
		if len(members) < req.Min || len(members) > req.Max {
			return nil, fmt.Errorf("%w: %d students, allowed %d-%d", ErrSize, len(members), req.Min, req.Max)
		}
		memberSets = append(memberSets, members)
	}

	names := NextNames(existing, len(memberSets))
	out := make([]models.Group, 0, len(memberSets))
	for i, ms := range memberSets {
		g := models.Group{
			Name:       names[i],
			SessionID:  req.SessionID,
			Mode:       mode,
			MinMembers: req.Min,
			MaxMembers: req.Max,
		}
		g.SetMembers(ms)
		out = append(out, g)
	}
	return out, nil
}

// CheckMembers validates a full membership list for groupID (empty for a
// group that does not exist yet) and resolves names from the roster.
// Duplicates are dropped, order is kept.
func CheckMembers(groupID models.ID, mssvs []string, enrolled []models.Student, groups []models.Group) ([]models.GroupMember, error) {
	roster := make(map[string]models.Student, len(enrolled))
	for _, s := range enrolled {
		roster[s.MSSV] = s
	}
	owner := make(map[string]models.ID)
	for _, g := range groups {
		for _, m := range g.Members {
			owner[m.MSSV] = g.ID
		}
	}

	seen := make(map[string]struct{}, len(mssvs))
	members := make([]models.GroupMember, 0, len(mssvs))
	for _, raw := range mssvs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		s, ok := roster[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotEnrolled, id)
		}
		if g, ok := owner[id]; ok && (groupID.IsZero() || g != groupID) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyGrouped, id)
		}
		members = append(members, models.GroupMember{MSSV: s.MSSV, FullName: s.FullName})
	}
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	return members, nil
}

// NextNames returns n unused "Group N" names for a session, continuing
// after the highest number in use.
func NextNames(existing []models.Group, n int) []string {
	highest := 0
	for _, g := range existing {
		if num, ok := strings.CutPrefix(g.Name, "Group "); ok {
			if v, err := strconv.Atoi(num); err == nil && v > highest {
				highest = v
			}
		}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = "Group " + strconv.Itoa(highest+i+1)
	}
	return out
}

func toMembers(students []models.Student) []models.GroupMember {
	out := make([]models.GroupMember, 0, len(students))
	for _, s := range students {
		out = append(out, models.GroupMember{MSSV: s.MSSV, FullName: s.FullName})
	}
	return out
}
