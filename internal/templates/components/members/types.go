package members

import (
	"fmt"
	"net/url"
	"strings"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

type Member struct {
	dbgen.ListClubMembersRow
}

// NewMember creates a Member from ListClubMembersRow
func NewMember(row dbgen.ListClubMembersRow) Member {
	return Member{ListClubMembersRow: row}
}

// NewMembers converts a slice of ListClubMembersRow to Members
func NewMembers(rows []dbgen.ListClubMembersRow) []Member {
	members := make([]Member, len(rows))
	for i, row := range rows {
		members[i] = NewMember(row)
	}
	return members
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (m Member) PhoneStr() string {
	return m.Phone.String
}

func (m Member) IsPending() bool {
	return m.Status == models.MembershipPending && m.RequestedRole.Valid
}

func (m Member) RequestedRoleStr() string {
	return m.RequestedRole.String
}

type ListData struct {
	ClubID   int64
	ClubSlug string
	Search   string
	Status   string
	Page     int64
	PageSize int64
	Total    int64
	Members  []Member
}

func (d ListData) HasPrev() bool {
	return d.Page > 1
}

func (d ListData) HasNext() bool {
	return d.Page*d.PageSize < d.Total
}

func (d ListData) pageURL(page int64) string {
	values := url.Values{}
	if d.Search != "" {
		values.Set("q", d.Search)
	}
	if d.Status != "" {
		values.Set("status", d.Status)
	}
	values.Set("page", fmt.Sprint(page))
	values.Set("page_size", fmt.Sprint(d.PageSize))
	return "/clubs/" + d.ClubSlug + "/admin/members?" + values.Encode()
}

var assignableRoles = []models.Role{models.RoleVisitor, models.RoleMember, models.RoleCoach, models.RoleClubAdmin}

func (m Member) actionURL(clubID int64) string {
	return fmt.Sprintf("/api/v1/clubs/%d/members/%d", clubID, m.UserID)
}

func roleLabel(role string) string {
	switch models.Role(role) {
	case models.RoleClubAdmin:
		return "Club admin"
	case models.RoleCoach:
		return "Coach"
	case models.RoleMember:
		return "Member"
	case models.RoleVisitor:
		return "Visitor"
	default:
		return role
	}
}
