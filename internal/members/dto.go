package members

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/types"
)

// MemberDTO is the API shape of a membership record. The password hash
// never leaves the service layer.
type MemberDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     *string          `json:"phone,omitempty"`
	Role      enums.MemberRole `json:"role"`
	CreatedAt time.Time        `json:"created_at"`
}

// MemberList wraps a page of members plus pagination metadata.
type MemberList struct {
	Members []MemberDTO    `json:"members"`
	Meta    types.PageMeta `json:"meta"`
}

// FromModel converts a member record into its API shape.
func FromModel(member *models.Member) MemberDTO {
	return MemberDTO{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Phone:     member.Phone,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}
}

func newMemberList(records []models.Member, meta types.PageMeta) *MemberList {
	list := &MemberList{
		Members: make([]MemberDTO, 0, len(records)),
		Meta:    meta,
	}
	for i := range records {
		list.Members = append(list.Members, FromModel(&records[i]))
	}
	return list
}
