package services

import (
	"context"
	"errors"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Directory is the member listing returned to one viewer
type Directory struct {
	Members    []MemberView     `json:"members"`
	Filters    DirectoryFilters `json:"filters"`
	Pagination *pagination.Meta `json:"pagination"`
}

// MemberService serves privacy-projected member data
type MemberService struct {
	userRepo repositories.UserRepository
	cardRepo *repositories.CardRepository
}

// NewMemberService creates a new member service
func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{
		userRepo: repositories.NewUserRepository(db),
		cardRepo: repositories.NewCardRepository(db),
	}
}

// Directory lists one page of approved members other than the viewer.
// Facets are built from the full projected set before the query narrows it.
func (s *MemberService) Directory(ctx context.Context, viewer domain.Actor, q DirectoryQuery, params *pagination.Params) (*Directory, error) {
	users, err := s.userRepo.ListApprovedWithProfiles(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]MemberView, 0, len(users))
	for _, u := range users {
		if u.ID == viewer.UserID || u.Profile == nil {
			continue
		}
		views = append(views, ProjectMember(u, viewer))
	}

	matched := FilterMembers(views, q)
	total := int64(len(matched))
	start := params.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return &Directory{
		Members:    matched[start:end],
		Filters:    BuildDirectoryFilters(views),
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// GetMember returns one projected member. Only approved members are
// visible to others; self and admin may read any status.
func (s *MemberService) GetMember(ctx context.Context, viewer domain.Actor, id uint) (*MemberView, error) {
	user, err := s.userRepo.GetByIDWithProfile(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if user.Profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	if user.Status != domain.UserStatusApproved && user.ID != viewer.UserID && !viewer.IsAdmin() {
		return nil, domain.ErrUserNotFound
	}

	view := ProjectMember(user, viewer)
	return &view, nil
}

// PublicProfile resolves a membership card token to the public projection
// of its owner
func (s *MemberService) PublicProfile(ctx context.Context, token string) (*PublicMemberView, error) {
	card, err := s.cardRepo.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	if card.CardStatus != models.CardStatusActive {
		return nil, domain.ErrCardNotFound
	}

	user, err := s.userRepo.GetByIDWithProfile(ctx, card.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	if user.Status != domain.UserStatusApproved || user.Profile == nil {
		return nil, domain.ErrCardNotFound
	}

	view := ProjectPublicMember(user)
	return &view, nil
}
