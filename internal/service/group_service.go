package service

import (
	"context"
	"errors"
	"fmt"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateGroupRequest struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []string `json:"member_ids"`
}

// GroupService manages named user groups used for shared task assignment.
type GroupService interface {
	Create(ctx context.Context, req CreateGroupRequest) (*model.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*model.Group, error)
	SetMembers(ctx context.Context, id uuid.UUID, memberIDs []string) (*model.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type groupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) GroupService {
	return &groupService{db: db}
}

func (s *groupService) loadMembers(ctx context.Context, memberIDs []string) ([]model.User, error) {
	ids := make([]uuid.UUID, 0, len(memberIDs))
	for _, raw := range memberIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid member id %q", ErrValidation, raw)
		}
		ids = append(ids, id)
	}
	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	if len(users) != len(ids) {
		return nil, fmt.Errorf("%w: one or more members", ErrNotFound)
	}
	return users, nil
}

func (s *groupService) Create(ctx context.Context, req CreateGroupRequest) (*model.Group, error) {
	group := model.Group{Name: req.Name}
	if len(req.MemberIDs) > 0 {
		members, err := s.loadMembers(ctx, req.MemberIDs)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}
	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &group, nil
}

func (s *groupService) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var group model.Group
	if err := s.db.WithContext(ctx).Preload("Members").First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: group", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	return &group, nil
}

func (s *groupService) List(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := s.db.WithContext(ctx).Preload("Members").Order("name").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) Rename(ctx context.Context, id uuid.UUID, name string) (*model.Group, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = name
	if err := s.db.WithContext(ctx).Save(group).Error; err != nil {
		return nil, fmt.Errorf("failed to rename group: %w", err)
	}
	return group, nil
}

func (s *groupService) SetMembers(ctx context.Context, id uuid.UUID, memberIDs []string) (*model.Group, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.loadMembers(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(group).Association("Members").Replace(members); err != nil {
		return nil, fmt.Errorf("failed to update members: %w", err)
	}
	group.Members = members
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, id uuid.UUID) error {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Select("Members").Delete(group).Error; err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}
