package service

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

type GroupService interface {
	CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
}

func NewGroupService(groupRepo repository.GroupRepository) GroupService {
	return &groupService{groupRepo: groupRepo}
}

func (g *groupService) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if errs := validation.Validate(in); errs != nil {
		return nil, errs
	}

	group := &models.Group{Title: in.Title, Slug: in.Slug, Description: strings.TrimSpace(in.Description)}
	if err := g.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.Errors{{Field: "slug", Tag: "unique"}}
		}
		return nil, err
	}

	return group, nil
}

func (g *groupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return g.groupRepo.List(ctx)
}
