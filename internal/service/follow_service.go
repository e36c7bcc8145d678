package service

import (
	"context"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/repository"
)

type FollowService interface {
	Follow(ctx context.Context, follower *models.User, authorUsername string) (*models.User, error)
	Unfollow(ctx context.Context, follower *models.User, authorUsername string) (*models.User, error)
	IsFollowing(ctx context.Context, viewer *models.User, author *models.User) (bool, error)
}

type followService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) FollowService {
	return &followService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// Follow subscribes follower to the author. Following oneself or an author
// already followed changes nothing.
func (s *followService) Follow(ctx context.Context, follower *models.User, authorUsername string) (*models.User, error) {
	if follower == nil {
		return nil, ErrUnauthorized
	}

	author, err := s.userRepo.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	if author.UserID == follower.UserID {
		return author, nil
	}

	if _, err := s.followRepo.Create(ctx, follower.UserID, author.UserID); err != nil {
		return nil, fmt.Errorf("ошибка при подписке на %s: %w", author.Username, err)
	}

	return author, nil
}

// Unfollow returns repository.ErrNotFound when there was no subscription.
func (s *followService) Unfollow(ctx context.Context, follower *models.User, authorUsername string) (*models.User, error) {
	if follower == nil {
		return nil, ErrUnauthorized
	}

	author, err := s.userRepo.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	if err := s.followRepo.Delete(ctx, follower.UserID, author.UserID); err != nil {
		return nil, err
	}

	return author, nil
}

func (s *followService) IsFollowing(ctx context.Context, viewer *models.User, author *models.User) (bool, error) {
	if viewer == nil || author == nil || viewer.UserID == author.UserID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, viewer.UserID, author.UserID)
}
