package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/repository"
)

type Profile struct {
	Author    *models.User
	PostCount int
	Following bool
}

type UserService interface {
	Profile(ctx context.Context, username string, viewer *models.User) (*Profile, error)
}

type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	follows  FollowService
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, follows FollowService) UserService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		follows:  follows,
	}
}

func (s *userService) Profile(ctx context.Context, username string, viewer *models.User) (*Profile, error) {
	// get user by username
	author, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	count, err := s.postRepo.CountByAuthor(ctx, author.UserID)
	if err != nil {
		return nil, err
	}

	following, err := s.follows.IsFollowing(ctx, viewer, author)
	if err != nil {
		return nil, err
	}

	return &Profile{Author: author, PostCount: count, Following: following}, nil
}
