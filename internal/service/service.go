package service

import (
	"yatube/internal/config"
	"yatube/internal/repository"
	"yatube/internal/storage"
)

type Service struct {
	Auth   AuthService
	User   UserService
	Group  GroupService
	Feed   FeedService
	Post   PostService
	Follow FollowService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, pages Invalidator) *Service {
	follow := NewFollowService(rep.User, rep.Follow)

	return &Service{
		Auth:   NewAuthService(rep.User, cfg),
		User:   NewUserService(rep.User, rep.Post, follow),
		Group:  NewGroupService(rep.Group),
		Feed:   NewFeedService(rep, cfg.PostsPerPage),
		Post:   NewPostService(rep, storage, pages),
		Follow: follow,
	}
}
