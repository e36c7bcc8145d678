package service

import (
	"context"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/repository"
)

type SelectorKind int

const (
	SelectAll SelectorKind = iota
	SelectGroup
	SelectAuthor
	SelectFollowed
)

// Selector picks which posts a feed shows.
type Selector struct {
	Kind       SelectorKind
	Slug       string
	Username   string
	FollowerID int64
}

func All() Selector {
	return Selector{Kind: SelectAll}
}

func ByGroup(slug string) Selector {
	return Selector{Kind: SelectGroup, Slug: slug}
}

func ByAuthor(username string) Selector {
	return Selector{Kind: SelectAuthor, Username: username}
}

// ByFollowed selects posts of every author the user follows.
func ByFollowed(userID int64) Selector {
	return Selector{Kind: SelectFollowed, FollowerID: userID}
}

type FeedPage struct {
	Posts  []models.Post
	Page   pagination.Page
	Group  *models.Group
	Author *models.User
}

type PostDetail struct {
	Post        *models.Post
	AuthorPosts int
	Comments    []models.Comment
}

type FeedService interface {
	Feed(ctx context.Context, sel Selector, rawPage string) (*FeedPage, error)
	PostDetail(ctx context.Context, postID int64) (*PostDetail, error)
}

type feedService struct {
	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	pageSize    int
}

func NewFeedService(rep *repository.Repository, pageSize int) FeedService {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &feedService{
		userRepo:    rep.User,
		groupRepo:   rep.Group,
		postRepo:    rep.Post,
		commentRepo: rep.Comment,
		pageSize:    pageSize,
	}
}

// Feed returns one page of the selected posts, newest first. Unknown groups
// and authors yield repository.ErrNotFound.
func (s *feedService) Feed(ctx context.Context, sel Selector, rawPage string) (*FeedPage, error) {
	result := &FeedPage{}
	var filter repository.PostFilter

	switch sel.Kind {
	case SelectAll:
	case SelectGroup:
		group, err := s.groupRepo.GetBySlug(ctx, sel.Slug)
		if err != nil {
			return nil, err
		}
		result.Group = group
		filter.GroupID = group.GroupID
	case SelectAuthor:
		author, err := s.userRepo.GetUserByUsername(ctx, sel.Username)
		if err != nil {
			return nil, err
		}
		result.Author = author
		filter.AuthorID = author.UserID
	case SelectFollowed:
		if sel.FollowerID == 0 {
			return nil, ErrUnauthorized
		}
		filter.FollowerID = sel.FollowerID
	default:
		return nil, fmt.Errorf("неизвестный тип ленты: %d", sel.Kind)
	}

	posts, page, err := s.postRepo.ListPage(ctx, filter, rawPage, s.pageSize)
	if err != nil {
		return nil, err
	}
	result.Posts = posts
	result.Page = page

	return result, nil
}

func (s *feedService) PostDetail(ctx context.Context, postID int64) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, AuthorPosts: count, Comments: comments}, nil
}
