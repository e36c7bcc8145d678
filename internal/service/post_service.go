package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"yatube/internal/logger"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/storage"
	"yatube/internal/validation"
)

// Invalidator drops cached renders after content changes.
type Invalidator interface {
	Clear()
}

type PostService interface {
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
	Groups(ctx context.Context) ([]models.Group, error)
	CreatePost(ctx context.Context, actor *models.User, in PostInput, upload *Upload) (*models.Post, error)
	UpdatePost(ctx context.Context, actor *models.User, postID int64, in PostInput, upload *Upload) (*models.Post, error)
	DeletePost(ctx context.Context, actor *models.User, postID int64) (*models.Post, error)
	AddComment(ctx context.Context, actor *models.User, postID int64, in CommentInput) (*models.Comment, error)
}

type postService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	storage     storage.Storage
	pages       Invalidator
}

func NewPostService(rep *repository.Repository, storage storage.Storage, pages Invalidator) PostService {
	return &postService{
		postRepo:    rep.Post,
		groupRepo:   rep.Group,
		commentRepo: rep.Comment,
		storage:     storage,
		pages:       pages,
	}
}

func (p *postService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	return p.postRepo.GetByID(ctx, postID)
}

func (p *postService) Groups(ctx context.Context) ([]models.Group, error) {
	return p.groupRepo.List(ctx)
}

func (p *postService) CreatePost(ctx context.Context, actor *models.User, in PostInput, upload *Upload) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	groupID, err := p.resolveGroup(ctx, &in)
	if err != nil {
		return nil, err
	}

	image, err := p.storeImage(ctx, upload)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: actor.UserID,
		GroupID:  groupID,
		Image:    image,
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		p.dropImage(ctx, image)
		return nil, err
	}
	post.AuthorUsername = actor.Username

	p.pages.Clear()
	return post, nil
}

// UpdatePost edits a post of the actor. The stored post is returned together
// with ErrForbidden or validation errors so that callers can redirect or
// re-render the form.
func (p *postService) UpdatePost(ctx context.Context, actor *models.User, postID int64, in PostInput, upload *Upload) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := AssertOwner(actor, post).Err(); err != nil {
		return post, err
	}

	groupID, err := p.resolveGroup(ctx, &in)
	if err != nil {
		return post, err
	}

	image, err := p.storeImage(ctx, upload)
	if err != nil {
		return post, err
	}

	previous := post.Image
	post.Text = in.Text
	post.GroupID = groupID
	if image != nil {
		post.Image = image
	}

	if err := p.postRepo.Update(ctx, post); err != nil {
		p.dropImage(ctx, image)
		return post, err
	}
	if image != nil {
		p.dropImage(ctx, previous)
	}

	p.pages.Clear()
	return post, nil
}

// DeletePost removes the post with its comments and image.
func (p *postService) DeletePost(ctx context.Context, actor *models.User, postID int64) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := AssertOwner(actor, post).Err(); err != nil {
		return post, err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return post, err
	}
	p.dropImage(ctx, post.Image)

	p.pages.Clear()
	return post, nil
}

func (p *postService) AddComment(ctx context.Context, actor *models.User, postID int64, in CommentInput) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	if _, err := p.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	in.Text = strings.TrimSpace(in.Text)
	if errs := validation.Validate(in); errs != nil {
		return nil, errs
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: actor.UserID,
		PostID:   postID,
	}
	if err := p.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorUsername = actor.Username

	return comment, nil
}

// resolveGroup validates the input and maps the group field onto an existing group.
func (p *postService) resolveGroup(ctx context.Context, in *PostInput) (*int64, error) {
	in.normalize()
	if errs := validation.Validate(in); errs != nil {
		return nil, errs
	}
	if in.Group == "" {
		return nil, nil
	}

	invalid := validation.Errors{{Field: "group", Tag: "invalid_choice"}}

	id, err := strconv.ParseInt(in.Group, 10, 64)
	if err != nil {
		return nil, invalid
	}

	group, err := p.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}

	return &group.GroupID, nil
}

func (p *postService) storeImage(ctx context.Context, upload *Upload) (*string, error) {
	if upload == nil || upload.Reader == nil {
		return nil, nil
	}

	mtype, err := mimetype.DetectReader(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении изображения: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, validation.Errors{{Field: "image", Tag: "image"}}
	}

	if _, err := upload.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ошибка при чтении изображения: %w", err)
	}

	ref, err := p.storage.UploadImage(ctx, upload.FileName, upload.Reader, upload.Size, mtype.String())
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки изображения: %w", err)
	}

	return &ref, nil
}

func (p *postService) dropImage(ctx context.Context, ref *string) {
	if ref == nil || *ref == "" {
		return
	}
	if err := p.storage.DeleteImage(ctx, *ref); err != nil {
		logger.Warn.Printf("Не удалось удалить изображение %s: %v", *ref, err)
	}
}
