package service

import (
	"io"
	"strings"
)

type SignupInput struct {
	FirstName string `schema:"first_name" validate:"max=150"`
	LastName  string `schema:"last_name" validate:"max=150"`
	Username  string `schema:"username" validate:"required,max=150,username"`
	Email     string `schema:"email" validate:"required,email,max=254"`
	Password1 string `schema:"password1" validate:"required,min=8,max=128"`
	Password2 string `schema:"password2" validate:"required,eqfield=Password1"`
}

func (in *SignupInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

type LoginInput struct {
	Username string `schema:"username" validate:"required"`
	Password string `schema:"password" validate:"required"`
	Next     string `schema:"next"`
}

// PostInput carries the group as the raw form value, an empty string means no group.
type PostInput struct {
	Text  string `schema:"text" validate:"required"`
	Group string `schema:"group" validate:"omitempty,numeric"`
}

func (in *PostInput) normalize() {
	in.Text = strings.TrimSpace(in.Text)
	in.Group = strings.TrimSpace(in.Group)
}

type CommentInput struct {
	Text string `schema:"text" validate:"required"`
}

type GroupInput struct {
	Title       string `schema:"title" validate:"required,max=200"`
	Slug        string `schema:"slug" validate:"required,max=50,slug"`
	Description string `schema:"description"`
}

// Upload is an image attached to a post form.
type Upload struct {
	FileName string
	Size     int64
	Reader   io.ReadSeeker
}
