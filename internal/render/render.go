// Package render turns page data into HTML using the embedded templates.
//
// Every page template is parsed together with the base layout and the shared
// includes, so a page only defines the "title" and "content" blocks.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"yatube/internal/models"
	"yatube/internal/pagination"
)

//go:embed templates
var files embed.FS

const (
	PageIndex      = "posts/index.html"
	PageGroup      = "posts/group_list.html"
	PageProfile    = "posts/profile.html"
	PagePostDetail = "posts/post_detail.html"
	PageCreatePost = "posts/create_post.html"
	PageFollow     = "posts/follow.html"
	PageSignup     = "users/signup.html"
	PageLogin      = "users/login.html"
	PageLoggedOut  = "users/logged_out.html"
	PageNotFound   = "core/404.html"
	PageForbidden  = "core/403.html"
	PageServer     = "core/500.html"
)

// View is the data every page template receives.
type View struct {
	CurrentUser *models.User

	Posts []models.Post
	Page  *pagination.Page

	Group     *models.Group
	Author    *models.User
	PostCount int
	Following bool

	Post     *models.Post
	Comments []models.Comment

	Groups []models.Group
	IsEdit bool
	Form   map[string]string
	Errors map[string][]string
	Next   string

	Path string
}

// Field returns a submitted form value.
func (v View) Field(name string) string {
	return v.Form[name]
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"naturaltime":   humanize.Time,
	"date":          formatDate,
	"truncatewords": truncateWords,
	"linebreaks":    lineBreaks,
	"media":         mediaURL,
	"deref":         deref,
	"pageURL":       pageURL,
}

func New() (*Renderer, error) {
	shared := []string{"templates/base.html", "templates/includes/*.html"}
	pages := []string{
		PageIndex, PageGroup, PageProfile, PagePostDetail, PageCreatePost, PageFollow,
		PageSignup, PageLogin, PageLoggedOut, PageNotFound, PageForbidden, PageServer,
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		// the page goes last so that its blocks replace the layout defaults
		patterns := append(append([]string{}, shared...), "templates/"+page)
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("ошибка при разборе шаблона %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}

	return r, nil
}

// Bytes renders the page into memory so that a failing template never
// leaves a half written response.
func (r *Renderer) Bytes(page string, view View) ([]byte, error) {
	tmpl, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("шаблон %s не найден", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", view); err != nil {
		return nil, fmt.Errorf("ошибка при отрисовке шаблона %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// Templates lists the embedded template files.
func Templates() ([]string, error) {
	var names []string
	err := fs.WalkDir(files, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, strings.TrimPrefix(path, "templates/"))
		}
		return nil
	})
	return names, err
}

func formatDate(t time.Time) string {
	return t.Local().Format("02.01.2006 15:04")
}

func truncateWords(n int, s string) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

func lineBreaks(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func mediaURL(ref *string) string {
	if ref == nil || *ref == "" {
		return ""
	}
	return "/media/" + *ref
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func pageURL(number int) string {
	return "?" + url.Values{"page": {fmt.Sprint(number)}}.Encode()
}
