package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yatube/internal/models"
	"yatube/internal/repository"
)

func TestLoginRequired(t *testing.T) {
	app := newTestApp(t)
	leo := app.user(t, "leo")
	post := app.post(t, leo, "Текст")

	tests := []struct {
		name   string
		req    request
		target string
	}{
		{name: "Создание поста", req: get("/create/"), target: "/create/"},
		{name: "Редактирование поста", req: get(fmt.Sprintf("/posts/%d/edit/", post.PostID)), target: fmt.Sprintf("/posts/%d/edit/", post.PostID)},
		{name: "Комментарий", req: postForm(fmt.Sprintf("/posts/%d/comment/", post.PostID), nil), target: fmt.Sprintf("/posts/%d/comment/", post.PostID)},
		{name: "Лента подписок", req: get("/follow-feed/"), target: "/follow-feed/"},
		{name: "Подписка", req: get("/follow/leo/"), target: "/follow/leo/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.do(t, tc.req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(tc.target), rec.Header().Get("Location"))
		})
	}
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "leo")
	group := &models.Group{Title: "Котики", Slug: "cats"}
	require.NoError(t, app.rep.Group.Create(context.Background(), group))

	t.Run("Форма показывает группы", func(t *testing.T) {
		rec := app.do(t, get("/create/").withUser("leo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Новый пост")
		assert.Contains(t, rec.Body.String(), "Котики")
	})

	t.Run("Пустой текст возвращает форму с ошибкой", func(t *testing.T) {
		rec := app.do(t, postMultipart(t, "/create/", map[string]string{"text": "   "}, "", nil).withUser("leo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Обязательное поле.")
	})

	t.Run("Несуществующая группа", func(t *testing.T) {
		rec := app.do(t, postMultipart(t, "/create/", map[string]string{"text": "Пост", "group": "42"}, "", nil).withUser("leo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Выберите корректный вариант.")
	})

	t.Run("Не картинка в поле изображения", func(t *testing.T) {
		rec := app.do(t, postMultipart(t, "/create/", map[string]string{"text": "Пост"}, "notes.txt", []byte("plain text")).withUser("leo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Загрузите правильное изображение.")
	})

	t.Run("Пост с картинкой и группой", func(t *testing.T) {
		app.storage.On("UploadImage", mock.Anything, "small.png", mock.Anything, int64(len(pngHeader)), "image/png").
			Return("posts/small.png", nil).Once()

		form := map[string]string{"text": "Пост с картинкой", "group": fmt.Sprint(group.GroupID)}
		rec := app.do(t, postMultipart(t, "/create/", form, "small.png", pngHeader).withUser("leo"))
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

		page := app.do(t, get("/group/cats/"))
		assert.Contains(t, page.Body.String(), "Пост с картинкой")
		assert.Contains(t, page.Body.String(), "/media/posts/small.png")
		app.storage.AssertExpectations(t)
	})
}

func TestEditPost(t *testing.T) {
	app := newTestApp(t)
	leo := app.user(t, "leo")
	app.user(t, "kate")
	post := app.post(t, leo, "Исходный текст")
	editURL := fmt.Sprintf("/posts/%d/edit/", post.PostID)

	t.Run("Чужой пост перенаправляет на профиль автора", func(t *testing.T) {
		rec := app.do(t, get(editURL).withUser("kate"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

		rec = app.do(t, postMultipart(t, editURL, map[string]string{"text": "Взлом"}, "", nil).withUser("kate"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))
	})

	t.Run("Автор видит форму с текстом", func(t *testing.T) {
		rec := app.do(t, get(editURL).withUser("leo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Редактировать пост")
		assert.Contains(t, rec.Body.String(), "Исходный текст")
	})

	t.Run("Автор сохраняет изменения", func(t *testing.T) {
		rec := app.do(t, postMultipart(t, editURL, map[string]string{"text": "Новый текст"}, "", nil).withUser("leo"))
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, fmt.Sprintf("/posts/%d/", post.PostID), rec.Header().Get("Location"))

		updated, err := app.rep.Post.GetByID(context.Background(), post.PostID)
		require.NoError(t, err)
		assert.Equal(t, "Новый текст", updated.Text)
	})

	t.Run("Несуществующий пост", func(t *testing.T) {
		rec := app.do(t, get("/posts/999/edit/").withUser("leo"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEditPostOversizedUpload(t *testing.T) {
	app := newTestApp(t)
	leo := app.user(t, "leo")
	post := app.post(t, leo, "Исходный текст")
	app.h.Cfg.MaxUploadSize = 256

	big := append(append([]byte{}, pngHeader...), make([]byte, 4096)...)

	t.Run("Несуществующий пост отвечает 404", func(t *testing.T) {
		rec := app.do(t, postMultipart(t, "/posts/999/edit/", map[string]string{"text": "Текст"}, "big.png", big).withUser("leo"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Автор видит ошибку изображения", func(t *testing.T) {
		target := fmt.Sprintf("/posts/%d/edit/", post.PostID)
		rec := app.do(t, postMultipart(t, target, map[string]string{"text": "Текст"}, "big.png", big).withUser("leo"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Загрузите правильное изображение.")
	})
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t)
	leo := app.user(t, "leo")
	app.user(t, "kate")
	post := app.post(t, leo, "Удаляемый пост")
	deleteURL := fmt.Sprintf("/posts/%d/delete/", post.PostID)

	t.Run("Чужой пост удалить нельзя", func(t *testing.T) {
		rec := app.do(t, postForm(deleteURL, nil).withUser("kate"))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, err := app.rep.Post.GetByID(context.Background(), post.PostID)
		assert.NoError(t, err)
	})

	t.Run("Автор удаляет пост", func(t *testing.T) {
		rec := app.do(t, postForm(deleteURL, nil).withUser("leo"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

		_, err := app.rep.Post.GetByID(context.Background(), post.PostID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Удаление только через POST", func(t *testing.T) {
		rec := app.do(t, get(deleteURL).withUser("leo"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
