package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PostList — список опубликованных постов, по всему блогу или по тегу.
func (h *Handler) PostList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.blog.ListPosts(r.Context(), usecase.PostListInput{
		TagSlug: chi.URLParam(r, "tagSlug"),
		Page:    q.Get("page"),
		Sort:    q.Get("sort"),
	})
	if err != nil {
		h.handleUseCaseError(w, r, "failed to list posts", err)
		return
	}

	data := &pageData{
		Title:   "My Blog",
		Section: "blog",
		Posts:   list.Posts,
		Page:    list.Page,
		Tag:     list.Tag,
		Sort:    list.Sort,
	}
	h.render(w, r, http.StatusOK, "blog/list.html", h.withSidebar(r, data))
}

// PostDetail — страница поста по дате публикации и slug.
func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	day, errD := strconv.Atoi(chi.URLParam(r, "day"))
	if errY != nil || errM != nil || errD != nil {
		h.notFound(w, r)
		return
	}

	detail, err := h.blog.PostDetail(r.Context(), year, month, day, chi.URLParam(r, "slug"))
	if err != nil {
		h.handleUseCaseError(w, r, "failed to load post", err)
		return
	}

	data := &pageData{
		Title:        detail.Post.Title,
		Section:      "blog",
		Post:         detail.Post,
		Comments:     detail.Comments,
		SimilarPosts: detail.SimilarPosts,
		Form:         forms.CommentForm{},
	}
	h.render(w, r, http.StatusOK, "blog/detail.html", h.withSidebar(r, data))
}

// publishedPost загружает опубликованный пост по {postID}; при ошибке ответ уже отправлен.
func (h *Handler) publishedPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		h.notFound(w, r)
		return nil, false
	}
	post, err := h.blog.GetPublishedPost(r.Context(), id)
	if err != nil {
		h.handleUseCaseError(w, r, "failed to load post", err)
		return nil, false
	}
	return post, true
}

// PostComment принимает комментарий (только POST) и рендерит результат.
func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.publishedPost(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}

	var form forms.CommentForm
	errs := forms.Bind(&form, r.PostForm)
	data := &pageData{Title: "Add a comment", Section: "blog", Post: post, Form: form, Errors: errs}

	if !errs.Any() {
		in := usecase.CommentInput{Name: form.Name, Email: form.Email, Body: form.Body}
		if user := currentUser(r); user != nil {
			in.UserID = &user.ID
		}
		comment, err := h.blog.AddComment(r.Context(), post.ID, in)
		if err != nil {
			h.handleUseCaseError(w, r, "failed to add comment", err)
			return
		}
		h.logger.Info("comment added", "post_id", post.ID, "comment_id", comment.ID)
		data.Comment = comment
	}

	h.render(w, r, http.StatusOK, "blog/comment.html", h.withSidebar(r, data))
}

// PostShare — форма «поделиться постом по email».
func (h *Handler) PostShare(w http.ResponseWriter, r *http.Request) {
	post, ok := h.publishedPost(w, r)
	if !ok {
		return
	}

	data := &pageData{Title: "Share a post", Section: "blog", Post: post, Form: forms.EmailPostForm{}}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.respondWithError(w, r, http.StatusBadRequest)
			return
		}
		var form forms.EmailPostForm
		data.Errors = forms.Bind(&form, r.PostForm)
		data.Form = form

		if !data.Errors.Any() {
			_, err := h.blog.SharePost(r.Context(), post.ID, usecase.ShareInput{
				Name:     form.Name,
				Email:    form.Email,
				To:       form.To,
				Comments: form.Comments,
			}, h.siteURL(r))
			if err != nil {
				h.handleUseCaseError(w, r, "failed to share post", err)
				return
			}
			data.Sent = true
		}
	}

	h.render(w, r, http.StatusOK, "blog/share.html", h.withSidebar(r, data))
}

// PostSearch — полнотекстовый поиск; без параметра query показывает только форму.
func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Title: "Search", Section: "blog", Form: forms.SearchForm{}}

	q := r.URL.Query()
	if _, ok := q["query"]; ok {
		var form forms.SearchForm
		data.Errors = forms.Bind(&form, q)
		data.Form = form
		if !data.Errors.Any() {
			results, err := h.blog.Search(r.Context(), form.Query)
			if err != nil {
				h.serverError(w, r, "failed to search posts", err)
				return
			}
			data.Query = form.Query
			data.Searched = true
			data.Posts = results
		}
	}

	h.render(w, r, http.StatusOK, "blog/search.html", h.withSidebar(r, data))
}

// Feed отдаёт RSS с последними постами.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rss, err := h.blog.Feed(r.Context(), h.siteURL(r))
	if err != nil {
		h.serverError(w, r, "failed to build feed", err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		h.logger.Error("failed to write HTTP response", "error", err)
	}
}

// Sitemap отдаёт карту сайта по опубликованным постам.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := h.blog.Sitemap(r.Context(), h.siteURL(r))
	if err != nil {
		h.serverError(w, r, "failed to build sitemap", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write HTTP response", "error", err)
	}
}

// PostCreate — создание поста автором.
func (h *Handler) PostCreate(w http.ResponseWriter, r *http.Request) {
	data := &pageData{
		Title:   "New post",
		Section: "blog",
		Form:    forms.PostForm{Status: string(domain.StatusDraft)},
	}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "blog/post_form.html", data)
		return
	}
	h.savePost(w, r, nil, data)
}

// PostEdit — редактирование поста его автором.
func (h *Handler) PostEdit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		h.notFound(w, r)
		return
	}
	post, err := h.blog.PostForEdit(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.handleUseCaseError(w, r, "failed to load post for edit", err)
		return
	}

	data := &pageData{Title: "Edit post", Section: "blog", Post: post, Editing: true}
	if r.Method != http.MethodPost {
		names := make([]string, 0, len(post.Tags))
		for _, t := range post.Tags {
			names = append(names, t.Name)
		}
		data.Form = forms.PostForm{
			Title:   post.Title,
			Slug:    post.Slug,
			Body:    post.Body,
			Publish: post.Publish.UTC().Format(forms.DateTimeLayout),
			Status:  string(post.Status),
			Tags:    strings.Join(names, ", "),
		}
		h.render(w, r, http.StatusOK, "blog/post_form.html", data)
		return
	}
	h.savePost(w, r, &post.ID, data)
}

func (h *Handler) savePost(w http.ResponseWriter, r *http.Request, postID *uuid.UUID, data *pageData) {
	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var form forms.PostForm
	data.Errors = forms.Bind(&form, r.PostForm)
	data.Form = form
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "blog/post_form.html", data)
		return
	}

	user := currentUser(r)
	post, err := h.blog.SavePost(r.Context(), user.ID, postID, usecase.PostInput{
		Title:   form.Title,
		Slug:    form.Slug,
		Body:    form.Body,
		Publish: form.PublishTime(time.Now()),
		Status:  domain.PostStatus(form.Status),
		Tags:    form.TagNames(),
	})
	if errors.Is(err, domain.ErrSlugTaken) {
		data.Errors.Add("slug", "Slug must be unique for the publish date.")
		h.render(w, r, http.StatusOK, "blog/post_form.html", data)
		return
	}
	if err != nil {
		h.handleUseCaseError(w, r, "failed to save post", err)
		return
	}

	h.logger.Info("post saved", "post_id", post.ID, "author_id", user.ID, "status", post.Status)
	h.addFlash(w, r, "success", "Post saved successfully")
	if post.IsPublished() {
		http.Redirect(w, r, post.AbsoluteURL(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/blog/manage/"+post.ID.String()+"/edit", http.StatusSeeOther)
}
