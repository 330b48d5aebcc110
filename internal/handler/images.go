package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const msgImageFetch = "Could not download an image from the given URL."

// ImageCreate — добавление изображения по внешнему URL.
// GET заполняет форму из строки запроса (букмарклет), не показывая ошибок.
func (h *Handler) ImageCreate(w http.ResponseWriter, r *http.Request) {
	data := &pageData{Title: "Bookmark an image", Section: "images"}

	if r.Method != http.MethodPost {
		var form forms.ImageCreateForm
		if err := forms.Decode(&form, r.URL.Query()); err != nil {
			h.logger.Debug("ignoring malformed image bookmarklet query", "error", err)
		}
		data.Form = form
		h.render(w, r, http.StatusOK, "images/create.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondWithError(w, r, http.StatusBadRequest)
		return
	}
	var form forms.ImageCreateForm
	data.Errors = forms.Bind(&form, r.PostForm)
	data.Form = form
	if data.Errors.Any() {
		h.render(w, r, http.StatusOK, "images/create.html", data)
		return
	}

	user := currentUser(r)
	image, err := h.images.CreateFromURL(r.Context(), user.ID, usecase.ImageInput{
		Title:       form.Title,
		URL:         form.URL,
		Description: form.Description,
	})
	if errors.Is(err, usecase.ErrImageFetch) {
		h.logger.Warn("image fetch failed", "url", form.URL, "user_id", user.ID, "error", err)
		data.Errors.Add("url", msgImageFetch)
		h.render(w, r, http.StatusOK, "images/create.html", data)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to create image", err)
		return
	}

	h.addFlash(w, r, "success", "Image added successfully")
	http.Redirect(w, r, image.AbsoluteURL(), http.StatusSeeOther)
}

// ImageDetail — страница изображения по id и slug.
func (h *Handler) ImageDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		h.notFound(w, r)
		return
	}
	image, err := h.images.GetImage(r.Context(), id)
	if err != nil {
		h.handleUseCaseError(w, r, "failed to load image", err)
		return
	}
	if image.Slug != chi.URLParam(r, "slug") {
		h.notFound(w, r)
		return
	}

	h.render(w, r, http.StatusOK, "images/detail.html", &pageData{
		Title:   image.Title,
		Section: "images",
		Image:   image,
	})
}

// Media отдаёт объект из хранилища: изображения галереи и фото профилей.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.images.OpenMedia(r.Context(), chi.URLParam(r, "*"))
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to open media object", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("media stream interrupted", "path", r.URL.Path, "error", err)
	}
}
