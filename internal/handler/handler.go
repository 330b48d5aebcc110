package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/gorilla/sessions"
)

// Handler — обработчик HTTP-запросов сайта: блог, аккаунты, галерея изображений.
type Handler struct {
	accounts usecase.AccountUseCase
	blog     usecase.BlogUseCase
	images   usecase.ImageUseCase
	sessions sessions.Store
	views    *views
	baseURL  string
	logger   *slog.Logger
}

// NewHandler создаёт новый экземпляр Handler и разбирает встроенные шаблоны.
// baseURL, если задан, используется для абсолютных ссылок вместо хоста запроса.
func NewHandler(
	accounts usecase.AccountUseCase,
	blog usecase.BlogUseCase,
	images usecase.ImageUseCase,
	store sessions.Store,
	baseURL string,
	logger *slog.Logger,
) (*Handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		accounts: accounts,
		blog:     blog,
		images:   images,
		sessions: store,
		views:    v,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// siteURL возвращает схему и хост сайта для абсолютных ссылок в письмах, RSS и sitemap.
func (h *Handler) siteURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// respondWithError рендерит страницу ошибки с нужным статусом.
func (h *Handler) respondWithError(w http.ResponseWriter, r *http.Request, code int) {
	data := &pageData{Title: http.StatusText(code), Status: code}
	h.render(w, r, code, "errors/error.html", data)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respondWithError(w, r, http.StatusNotFound)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondWithError(w, r, http.StatusMethodNotAllowed)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
	h.respondWithError(w, r, http.StatusInternalServerError)
}

// handleUseCaseError переводит ошибку бизнес-логики в ответ: 404, 403 или 500.
func (h *Handler) handleUseCaseError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.notFound(w, r)
	case errors.Is(err, domain.ErrForbidden):
		h.respondWithError(w, r, http.StatusForbidden)
	default:
		h.serverError(w, r, msg, err)
	}
}
