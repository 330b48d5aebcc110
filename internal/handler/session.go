package handler

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"net/http"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName   = "blogapp_session"
	sessionUserID = "user_id"
)

type ctxKey int

const userCtxKey ctxKey = iota

// flashMessage — одноразовое сообщение, показываемое на следующей отрендеренной странице
type flashMessage struct {
	Level string
	Text  string
}

func init() {
	gob.Register(flashMessage{})
}

// NewSessionStore создаёт хранилище сессий в подписанных и зашифрованных cookie.
// Секрет служит ключом HMAC, ключ AES-256 выводится из него через SHA-256.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	blockKey := sha256.Sum256([]byte("blogapp session encryption:" + secret))
	store := sessions.NewCookieStore([]byte(secret), blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (h *Handler) session(r *http.Request) *sessions.Session {
	s, err := h.sessions.Get(r, sessionName)
	if err != nil {
		// повреждённая или подписанная старым секретом cookie: начинаем новую сессию
		h.logger.Debug("discarding invalid session cookie", "error", err)
	}
	return s
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
	if err := s.Save(r, w); err != nil {
		h.logger.Error("failed to save session", "error", err)
	}
}

// login запоминает пользователя в сессии
func (h *Handler) login(w http.ResponseWriter, r *http.Request, user *domain.User) {
	s := h.session(r)
	s.Values[sessionUserID] = user.ID.String()
	h.saveSession(w, r, s)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	delete(s.Values, sessionUserID)
	s.Options.MaxAge = -1
	h.saveSession(w, r, s)
}

func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, level, text string) {
	s := h.session(r)
	s.AddFlash(flashMessage{Level: level, Text: text})
	h.saveSession(w, r, s)
}

func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []flashMessage {
	s := h.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	h.saveSession(w, r, s)

	out := make([]flashMessage, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(flashMessage); ok {
			out = append(out, msg)
		}
	}
	return out
}

// LoadUser достаёт пользователя из сессии и кладёт его в контекст запроса.
// Неизвестный или неактивный пользователь считается анонимным.
func (h *Handler) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := h.session(r).Values[sessionUserID].(string)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := h.accounts.GetUser(r.Context(), id)
		if err != nil || !user.IsActive {
			if err != nil {
				h.logger.Debug("session user not loaded", "user_id", id, "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, user)))
	})
}

// currentUser возвращает вошедшего пользователя или nil
func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userCtxKey).(*domain.User)
	return user
}
