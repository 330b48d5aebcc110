package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes собирает роутер сайта.
func (h *Handler) Routes(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/media/*", h.Media)

	r.Group(func(r chi.Router) {
		r.Use(h.LoadUser)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/blog/", http.StatusFound)
		})
		r.Get("/sitemap.xml", h.Sitemap)

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", h.PostList)
			r.Get("/tag/{tagSlug}/", h.PostList)
			r.Get("/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/{slug}/", h.PostDetail)
			r.Post("/{postID}/comment/", h.PostComment)
			r.Get("/{postID}/share/", h.PostShare)
			r.Post("/{postID}/share/", h.PostShare)
			r.Get("/search/", h.PostSearch)
			r.Get("/feed/", h.Feed)

			r.Group(func(r chi.Router) {
				r.Use(RequireLogin)
				r.Get("/manage/new", h.PostCreate)
				r.Post("/manage/new", h.PostCreate)
				r.Get("/manage/{postID}/edit", h.PostEdit)
				r.Post("/manage/{postID}/edit", h.PostEdit)
			})
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/login/", h.Login)
			r.Post("/login/", h.Login)
			r.Post("/logout/", h.Logout)
			r.Get("/register/", h.Register)
			r.Post("/register/", h.Register)
			r.Get("/password-reset/", h.PasswordReset)
			r.Post("/password-reset/", h.PasswordReset)
			r.Get("/password-reset/done/", h.PasswordResetDone)
			r.Get("/reset/{uid}/{token}/", h.PasswordResetConfirm)
			r.Post("/reset/{uid}/{token}/", h.PasswordResetConfirm)
			r.Get("/reset/done/", h.PasswordResetComplete)

			r.Group(func(r chi.Router) {
				r.Use(RequireLogin)
				r.Get("/", h.Dashboard)
				r.Get("/edit/", h.Edit)
				r.Post("/edit/", h.Edit)
				r.Get("/password-change/", h.PasswordChange)
				r.Post("/password-change/", h.PasswordChange)
			})
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/detail/{imageID}/{slug}/", h.ImageDetail)

			r.Group(func(r chi.Router) {
				r.Use(RequireLogin)
				r.Get("/create/", h.ImageCreate)
				r.Post("/create/", h.ImageCreate)
			})
		})
	})

	return r
}
