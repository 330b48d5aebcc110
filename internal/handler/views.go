package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/markup"
	"github.com/GoArmGo/BlogApp/internal/pagination"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

//go:embed templates
var templatesFS embed.FS

const (
	layoutFile   = "templates/base.layout.html"
	partialsGlob = "templates/*.partial.html"
	summaryWords = 30
)

// pageData — данные, доступные всем шаблонам. Каждая страница заполняет только свои поля.
type pageData struct {
	Title   string
	Section string
	Path    string
	Status  int
	User    *domain.User
	Flashes []flashMessage
	Sidebar *usecase.Sidebar

	Form   any
	Errors forms.Errors

	Post         *domain.Post
	Posts        []domain.Post
	Page         pagination.Page
	Tag          *domain.Tag
	Sort         domain.PostSort
	Comments     []domain.Comment
	SimilarPosts []domain.Post
	Comment      *domain.Comment
	Sent         bool
	Query        string
	Searched     bool
	Image        *domain.Image
	Images       []domain.Image
	NewUser      *domain.User
	Next         string
	ValidLink    bool
	Editing      bool
}

type sortOption struct {
	Value domain.PostSort
	Label string
}

var sortOptions = []sortOption{
	{domain.SortDateNew, "Newest first"},
	{domain.SortDateOld, "Oldest first"},
	{domain.SortTitleAsc, "Title A-Z"},
	{domain.SortTitleDesc, "Title Z-A"},
}

var functions = template.FuncMap{
	"markdown": markup.Markdown,
	"summary": func(src string) string {
		return markup.Summary(src, summaryWords)
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("Jan 2, 2006, 15:04")
	},
	"media": func(key string) string {
		if key == "" {
			return ""
		}
		return minio.MediaPrefix + key
	},
	"sortOptions": func() []sortOption { return sortOptions },
	"inc":         func(i int) int { return i + 1 },
	"pluralize": func(n int, singular, plural string) string {
		if n == 1 {
			return singular
		}
		return plural
	},
}

// views хранит разобранные шаблоны страниц: каждая страница вместе с layout и partials.
type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	v := &views{pages: map[string]*template.Template{}}
	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") || strings.Count(p, "/") < 2 {
			return nil
		}
		name := strings.TrimPrefix(p, "templates/")
		ts, err := template.New(name).Funcs(functions).ParseFS(templatesFS, layoutFile, partialsGlob, p)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// render рендерит страницу в буфер и только затем пишет ответ,
// чтобы ошибка шаблона не оставила клиенту половину страницы.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	ts, ok := h.views.pages[page]
	if !ok {
		h.logger.Error("template not found", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &pageData{}
	}
	data.Path = r.URL.Path
	if data.User == nil {
		data.User = currentUser(r)
	}
	if data.Errors == nil {
		data.Errors = forms.Errors{}
	}
	data.Flashes = h.popFlashes(w, r)

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		h.logger.Error("failed to render template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write HTTP response", "error", err)
	}
}

// withSidebar добавляет данные боковой панели; ошибка не ломает страницу.
func (h *Handler) withSidebar(r *http.Request, data *pageData) *pageData {
	sidebar, err := h.blog.Sidebar(r.Context())
	if err != nil {
		h.logger.Warn("failed to load sidebar", "error", err)
		return data
	}
	data.Sidebar = sidebar
	return data
}
