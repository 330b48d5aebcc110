package usecase

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

type fakeUsers struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	updateErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUsers) CreateUserWithProfile(_ context.Context, user *domain.User, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	profile.UserID = user.ID
	user.Profile = profile
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.IsActive && strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) EmailInUse(_ context.Context, email string, exceptID uuid.UUID) (bool, error) {
	_, err := f.find(func(u *domain.User) bool { return u.ID != exceptID && strings.EqualFold(u.Email, email) })
	return err == nil, nil
}

func (f *fakeUsers) UpdateUserAndProfile(_ context.Context, user *domain.User, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	u.FirstName, u.LastName, u.Email = user.FirstName, user.LastName, user.Email
	cp := *profile
	u.Profile = &cp
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

// fakePosts держит посты в памяти и повторяет семантику выборок PostgreSQL-хранилища
type fakePosts struct {
	posts    []domain.Post
	tags     []domain.Tag
	comments *fakeComments
}

func (f *fakePosts) published(tagID *uuid.UUID) []domain.Post {
	var out []domain.Post
	for _, p := range f.posts {
		if !p.IsPublished() {
			continue
		}
		if tagID != nil && !hasTag(p, *tagID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasTag(p domain.Post, id uuid.UUID) bool {
	for _, t := range p.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (f *fakePosts) ListPublished(_ context.Context, filter ports.PostFilter, limit, offset int) ([]domain.Post, error) {
	posts := f.published(filter.TagID)
	sort.SliceStable(posts, func(i, j int) bool {
		switch filter.Sort {
		case domain.SortDateOld:
			return posts[i].Publish.Before(posts[j].Publish)
		case domain.SortTitleAsc:
			return posts[i].Title < posts[j].Title
		case domain.SortTitleDesc:
			return posts[i].Title > posts[j].Title
		default:
			return posts[i].Publish.After(posts[j].Publish)
		}
	})
	if offset >= len(posts) {
		return nil, nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], nil
}

func (f *fakePosts) CountPublished(_ context.Context, tagID *uuid.UUID) (int64, error) {
	return int64(len(f.published(tagID))), nil
}

func (f *fakePosts) GetPublishedByDate(_ context.Context, year, month, day int, slug string) (*domain.Post, error) {
	for _, p := range f.published(nil) {
		pub := p.Publish.UTC()
		if p.Slug == slug && pub.Year() == year && int(pub.Month()) == month && pub.Day() == day {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePosts) GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	p, err := f.GetPostByID(ctx, id)
	if err != nil || !p.IsPublished() {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) GetPostByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePosts) GetTagBySlug(_ context.Context, slug string) (*domain.Tag, error) {
	for _, t := range f.tags {
		if t.Slug == slug {
			cp := t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePosts) SimilarPosts(_ context.Context, post *domain.Post, limit int) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range f.published(nil) {
		if p.ID == post.ID {
			continue
		}
		for _, id := range post.TagIDs() {
			if hasTag(p, id) {
				p.TagCount = len(p.Tags)
				out = append(out, p)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TagCount != out[j].TagCount {
			return out[i].TagCount > out[j].TagCount
		}
		return out[i].Publish.After(out[j].Publish)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePosts) LatestPublished(ctx context.Context, limit int) ([]domain.Post, error) {
	return f.ListPublished(ctx, ports.PostFilter{Sort: domain.SortDateNew}, limit, 0)
}

func (f *fakePosts) MostCommented(_ context.Context, limit int) ([]domain.Post, error) {
	posts := f.published(nil)
	for i := range posts {
		posts[i].CommentCount = f.comments.count(posts[i].ID)
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CommentCount > posts[j].CommentCount })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakePosts) SlugTaken(_ context.Context, slug string, publish time.Time, exceptID uuid.UUID) (bool, error) {
	y, m, d := publish.UTC().Date()
	for _, p := range f.posts {
		py, pm, pd := p.Publish.UTC().Date()
		if p.ID != exceptID && p.Slug == slug && py == y && pm == m && pd == d {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) SavePost(_ context.Context, post *domain.Post, tagNames []string) error {
	post.Tags = nil
	for _, name := range tagNames {
		post.Tags = append(post.Tags, domain.Tag{ID: uuid.New(), Name: name, Slug: strings.ToLower(name)})
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
		f.posts = append(f.posts, *post)
		return nil
	}
	for i := range f.posts {
		if f.posts[i].ID == post.ID {
			f.posts[i] = *post
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeComments struct {
	comments []domain.Comment
}

func (f *fakeComments) SaveComment(_ context.Context, c *domain.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeComments) ActiveComments(_ context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.comments {
		if c.PostID == postID && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) count(postID uuid.UUID) int {
	n := 0
	for _, c := range f.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

type fakeSearch struct {
	posts *fakePosts
}

func (f *fakeSearch) SearchPublished(_ context.Context, query string) ([]domain.Post, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	var out []domain.Post
	for _, p := range f.posts.published(nil) {
		if strings.Contains(strings.ToLower(p.Title+" "+p.Body), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSearch) AllPublished(ctx context.Context) ([]domain.Post, error) {
	return f.posts.LatestPublished(ctx, len(f.posts.posts))
}

func (f *fakeSearch) LatestForFeed(ctx context.Context, limit int) ([]domain.Post, error) {
	return f.posts.LatestPublished(ctx, limit)
}

type fakeMailer struct {
	sent []payloads.MailPayload
	err  error
}

func (m *fakeMailer) Send(_ context.Context, p payloads.MailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, p)
	return nil
}

type fakeFiles struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeFiles) UploadFile(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return "/media/" + key, nil
}

func (f *fakeFiles) GetFile(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), f.types[key], nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeImages struct {
	images []domain.Image
	err    error
}

func (f *fakeImages) SaveImage(_ context.Context, img *domain.Image) error {
	if f.err != nil {
		return f.err
	}
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	f.images = append(f.images, *img)
	return nil
}

func (f *fakeImages) GetImageByID(_ context.Context, id uuid.UUID) (*domain.Image, error) {
	for _, img := range f.images {
		if img.ID == id {
			cp := img
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeImages) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.Image, error) {
	var out []domain.Image
	for _, img := range f.images {
		if img.UserID == userID && len(out) < limit {
			out = append(out, img)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	file *ports.FetchedFile
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*ports.FetchedFile, error) {
	f.urls = append(f.urls, url)
	return f.file, f.err
}
