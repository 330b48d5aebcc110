package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/cache"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/feed"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/GoArmGo/BlogApp/internal/pagination"
	"github.com/GoArmGo/BlogApp/internal/slug"
	"github.com/google/uuid"
)

const mailKindShare = "share"

// BlogConfig — настраиваемые параметры блога
type BlogConfig struct {
	PostsPerPage int
	FeedItems    int
	SidebarTTL   time.Duration
}

// blogUseCase implements BlogUseCase
type blogUseCase struct {
	posts    ports.PostStorage
	comments ports.CommentStorage
	search   ports.SearchStorage
	mailer   ports.Mailer
	cache    *cache.Cache
	cfg      BlogConfig
	logger   *slog.Logger
}

// NewBlogUseCase создает новый экземпляр BlogUseCase
func NewBlogUseCase(
	posts ports.PostStorage,
	comments ports.CommentStorage,
	search ports.SearchStorage,
	mailer ports.Mailer,
	sidebarCache *cache.Cache,
	cfg BlogConfig,
	logger *slog.Logger,
) BlogUseCase {
	if cfg.PostsPerPage <= 0 {
		cfg.PostsPerPage = 3
	}
	if cfg.FeedItems <= 0 {
		cfg.FeedItems = 5
	}
	return &blogUseCase{
		posts:    posts,
		comments: comments,
		search:   search,
		mailer:   mailer,
		cache:    sidebarCache,
		cfg:      cfg,
		logger:   logger,
	}
}

func (uc *blogUseCase) ListPosts(ctx context.Context, in PostListInput) (*PostList, error) {
	out := &PostList{Sort: domain.ParseSort(in.Sort)}

	filter := ports.PostFilter{Sort: out.Sort}
	if in.TagSlug != "" {
		tag, err := uc.posts.GetTagBySlug(ctx, in.TagSlug)
		if err != nil {
			return nil, err
		}
		out.Tag = tag
		filter.TagID = &tag.ID
	}

	total, err := uc.posts.CountPublished(ctx, filter.TagID)
	if err != nil {
		return nil, fmt.Errorf("usecase: count posts: %w", err)
	}
	out.Page = pagination.New(in.Page, uc.cfg.PostsPerPage, total)

	if total > 0 {
		out.Posts, err = uc.posts.ListPublished(ctx, filter, out.Page.Limit(), out.Page.Offset())
		if err != nil {
			return nil, fmt.Errorf("usecase: list posts: %w", err)
		}
	}
	return out, nil
}

func (uc *blogUseCase) PostDetail(ctx context.Context, year, month, day int, postSlug string) (*PostDetail, error) {
	post, err := uc.posts.GetPublishedByDate(ctx, year, month, day, postSlug)
	if err != nil {
		return nil, err
	}

	comments, err := uc.comments.ActiveComments(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: list comments: %w", err)
	}

	similar, err := uc.posts.SimilarPosts(ctx, post, SimilarPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("usecase: similar posts: %w", err)
	}

	return &PostDetail{Post: post, Comments: comments, SimilarPosts: similar}, nil
}

func (uc *blogUseCase) GetPublishedPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return uc.posts.GetPublishedByID(ctx, id)
}

func (uc *blogUseCase) AddComment(ctx context.Context, postID uuid.UUID, in CommentInput) (*domain.Comment, error) {
	post, err := uc.posts.GetPublishedByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID: post.ID,
		UserID: in.UserID,
		Name:   in.Name,
		Email:  in.Email,
		Body:   in.Body,
		Active: true,
	}
	if err := uc.comments.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("usecase: save comment: %w", err)
	}

	uc.cache.Invalidate(ctx, cache.SidebarKeys...)
	return comment, nil
}

func (uc *blogUseCase) SharePost(ctx context.Context, postID uuid.UUID, in ShareInput, siteURL string) (*domain.Post, error) {
	post, err := uc.posts.GetPublishedByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	postURL := strings.TrimRight(siteURL, "/") + post.AbsoluteURL()
	msg := payloads.MailPayload{
		To:      []string{in.To},
		Subject: fmt.Sprintf("%s recommends you read %s", in.Name, post.Title),
		Body:    fmt.Sprintf("Read %s at %s\n\n%s's comments: %s", post.Title, postURL, in.Name, in.Comments),
		Kind:    mailKindShare,
	}
	if err := uc.mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("usecase: send share mail: %w", err)
	}

	uc.logger.Info("post shared", "post_id", post.ID, "to", in.To)
	return post, nil
}

func (uc *blogUseCase) Search(ctx context.Context, query string) ([]domain.Post, error) {
	return uc.search.SearchPublished(ctx, query)
}

func (uc *blogUseCase) Sidebar(ctx context.Context) (*Sidebar, error) {
	out := &Sidebar{}

	err := uc.cache.Aside(ctx, cache.TotalPostsKey, &out.TotalPosts, uc.cfg.SidebarTTL, func() error {
		n, err := uc.posts.CountPublished(ctx, nil)
		out.TotalPosts = n
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: total posts: %w", err)
	}

	latestKey := fmt.Sprintf(cache.LatestPostsKey, SidebarPostsLimit)
	err = uc.cache.Aside(ctx, latestKey, &out.LatestPosts, uc.cfg.SidebarTTL, func() error {
		posts, err := uc.posts.LatestPublished(ctx, SidebarPostsLimit)
		out.LatestPosts = posts
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: latest posts: %w", err)
	}

	commentedKey := fmt.Sprintf(cache.MostCommentedKey, SidebarPostsLimit)
	err = uc.cache.Aside(ctx, commentedKey, &out.MostCommented, uc.cfg.SidebarTTL, func() error {
		posts, err := uc.posts.MostCommented(ctx, SidebarPostsLimit)
		out.MostCommented = posts
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: most commented posts: %w", err)
	}

	return out, nil
}

func (uc *blogUseCase) Feed(ctx context.Context, siteURL string) (string, error) {
	posts, err := uc.search.LatestForFeed(ctx, uc.cfg.FeedItems)
	if err != nil {
		return "", fmt.Errorf("usecase: feed posts: %w", err)
	}
	return feed.RSS(siteURL, posts)
}

func (uc *blogUseCase) Sitemap(ctx context.Context, siteURL string) ([]byte, error) {
	posts, err := uc.search.AllPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: sitemap posts: %w", err)
	}
	return feed.Sitemap(siteURL, posts)
}

func (uc *blogUseCase) PostForEdit(ctx context.Context, postID, editorID uuid.UUID) (*domain.Post, error) {
	post, err := uc.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (uc *blogUseCase) SavePost(ctx context.Context, editorID uuid.UUID, postID *uuid.UUID, in PostInput) (*domain.Post, error) {
	post := &domain.Post{AuthorID: editorID}
	if postID != nil {
		existing, err := uc.PostForEdit(ctx, *postID, editorID)
		if err != nil {
			return nil, err
		}
		post = existing
	}

	postSlug := strings.TrimSpace(in.Slug)
	if postSlug == "" {
		postSlug = slug.Make(in.Title)
	}
	if postSlug == "" {
		postSlug = slug.MakeUnicode(in.Title)
	}
	if postSlug == "" {
		return nil, fmt.Errorf("usecase: title %q yields an empty slug", in.Title)
	}

	taken, err := uc.posts.SlugTaken(ctx, postSlug, in.Publish, post.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: check slug: %w", err)
	}
	if taken {
		return nil, domain.ErrSlugTaken
	}

	post.Title = in.Title
	post.Slug = postSlug
	post.Body = in.Body
	post.Publish = in.Publish.UTC()
	post.Status = in.Status
	post.Tags = nil
	post.Author = nil

	if err := uc.posts.SavePost(ctx, post, in.Tags); err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, cache.SidebarKeys...)
	return post, nil
}
