package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/metrics"
)

var (
	ErrTooLarge           = errors.New("remote file is too large")
	ErrNotImage           = errors.New("remote file is not an image")
	ErrUnexpectedResponse = errors.New("unexpected response from remote host")
)

const userAgent = "BlogApp-ImageFetcher/1.0"

// HTTPClient скачивает изображения по внешним URL.
type HTTPClient struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

// NewHTTPClient создает клиент с таймаутом на весь запрос и лимитом размера тела.
func NewHTTPClient(timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Fetch реализует ports.ImageFetcher.
// Ответ не 200, заявленный тип не image/* или тело больше лимита — ошибка.
// Тип результата определяется по байтам тела: принимаются только JPEG и PNG.
func (c *HTTPClient) Fetch(ctx context.Context, url string) (*ports.FetchedFile, error) {
	start := time.Now()

	file, err := c.fetch(ctx, url)
	if err != nil {
		metrics.ImagesFetched.WithLabelValues("error").Inc()
		c.logger.Warn("image fetch failed", "url", url, "error", err)
		return nil, err
	}

	metrics.ImagesFetched.WithLabelValues("ok").Inc()
	c.logger.Info("image fetched",
		"url", url,
		"bytes", len(file.Data),
		"content_type", file.ContentType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return file, nil
}

func (c *HTTPClient) fetch(ctx context.Context, url string) (*ports.FetchedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	if declared := resp.Header.Get("Content-Type"); declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err != nil || !strings.HasPrefix(mediaType, "image/") {
			return nil, fmt.Errorf("%w: %s", ErrNotImage, declared)
		}
	}

	if c.maxBytes > 0 && resp.ContentLength > c.maxBytes {
		return nil, ErrTooLarge
	}

	reader := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, ErrTooLarge
	}

	contentType, err := domain.DetectImageType(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	return &ports.FetchedFile{Data: data, ContentType: contentType}, nil
}
