package di

import (
	"context"
	"fmt"
	"io"

	"github.com/GoArmGo/BlogApp/internal/adapter/fetcher"
	"github.com/GoArmGo/BlogApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/BlogApp/internal/app"
	"github.com/GoArmGo/BlogApp/internal/cache"
	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/database/client"
	"github.com/GoArmGo/BlogApp/internal/database/storage"
	"github.com/GoArmGo/BlogApp/internal/handler"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/mail"
	"github.com/GoArmGo/BlogApp/internal/rabbitmq"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// При ошибке уже открытые подключения закрываются.
func BuildApp(ctx context.Context) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []io.Closer
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	// 2. PostgreSQL: sqlx для поиска, gorm для остальных хранилищ
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient)

	// 3. Хранилища
	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)
	postStorage := storage.NewPostStorage(dbClient.Gorm, slogger)
	commentStorage := storage.NewCommentStorage(dbClient.Gorm, slogger)
	imageStorage := storage.NewImageStorage(dbClient.Gorm, slogger)
	searchStorage := storage.NewSearchStorage(dbClient.DB, cfg.SearchConfig, slogger)

	// 4. Кэш боковой панели (пустой REDIS_URL отключает его)
	sidebarCache, err := cache.New(ctx, cfg.RedisURL, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, sidebarCache)

	// 5. Внешние сервисы: объектное хранилище и загрузчик изображений
	fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}
	imageFetcher := fetcher.NewHTTPClient(cfg.ImageFetchTimeout, cfg.ImageMaxBytes, slogger)

	// 6. Почта: SMTP напрямую или через очередь RabbitMQ
	smtpMailer, err := mail.NewSMTPMailer(cfg, slogger)
	if err != nil {
		return nil, err
	}

	var (
		mailer       ports.Mailer = smtpMailer
		mailConsumer ports.MailConsumer
	)
	if cfg.RabbitMQ.RabbitMQURL != "" {
		var rabbitMQClient *rabbitmq.Client
		rabbitMQClient, err = rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, app.CloserFunc(func() error {
			rabbitMQClient.Close()
			return nil
		}))
		mailConsumer = rabbitMQClient
		if cfg.MailViaQueue {
			mailer = mail.NewQueueMailer(rabbitMQClient)
		}
	}
	slogger.Info("mail transport selected", "via_queue", cfg.MailViaQueue)

	// 7. Бизнес-логика (usecases)
	accountUseCase := usecase.NewAccountUseCase(
		userStorage,
		fileStorage,
		mailer,
		usecase.NewResetTokens(cfg.SessionSecret, cfg.PasswordResetTimeout),
		slogger,
	)
	blogUseCase := usecase.NewBlogUseCase(
		postStorage,
		commentStorage,
		searchStorage,
		mailer,
		sidebarCache,
		usecase.BlogConfig{
			PostsPerPage: cfg.PostsPerPage,
			FeedItems:    cfg.FeedItems,
			SidebarTTL:   cfg.SidebarCacheTTL,
		},
		slogger,
	)
	imageUseCase := usecase.NewImageUseCase(imageStorage, imageFetcher, fileStorage, slogger)

	// 8. HTTP обработчики и сессии
	h, err := handler.NewHandler(
		accountUseCase,
		blogUseCase,
		imageUseCase,
		handler.NewSessionStore(cfg.SessionSecret, cfg.SessionSecure),
		cfg.BaseURL,
		slogger,
	)
	if err != nil {
		return nil, fmt.Errorf("build handler: %w", err)
	}

	// 9. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, h, smtpMailer, mailConsumer, closers...)

	slogger.Info("all dependencies initialized")
	return application, nil
}
