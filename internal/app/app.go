package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/handler"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// App хранит собранные зависимости и запускает сайт или воркер отправки почты
type App struct {
	Config  *config.Config
	logger  *slog.Logger
	handler *handler.Handler

	// mailSender отправляет письма по SMTP, mailConsumer читает их из очереди (только для воркера)
	mailSender   ports.Mailer
	mailConsumer ports.MailConsumer

	// closers закрываются в обратном порядке при завершении
	closers []io.Closer
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	h *handler.Handler,
	mailSender ports.Mailer,
	mailConsumer ports.MailConsumer,
	closers ...io.Closer,
) *App {
	return &App{
		Config:       cfg,
		logger:       logger,
		handler:      h,
		mailSender:   mailSender,
		mailConsumer: mailConsumer,
		closers:      closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("running application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("error during shutdown", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// CloserFunc позволяет передать в App ресурс, у которого Close не возвращает ошибку
type CloserFunc func() error

func (f CloserFunc) Close() error {
	return f()
}
