package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []payloads.MailPayload
	err  error
}

func (m *recordingMailer) Send(_ context.Context, p payloads.MailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, p)
	return nil
}

// queueStub отдаёт заранее заданные письма обработчику синхронно
type queueStub struct {
	pending []payloads.MailPayload
	errs    []error
}

func (q *queueStub) StartConsumingMail(ctx context.Context, handler func(context.Context, payloads.MailPayload) error) error {
	for _, p := range q.pending {
		q.errs = append(q.errs, handler(ctx, p))
	}
	return nil
}

func TestRun_UnknownMode(t *testing.T) {
	var closed int
	a := NewApp(&config.Config{}, logger.Discard(), nil, nil, nil,
		CloserFunc(func() error { closed++; return nil }))

	err := a.Run(context.Background(), "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "batch"`)
	assert.Equal(t, 1, closed)
}

func TestRunWorker_DeliversQueuedMail(t *testing.T) {
	mailer := &recordingMailer{}
	queue := &queueStub{pending: []payloads.MailPayload{
		{To: []string{"a@example.com"}, Subject: "one", Kind: "share"},
		{To: []string{"b@example.com"}, Subject: "two", Kind: "password_reset"},
	}}
	a := NewApp(&config.Config{}, logger.Discard(), nil, mailer, queue)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, a.runWorker(ctx))
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "two", mailer.sent[1].Subject)
	assert.Equal(t, []error{nil, nil}, queue.errs)
}

func TestRunWorker_SendErrorReachesQueue(t *testing.T) {
	sendErr := errors.New("smtp down")
	queue := &queueStub{pending: []payloads.MailPayload{{Subject: "x"}}}
	a := NewApp(&config.Config{}, logger.Discard(), nil, &recordingMailer{err: sendErr}, queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.runWorker(ctx))
	require.Len(t, queue.errs, 1)
	assert.ErrorIs(t, queue.errs[0], sendErr)
}

func TestRunWorker_RequiresQueue(t *testing.T) {
	a := NewApp(&config.Config{}, logger.Discard(), nil, &recordingMailer{}, nil)
	assert.ErrorIs(t, a.runWorker(context.Background()), errNoMailQueue)
}

func TestShutdown_ClosesInReverseOrder(t *testing.T) {
	var order []string
	closeErr := errors.New("close failed")
	a := NewApp(&config.Config{}, logger.Discard(), nil, nil, nil,
		CloserFunc(func() error { order = append(order, "db"); return nil }),
		CloserFunc(func() error { order = append(order, "cache"); return closeErr }),
	)

	err := a.Shutdown()
	assert.ErrorIs(t, err, closeErr)
	assert.Equal(t, []string{"cache", "db"}, order)
	assert.NoError(t, a.Shutdown())
}
