package messages

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

type replier interface {
	Reply(text string) error
}

type CommandHandler interface {
	HandleCommand(ctx context.Context, text string) (string, error)
}

// Service turns one line of user input into one reply. Errors are
// answered with a user-visible message and propagated for logging.
type Service struct {
	replier replier
	handler CommandHandler
}

func NewService(replier replier, ledger ledgerService, prefs prefsService, converter converter) *Service {
	return &Service{
		replier: replier,
		handler: newHandler(ledger, prefs, converter),
	}
}

type Message struct {
	Text string
}

func (s *Service) HandleIncomingMessage(ctx context.Context, msg Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "handleCommand")
	defer span.Finish()

	start := time.Now()
	err := s.handle(ctx, msg)
	elapsed := time.Since(start)

	observeResponse(elapsed, err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	return err
}

func (s *Service) handle(ctx context.Context, msg Message) error {
	resp, err := s.handler.HandleCommand(ctx, msg.Text)
	if err != nil {
		_ = s.replier.Reply("Sorry, something wrong happened...\n" + resp)
		return err
	}
	return s.replier.Reply(resp)
}
