package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Processor consumes the emails queue and hands each envelope to a Mailer.
type Processor struct {
	server *asynq.Server
	mailer Mailer
	logger *zap.Logger
}

func NewProcessor(opt asynq.RedisConnOpt, mailer Mailer, logger *zap.Logger) *Processor {
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{queueEmails: 10},
		Logger:      logger.Sugar().Named("asynq"),
	})
	return &Processor{server: server, mailer: mailer, logger: logger}
}

// Mux routes every known task type to the delivery handler.
func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	for _, t := range []string{TaskWelcomeEmail, TaskPasswordReset, TaskOrderPlaced, TaskOrderStatusChanged} {
		mux.HandleFunc(t, p.deliver)
	}
	return mux
}

// Start runs the worker in the background.
func (p *Processor) Start() error {
	return p.server.Start(p.Mux())
}

func (p *Processor) Shutdown() {
	p.server.Shutdown()
}

// deliver reads the envelope common to all payloads and sends it.
func (p *Processor) deliver(_ context.Context, t *asynq.Task) error {
	var payload struct {
		Envelope EmailEnvelope `json:"envelope"`
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	env := payload.Envelope
	if env.To == "" {
		return fmt.Errorf("%s: empty recipient: %w", t.Type(), asynq.SkipRetry)
	}
	if err := p.mailer.Send(env.To, env.Subject, env.Body); err != nil {
		p.logger.Error("notification send failed", zap.String("type", t.Type()), zap.Error(err))
		return err
	}
	p.logger.Info("notification sent", zap.String("type", t.Type()), zap.String("to", env.To))
	return nil
}
