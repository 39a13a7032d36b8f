// Package notify reports generation outcomes to the presentation layer. The
// orchestration core never renders anything itself; it emits one outcome per
// dispatch through a Sink.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Sink receives user-facing outcome messages. Implementations must not
// block the dispatch path.
type Sink interface {
	Success(ctx context.Context, message string)
	Failure(ctx context.Context, message string)
	Info(ctx context.Context, message string)
}

// LogSink writes outcomes to the service log. The HTTP layer additionally
// mirrors them into responses; this sink is what keeps outcomes observable
// when no client is listening.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Success(ctx context.Context, message string) {
	s.logger.Info().Str("outcome", "success").Msg(message)
}

func (s *LogSink) Failure(ctx context.Context, message string) {
	s.logger.Warn().Str("outcome", "failure").Msg(message)
}

func (s *LogSink) Info(ctx context.Context, message string) {
	s.logger.Info().Str("outcome", "info").Msg(message)
}
