package history

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/samansohani78/private-poker/internal/game"
)

// Recorder persists one completed hand.
type Recorder interface {
	InsertHandResult(ctx context.Context, res *game.HandResult) error
}

// Sink decouples table actors from hand persistence. Record never blocks:
// when the buffer is full the result is dropped with a warning rather than
// stalling gameplay.
type Sink struct {
	recorder Recorder
	log      zerolog.Logger
	ch       chan *game.HandResult
}

func NewSink(recorder Recorder, log zerolog.Logger, buffer int) *Sink {
	if buffer <= 0 {
		buffer = 256
	}
	return &Sink{
		recorder: recorder,
		log:      log,
		ch:       make(chan *game.HandResult, buffer),
	}
}

// Record queues a hand result for persistence.
func (s *Sink) Record(res *game.HandResult) {
	select {
	case s.ch <- res:
	default:
		s.log.Warn().Str("hand_id", res.HandID).Msg("history buffer full, hand dropped")
	}
}

// Run drains the queue until the context is canceled, then flushes what is
// already buffered.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case res := <-s.ch:
			s.persist(ctx, res)
		case <-ctx.Done():
			for {
				select {
				case res := <-s.ch:
					s.persist(context.Background(), res)
				default:
					return ctx.Err()
				}
			}
		}
	}
}

func (s *Sink) persist(ctx context.Context, res *game.HandResult) {
	if err := s.recorder.InsertHandResult(ctx, res); err != nil {
		s.log.Error().Str("hand_id", res.HandID).Err(err).Msg("persist hand failed")
	}
}
