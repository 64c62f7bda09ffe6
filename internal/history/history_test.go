package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/samansohani78/private-poker/internal/game"
)

type fakeRecorder struct {
	mu      sync.Mutex
	results []*game.HandResult
}

func (f *fakeRecorder) InsertHandResult(_ context.Context, res *game.HandResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

func TestSinkPersistsRecordedHands(t *testing.T) {
	rec := &fakeRecorder{}
	sink := NewSink(rec, zerolog.Nop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sink.Run(ctx)
	}()

	sink.Record(&game.HandResult{HandID: "h1"})
	sink.Record(&game.HandResult{HandID: "h2"})

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestSinkFlushesBufferOnShutdown(t *testing.T) {
	rec := &fakeRecorder{}
	sink := NewSink(rec, zerolog.Nop(), 8)

	// Queue before the worker starts, then cancel immediately: everything
	// buffered must still be written.
	sink.Record(&game.HandResult{HandID: "h1"})
	sink.Record(&game.HandResult{HandID: "h2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sink.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, rec.count())
}

func TestSinkDropsWhenFull(t *testing.T) {
	rec := &fakeRecorder{}
	sink := NewSink(rec, zerolog.Nop(), 1)

	sink.Record(&game.HandResult{HandID: "h1"})
	sink.Record(&game.HandResult{HandID: "h2"}) // dropped, buffer of one

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = sink.Run(ctx)
	require.Equal(t, 1, rec.count())
}
