package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays a fixed message sequence, then blocks until cancel.
type scriptedReader struct {
	// mu guards the script position.
	mu sync.Mutex
	// script is the sequence of messages and errors to replay.
	script []scriptStep
	// closed records Close calls.
	closed bool
}

// scriptStep is one ReadMessage outcome.
type scriptStep struct {
	message kafka.Message
	err     error
}

// ReadMessage pops the next scripted step or blocks until cancellation.
func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()

	if len(r.script) == 0 {
		r.mu.Unlock()
		<-ctx.Done()

		return kafka.Message{}, ctx.Err()
	}

	step := r.script[0]
	r.script = r.script[1:]
	r.mu.Unlock()

	return step.message, step.err
}

// Close records the call.
func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	return nil
}

// TestParseBrokers verifies splitting and trimming of broker lists.
func TestParseBrokers(t *testing.T) {
	t.Parallel()

	require.Nil(t, ParseBrokers(""))
	require.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092 , b:9092"))
}

// TestNewKafkaSource_Validation asserts required parameters.
func TestNewKafkaSource_Validation(t *testing.T) {
	t.Parallel()

	handler := func(context.Context, []byte) {}

	_, err := NewKafkaSource(nil, "orders", "group", handler)
	require.Error(t, err)

	_, err = NewKafkaSource([]string{"localhost:9092"}, "", "group", handler)
	require.Error(t, err)

	_, err = NewKafkaSource([]string{"localhost:9092"}, "orders", "", handler)
	require.Error(t, err)
}

// TestSource_RunDeliversAndStops verifies payload delivery, cancellation
// handling and reader closing.
func TestSource_RunDeliversAndStops(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		script: []scriptStep{
			{message: kafka.Message{Value: []byte("one")}},
			{message: kafka.Message{Value: []byte("two")}},
		},
	}

	var (
		mu       sync.Mutex
		received [][]byte
	)

	source := &Source{
		reader: reader,
		handler: func(_ context.Context, payload []byte) {
			mu.Lock()
			defer mu.Unlock()

			received = append(received, payload)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- source.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancellation")
	}

	require.True(t, reader.closed)
}

// TestSource_RunStopsOnGroupClosed asserts a closed consumer group ends the
// loop cleanly.
func TestSource_RunStopsOnGroupClosed(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		script: []scriptStep{
			{err: kafka.ErrGroupClosed},
		},
	}

	source := &Source{
		reader:  reader,
		handler: func(context.Context, []byte) {},
	}

	require.NoError(t, source.Run(context.Background()))
}

// TestSource_RunSurvivesReadErrors asserts transient errors do not kill the
// loop.
func TestSource_RunSurvivesReadErrors(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		script: []scriptStep{
			{err: errors.New("broker hiccup")},
			{message: kafka.Message{Value: []byte("after")}},
		},
	}

	var (
		mu       sync.Mutex
		received int
	)

	source := &Source{
		reader: reader,
		handler: func(context.Context, []byte) {
			mu.Lock()
			defer mu.Unlock()

			received++
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = source.Run(ctx) //nolint:errcheck // Stopped via cancel below.
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return received == 1
	}, 5*time.Second, 10*time.Millisecond)
}
