package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// fakeReader replays msgs and then blocks until the context is done.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

// failingReader fails every fetch.
type failingReader struct {
	mu      sync.Mutex
	fetches int
}

func (r *failingReader) FetchMessage(context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	return kafka.Message{}, errors.New("broker unreachable")
}

func (r *failingReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }
func (r *failingReader) Close() error                                          { return nil }

func (r *failingReader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

// fakeIngester records ingested companies.
type fakeIngester struct {
	seen map[string]bool
	err  error
}

func (f *fakeIngester) Ingest(_ context.Context, c models.Company) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen[c.ID] {
		return false, nil
	}
	f.seen[c.ID] = true
	return true, nil
}

func TestConsumer_Run(t *testing.T) {
	remote := companyEvent("retail-1")
	remote.Source = "replica-b"
	own := companyEvent("retail-2")
	own.Source = "replica-a"
	served := NewEvent(RecommendationsServed)
	served.Stats = &models.RecommendationStats{TopMatch: 90}

	reader := &fakeReader{msgs: []kafka.Message{
		{Value: mustMarshal(t, remote)},
		{Value: []byte("{not json")},
		{Value: mustMarshal(t, own)},
		{Value: mustMarshal(t, served)},
	}}
	core, recorded := observer.New(zap.ErrorLevel)
	consumer := &Consumer{reader: reader, logger: zap.New(core)}

	ingester := &fakeIngester{seen: map[string]bool{}}
	consumer.RegisterHandler(CatalogHandler(ingester, "replica-a", zaptest.NewLogger(t)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return reader.committedCount() == 4 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, map[string]bool{"retail-1": true}, ingester.seen, "own events are skipped")
	assert.Equal(t, 1, recorded.FilterMessage("Failed to parse event").Len())

	consumer.Close()
	assert.True(t, reader.closed)
}

func TestConsumer_HandlerErrorIsNotCommitted(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{{Value: mustMarshal(t, NewEvent(CompanyCreated))}}}
	core, recorded := observer.New(zap.ErrorLevel)
	consumer := &Consumer{reader: reader, logger: zap.New(core)}
	consumer.RegisterHandler(func(context.Context, Event) error { return errors.New("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return recorded.FilterMessage("Failed to handle event").Len() == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 0, reader.committedCount())
}

func TestCatalogHandler(t *testing.T) {
	ingester := &fakeIngester{seen: map[string]bool{}}
	handle := CatalogHandler(ingester, "replica-a", zaptest.NewLogger(t))

	missing := NewEvent(CompanyCreated)
	missing.Source = "replica-b"
	assert.Error(t, handle(context.Background(), missing), "company_created without a company")

	ev := companyEvent("mining-1")
	ev.Source = "replica-b"
	require.NoError(t, handle(context.Background(), ev))
	require.NoError(t, handle(context.Background(), ev), "duplicates are not errors")
	assert.True(t, ingester.seen["mining-1"])

	failing := CatalogHandler(&fakeIngester{err: errors.New("disk full")}, "replica-a", zaptest.NewLogger(t))
	assert.EqualError(t, failing(context.Background(), ev), "disk full")
}

func TestConsumer_FetchErrorsBackOff(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	reader := &failingReader{}
	consumer := &Consumer{reader: reader, logger: zap.New(core), retry: backoff.NewConstantBackOff(time.Hour)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return recorded.FilterMessage("Failed to fetch message").Len() == 1
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, reader.count(), "fetch is not retried before the backoff elapses")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop while waiting to retry")
	}
}
