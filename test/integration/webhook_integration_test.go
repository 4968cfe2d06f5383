//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/clients"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
)

// receivedEvent mirrors the webhook envelope on the receiving side.
type receivedEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// webhookReceiver is a fake share webhook. It fails the first failures
// deliveries with 503 and records the rest.
type webhookReceiver struct {
	*httptest.Server

	mu       sync.Mutex
	events   []receivedEvent
	headers  []http.Header
	calls    atomic.Int32
	failures atomic.Int32
}

func newWebhookReceiver(t *testing.T, failures int32) *webhookReceiver {
	t.Helper()

	wr := &webhookReceiver{}
	wr.failures.Store(failures)

	wr.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wr.calls.Add(1)

		if wr.failures.Load() > 0 {
			wr.failures.Add(-1)
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var ev receivedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		wr.mu.Lock()
		wr.events = append(wr.events, ev)
		wr.headers = append(wr.headers, r.Header.Clone())
		wr.mu.Unlock()

		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(wr.Close)

	return wr
}

func (wr *webhookReceiver) received() []receivedEvent {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	return append([]receivedEvent(nil), wr.events...)
}

// testWebhookConfig returns a client config with fast retries for integration testing.
func testWebhookConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "share-webhook",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   2,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger,
	}
}

func newWebhookPublisher(t *testing.T, cfg *clients.Config) *acl.WebhookPublisher {
	t.Helper()

	client, err := clients.New(cfg)
	require.NoError(t, err)

	return acl.NewWebhookPublisher(acl.WebhookPublisherConfig{
		Client: client,
		Source: "quote-catalog-it",
		Clock:  fixedClock,
		NewID:  func() string { return "evt-1" },
		Logger: discardLogger,
	})
}

// TestShare_DeliversWebhook verifies a share flows from the engagement
// service through the anti-corruption layer to the webhook receiver.
func TestShare_DeliversWebhook(t *testing.T) {
	receiver := newWebhookReceiver(t, 0)
	publisher := newWebhookPublisher(t, testWebhookConfig(receiver.URL))
	store := seededStore(t)

	svc := app.NewEngagementService(app.EngagementServiceConfig{
		Store:     store,
		Publisher: publisher,
		Clock:     fixedClock,
		Logger:    discardLogger,
	})

	ctx := middleware.ContextWithRequestID(context.Background(), "req-share-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-share-1")

	res, err := svc.Share(ctx, "session-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(90), res.Quote.Shares)

	events := receiver.received()
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, domain.EventQuoteShared, ev.Type)
	assert.Equal(t, "quote-catalog-it", ev.Source)

	var data struct {
		QuoteID   string `json:"quoteId"`
		Text      string `json:"text"`
		Shares    int64  `json:"shares"`
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &data))

	assert.Equal(t, "1", data.QuoteID)
	assert.Equal(t, int64(90), data.Shares)
	assert.Equal(t, "session-1", data.SessionID)
	assert.Equal(t, res.Text, data.Text)

	receiver.mu.Lock()
	defer receiver.mu.Unlock()

	assert.Equal(t, "req-share-1", receiver.headers[0].Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-share-1", receiver.headers[0].Get(middleware.HeaderCorrelationID))
}

// TestShare_RetriesTransientFailures verifies the client retries 503s from
// the webhook and the event still arrives once.
func TestShare_RetriesTransientFailures(t *testing.T) {
	receiver := newWebhookReceiver(t, 2)
	publisher := newWebhookPublisher(t, testWebhookConfig(receiver.URL))

	err := publisher.Publish(context.Background(), domain.QuoteShared{QuoteID: 2, Text: "t", Shares: 1})

	require.NoError(t, err)
	assert.Equal(t, int32(3), receiver.calls.Load(), "expected 2 failures + 1 success")
	assert.Len(t, receiver.received(), 1)
}

// TestShare_WebhookDownDoesNotFailShare verifies an unreachable webhook
// opens the breaker, fails readiness and never fails the share itself.
func TestShare_WebhookDownDoesNotFailShare(t *testing.T) {
	receiver := newWebhookReceiver(t, 1000)

	cfg := testWebhookConfig(receiver.URL)
	cfg.Retry.MaxAttempts = 1

	publisher := newWebhookPublisher(t, cfg)
	store := seededStore(t)

	svc := app.NewEngagementService(app.EngagementServiceConfig{
		Store:     store,
		Publisher: publisher,
		Logger:    discardLogger,
	})

	ctx := context.Background()

	for i := range 3 {
		res, err := svc.Share(ctx, "session-down", 3)
		require.NoError(t, err, "share %d", i)
		assert.Equal(t, int64(168+i), res.Quote.Shares)
	}

	assert.Equal(t, int32(2), receiver.calls.Load(), "breaker should block the third delivery")

	err := publisher.Check(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

// TestShare_CircuitRecovers verifies the breaker closes again once the
// webhook recovers.
func TestShare_CircuitRecovers(t *testing.T) {
	receiver := newWebhookReceiver(t, 2)

	cfg := testWebhookConfig(receiver.URL)
	cfg.Retry.MaxAttempts = 1

	client, err := clients.New(cfg)
	require.NoError(t, err)

	publisher := acl.NewWebhookPublisher(acl.WebhookPublisherConfig{Client: client, Logger: discardLogger})
	ctx := context.Background()
	event := domain.CatalogImported{Format: "csv", Imported: 3}

	require.Error(t, publisher.Publish(ctx, event))
	require.Error(t, publisher.Publish(ctx, event))
	assert.Equal(t, gobreaker.StateOpen, client.CircuitState())

	time.Sleep(cfg.Circuit.Timeout + 20*time.Millisecond)

	require.NoError(t, publisher.Publish(ctx, event))
	assert.Equal(t, gobreaker.StateClosed, client.CircuitState())
	require.NoError(t, publisher.Check(ctx))

	events := receiver.received()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCatalogImported, events[0].Type)
	assert.Equal(t, "quote-catalog", events[0].Source)
}

// TestShare_ContextCancellation verifies a cancelled request stops delivery promptly.
func TestShare_ContextCancellation(t *testing.T) {
	started := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	publisher := newWebhookPublisher(t, testWebhookConfig(server.URL))

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-started
		cancel()
	}()

	start := time.Now()
	err := publisher.Publish(ctx, domain.QuoteShared{QuoteID: 1})

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "cancellation should be prompt")
}
