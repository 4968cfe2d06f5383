package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer

	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Publish(context.Background(), domain.QuoteShared{QuoteID: 4, Shares: 124})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "domain event", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, domain.EventQuoteShared, entry["event_type"])
	assert.Equal(t, "events.LogPublisher", entry["component"])

	payload, ok := entry["payload"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 4, payload["quoteId"], 0)
}

func TestLogPublisher_WithLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	p := NewLogPublisher(logger).WithLevel(slog.LevelDebug)

	require.NoError(t, p.Publish(context.Background(), domain.CatalogImported{Imported: 1}))

	assert.Empty(t, buf.String(), "debug is below the handler level")
}
