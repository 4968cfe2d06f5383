package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/storetest"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

func TestCatalogStoreContract(t *testing.T) {
	suite.Run(t, &storetest.CatalogStoreSuite{
		NewStore: func(clock func() time.Time) storetest.Store {
			s, err := Open(context.Background(), ":memory:", WithClock(clock))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			return s
		},
	})
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "memory",
			path: ":memory:",
			want: "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name: "file",
			path: "/tmp/catalog.db",
			want: "file:/tmp/catalog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
		{
			name: "file with query",
			path: "catalog.db?mode=rwc",
			want: "file:catalog.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dsn(tt.path))
		})
	}
}

func TestReopenKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Restore(ctx, storetest.Fixture()))

	_, _, err = s.MutateEngagement(ctx, 1, "reader", domain.ToggleLike)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	q, err := s.GetQuote(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1248), q.Likes)
	assert.Equal(t, []string{"change", "attitude"}, q.Tags)

	state, err := s.SessionEngagement(ctx, "reader")
	require.NoError(t, err)
	assert.True(t, state[1].Liked)

	authors, err := s.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, storetest.Fixture().Authors, authors)
}

func TestIDsContinueAfterRestore(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Restore(ctx, storetest.Fixture()))

	q, err := s.AddQuote(ctx, domain.QuoteInput{Text: "Next.", AuthorID: 1, CategoryID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(6), q.ID)

	require.NoError(t, s.DeleteQuote(ctx, 6))

	q, err = s.AddQuote(ctx, domain.QuoteInput{Text: "After delete.", AuthorID: 1, CategoryID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(7), q.ID, "ids are never reused")
}

func TestDailyQuoteStore(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	morning := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 2, 1, 22, 0, 0, 0, time.UTC)

	_, ok, err := s.GetDaily(ctx, morning)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutDaily(ctx, morning, 4))

	id, ok, err := s.GetDaily(ctx, evening)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), id)

	require.NoError(t, s.PutDaily(ctx, evening, 5))

	id, _, err = s.GetDaily(ctx, morning)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}

func TestCheck(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", s.Name())
	require.NoError(t, s.Check(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Check(context.Background()))
}
