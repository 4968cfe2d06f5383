// Package storetest holds the contract suite every catalog store must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Store is what the suite exercises.
type Store interface {
	ports.CatalogStore
	ports.CatalogRestorer
}

// Now is the fixed clock handed to stores under test.
var Now = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

// Fixture returns a small catalog with gaps in the id sequences.
func Fixture() ports.Snapshot {
	death := time.Date(2011, 10, 5, 0, 0, 0, 0, time.UTC)

	return ports.Snapshot{
		Authors: []domain.Author{
			{ID: 1, Name: "Maya Angelou", Profession: "Poet", TotalQuotes: 156, PopularQuotes: []string{"Still I rise."}},
			{ID: 4, Name: "Steve Jobs", Profession: "Entrepreneur", DeathDate: &death, TotalQuotes: 98},
		},
		Topics: []domain.Topic{
			{ID: 1, Name: "Motivational", Color: "bg-red-500", Icon: "🚀", TotalQuotes: 1247, Featured: true},
			{ID: 2, Name: "Success", Color: "bg-yellow-500", Icon: "🏆", TotalQuotes: 892, Featured: true},
		},
		Quotes: []domain.Quote{
			{
				ID: 1, Text: "If you don't like something, change it.", AuthorID: 1, CategoryID: 1,
				Tags: []string{"change", "attitude"}, DateAdded: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Likes: 1247, Shares: 89, Bookmarks: 156,
			},
			{
				ID: 4, Text: "Innovation distinguishes between a leader and a follower.", AuthorID: 4, CategoryID: 2,
				Tags: []string{"innovation"}, DateAdded: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
				Featured: true, Likes: 1456, Shares: 123, Bookmarks: 234,
				BackgroundImageURL: "https://images.example.com/4.jpg",
			},
			{
				ID: 5, Text: "There is no greater agony than bearing an untold story.", AuthorID: 1, CategoryID: 2,
				DateAdded: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Likes: 0,
			},
		},
	}
}

// CatalogStoreSuite runs the store contract. Set NewStore before running.
type CatalogStoreSuite struct {
	suite.Suite

	// NewStore returns an empty store using clock for DateAdded.
	NewStore func(clock func() time.Time) Store

	ctx   context.Context
	store Store
}

// SetupTest gives each test a freshly restored fixture.
func (s *CatalogStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore(func() time.Time { return Now })
	s.Require().NoError(s.store.Restore(s.ctx, Fixture()))
}

func quoteIDs(quotes []domain.Quote) []int64 {
	out := make([]int64, len(quotes))
	for i, q := range quotes {
		out[i] = q.ID
	}

	return out
}

func (s *CatalogStoreSuite) TestListsKeepInsertionOrder() {
	quotes, err := s.store.ListQuotes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{1, 4, 5}, quoteIDs(quotes))
	s.Equal(Fixture().Quotes[1], quotes[1])

	authors, err := s.store.ListAuthors(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(authors, 2)
	s.Equal("Maya Angelou", authors[0].Name)
	s.Equal([]string{"Still I rise."}, authors[0].PopularQuotes)
	s.True(authors[0].Living())
	s.False(authors[1].Living())

	topics, err := s.store.ListTopics(s.ctx)
	s.Require().NoError(err)
	s.Equal(Fixture().Topics, topics)
}

func (s *CatalogStoreSuite) TestRelationshipLookups() {
	byAuthor, err := s.store.QuotesByAuthor(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]int64{1, 5}, quoteIDs(byAuthor))

	byTopic, err := s.store.QuotesByTopic(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]int64{4, 5}, quoteIDs(byTopic))

	none, err := s.store.QuotesByAuthor(s.ctx, 99)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *CatalogStoreSuite) TestGetters() {
	q, err := s.store.GetQuote(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal("Innovation distinguishes between a leader and a follower.", q.Text)

	_, err = s.store.GetQuote(s.ctx, 2)
	s.True(domain.IsNotFound(err))

	_, err = s.store.GetAuthor(s.ctx, 2)
	s.True(domain.IsNotFound(err))

	_, err = s.store.GetTopic(s.ctx, 3)
	s.True(domain.IsNotFound(err))
}

func (s *CatalogStoreSuite) TestRandomQuote() {
	seen := map[int64]bool{}
	for range 50 {
		q, err := s.store.RandomQuote(s.ctx)
		s.Require().NoError(err)
		seen[q.ID] = true
	}

	for id := range seen {
		s.Contains([]int64{1, 4, 5}, id)
	}

	empty := s.NewStore(func() time.Time { return Now })
	_, err := empty.RandomQuote(s.ctx)
	s.True(domain.IsEmptyCollection(err))
}

func (s *CatalogStoreSuite) TestAddQuote() {
	added, err := s.store.AddQuote(s.ctx, domain.QuoteInput{
		Text:       "  Stay hungry, stay foolish. ",
		AuthorID:   4,
		CategoryID: 2,
		Tags:       []string{"risk", "risk"},
		Featured:   true,
	})
	s.Require().NoError(err)

	s.Equal(int64(6), added.ID, "ids continue after the highest restored id")
	s.Equal("Stay hungry, stay foolish.", added.Text)
	s.Equal([]string{"risk"}, added.Tags)
	s.Equal(domain.Day(Now), added.DateAdded)
	s.Zero(added.Likes)

	got, err := s.store.GetQuote(s.ctx, added.ID)
	s.Require().NoError(err)
	s.Equal(added, got)
}

func (s *CatalogStoreSuite) TestAddQuote_InvalidReference() {
	_, err := s.store.AddQuote(s.ctx, domain.QuoteInput{Text: "x", AuthorID: 99, CategoryID: 1})
	s.True(domain.IsInvalidReference(err))

	_, err = s.store.AddQuote(s.ctx, domain.QuoteInput{Text: "x", AuthorID: 1, CategoryID: 99})
	s.True(domain.IsInvalidReference(err))

	quotes, err := s.store.ListQuotes(s.ctx)
	s.Require().NoError(err)
	s.Len(quotes, 3)
}

func (s *CatalogStoreSuite) TestUpdateQuote() {
	updated, err := s.store.UpdateQuote(s.ctx, 1, domain.QuoteInput{
		Text:       "Change your attitude.",
		AuthorID:   4,
		CategoryID: 2,
		Tags:       []string{"attitude"},
	})
	s.Require().NoError(err)

	s.Equal("Change your attitude.", updated.Text)
	s.Equal(int64(4), updated.AuthorID)
	s.Equal(int64(1247), updated.Likes, "counters survive edits")
	s.Equal(Fixture().Quotes[0].DateAdded, updated.DateAdded)

	_, err = s.store.UpdateQuote(s.ctx, 1, domain.QuoteInput{Text: "x", AuthorID: 77, CategoryID: 1})
	s.True(domain.IsInvalidReference(err))
}

func (s *CatalogStoreSuite) TestUpdateQuote_NotFound() {
	_, err := s.store.UpdateQuote(s.ctx, 999, domain.QuoteInput{Text: "x", AuthorID: 1, CategoryID: 1})
	s.True(domain.IsNotFound(err))
}

func (s *CatalogStoreSuite) TestDeleteQuote() {
	_, _, err := s.store.MutateEngagement(s.ctx, 5, "alice", domain.ToggleLike)
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteQuote(s.ctx, 5))

	quotes, err := s.store.ListQuotes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]int64{1, 4}, quoteIDs(quotes))

	states, err := s.store.SessionEngagement(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(states)

	s.True(domain.IsNotFound(s.store.DeleteQuote(s.ctx, 5)))
}

func (s *CatalogStoreSuite) TestAuthorLifecycle() {
	a, err := s.store.AddAuthor(s.ctx, domain.AuthorInput{Name: "Albert Einstein", Profession: "Physicist"})
	s.Require().NoError(err)
	s.Equal(int64(5), a.ID)

	a, err = s.store.UpdateAuthor(s.ctx, a.ID, domain.AuthorInput{Name: "Albert Einstein", Profession: "Theoretical Physicist"})
	s.Require().NoError(err)
	s.Equal("Theoretical Physicist", a.Profession)

	s.Require().NoError(s.store.DeleteAuthor(s.ctx, a.ID))
	s.True(domain.IsNotFound(s.store.DeleteAuthor(s.ctx, a.ID)))

	_, err = s.store.UpdateAuthor(s.ctx, 42, domain.AuthorInput{Name: "x"})
	s.True(domain.IsNotFound(err))
}

func (s *CatalogStoreSuite) TestDeleteReferencedAuthorConflicts() {
	err := s.store.DeleteAuthor(s.ctx, 1)
	s.True(domain.IsConflict(err))

	_, err = s.store.GetAuthor(s.ctx, 1)
	s.NoError(err)
}

func (s *CatalogStoreSuite) TestTopicLifecycle() {
	t, err := s.store.AddTopic(s.ctx, domain.TopicInput{Name: "Wisdom", Color: "bg-indigo-500", Icon: "🧠"})
	s.Require().NoError(err)
	s.Equal(int64(3), t.ID)

	t, err = s.store.UpdateTopic(s.ctx, t.ID, domain.TopicInput{Name: "Wisdom", Featured: true})
	s.Require().NoError(err)
	s.True(t.Featured)

	s.True(domain.IsConflict(s.store.DeleteTopic(s.ctx, 2)))
	s.Require().NoError(s.store.DeleteTopic(s.ctx, t.ID))
	s.True(domain.IsNotFound(s.store.DeleteTopic(s.ctx, t.ID)))
}

func (s *CatalogStoreSuite) TestRestore() {
	s.True(domain.IsConflict(s.store.Restore(s.ctx, Fixture())))

	bad := Fixture()
	bad.Quotes[0].AuthorID = 99

	empty := s.NewStore(func() time.Time { return Now })
	s.True(domain.IsInvalidReference(empty.Restore(s.ctx, bad)))

	quotes, err := empty.ListQuotes(s.ctx)
	s.Require().NoError(err)
	s.Empty(quotes)
}

func (s *CatalogStoreSuite) TestToggleLike_IsSelfInverse() {
	state, q, err := s.store.MutateEngagement(s.ctx, 1, "alice", domain.ToggleLike)
	s.Require().NoError(err)
	s.True(state.Liked)
	s.Equal(int64(1248), q.Likes)

	state, q, err = s.store.MutateEngagement(s.ctx, 1, "alice", domain.ToggleLike)
	s.Require().NoError(err)
	s.False(state.Liked)
	s.Equal(int64(1247), q.Likes)

	stored, err := s.store.GetQuote(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(1247), stored.Likes)
}

func (s *CatalogStoreSuite) TestToggleBookmarkTwiceRestoresState() {
	before, err := s.store.GetQuote(s.ctx, 4)
	s.Require().NoError(err)

	_, _, err = s.store.MutateEngagement(s.ctx, 4, "bob", domain.ToggleBookmark)
	s.Require().NoError(err)
	state, q, err := s.store.MutateEngagement(s.ctx, 4, "bob", domain.ToggleBookmark)
	s.Require().NoError(err)

	s.Equal(domain.EngagementState{}, state)
	s.Equal(before.Bookmarks, q.Bookmarks)

	states, err := s.store.SessionEngagement(s.ctx, "bob")
	s.Require().NoError(err)
	s.Empty(states)
}

func (s *CatalogStoreSuite) TestEngagementIsPerSession() {
	_, _, err := s.store.MutateEngagement(s.ctx, 1, "alice", domain.ToggleLike)
	s.Require().NoError(err)
	_, _, err = s.store.MutateEngagement(s.ctx, 4, "alice", domain.ToggleBookmark)
	s.Require().NoError(err)
	_, q, err := s.store.MutateEngagement(s.ctx, 1, "bob", domain.ToggleLike)
	s.Require().NoError(err)
	s.Equal(int64(1249), q.Likes)

	alice, err := s.store.SessionEngagement(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(map[int64]domain.EngagementState{
		1: {Liked: true},
		4: {Bookmarked: true},
	}, alice)

	carol, err := s.store.SessionEngagement(s.ctx, "carol")
	s.Require().NoError(err)
	s.Empty(carol)
}

func (s *CatalogStoreSuite) TestShareAlwaysCounts() {
	var q domain.Quote
	var err error

	for range 3 {
		_, q, err = s.store.MutateEngagement(s.ctx, 5, "alice", domain.RecordShare)
		s.Require().NoError(err)
	}

	s.Equal(int64(3), q.Shares)
}

func (s *CatalogStoreSuite) TestMutateEngagement_NotFound() {
	_, _, err := s.store.MutateEngagement(s.ctx, 404, "alice", domain.ToggleLike)
	s.True(domain.IsNotFound(err))
}

func (s *CatalogStoreSuite) TestConcurrentTogglesLoseNoUpdates() {
	const sessions = 20

	var wg sync.WaitGroup
	for i := range sessions {
		wg.Go(func() {
			_, _, err := s.store.MutateEngagement(s.ctx, 5, fmt.Sprintf("s-%d", i), domain.ToggleLike)
			s.NoError(err)
		})
	}
	wg.Wait()

	q, err := s.store.GetQuote(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal(int64(sessions), q.Likes)

	// Rapid double toggles from one session end where they started and never dip below zero.
	for range 10 {
		wg.Go(func() {
			_, q, err := s.store.MutateEngagement(s.ctx, 5, "s-0", domain.ToggleLike)
			s.NoError(err)
			s.GreaterOrEqual(q.Likes, int64(0))
		})
	}
	wg.Wait()

	q, err = s.store.GetQuote(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal(int64(sessions), q.Likes)
}
