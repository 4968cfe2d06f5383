package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// MutateEngagement implements ports.EngagementStore. The read, transition and
// write share one transaction on the store's single connection.
func (s *Store) MutateEngagement(
	ctx context.Context,
	quoteID int64,
	sessionID string,
	fn domain.EngagementFunc,
) (domain.EngagementState, domain.Quote, error) {
	var (
		state domain.EngagementState
		quote domain.Quote
	)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getQuote(ctx, tx, quoteID)
		if err != nil {
			return err
		}

		prev, err := sessionState(ctx, tx, quoteID, sessionID)
		if err != nil {
			return err
		}

		state, quote = fn(prev, current)
		quote.Likes, quote.Shares, quote.Bookmarks = max(quote.Likes, 0), max(quote.Shares, 0), max(quote.Bookmarks, 0)

		// Only the counters are written back.
		quote.Text, quote.AuthorID, quote.CategoryID = current.Text, current.AuthorID, current.CategoryID

		if _, err := tx.ExecContext(ctx,
			"UPDATE quotes SET likes = ?, shares = ?, bookmarks = ? WHERE id = ?",
			quote.Likes, quote.Shares, quote.Bookmarks, quoteID); err != nil {
			return fmt.Errorf("updating counters: %w", err)
		}

		if state == (domain.EngagementState{}) {
			_, err = tx.ExecContext(ctx,
				"DELETE FROM quote_engagement WHERE quote_id = ? AND session_id = ?", quoteID, sessionID)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO quote_engagement (quote_id, session_id, liked, bookmarked)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (quote_id, session_id) DO UPDATE SET liked = excluded.liked, bookmarked = excluded.bookmarked`,
				quoteID, sessionID, boolInt(state.Liked), boolInt(state.Bookmarked))
		}

		if err != nil {
			return fmt.Errorf("storing engagement: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.EngagementState{}, domain.Quote{}, err
	}

	return state, quote, nil
}

func sessionState(ctx context.Context, q queryer, quoteID int64, sessionID string) (domain.EngagementState, error) {
	var liked, bookmarked int

	err := q.QueryRowContext(ctx,
		"SELECT liked, bookmarked FROM quote_engagement WHERE quote_id = ? AND session_id = ?",
		quoteID, sessionID).Scan(&liked, &bookmarked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EngagementState{}, nil
	}

	if err != nil {
		return domain.EngagementState{}, fmt.Errorf("reading engagement: %w", err)
	}

	return domain.EngagementState{Liked: liked != 0, Bookmarked: bookmarked != 0}, nil
}

// SessionEngagement implements ports.EngagementStore.
func (s *Store) SessionEngagement(ctx context.Context, sessionID string) (map[int64]domain.EngagementState, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT quote_id, liked, bookmarked FROM quote_engagement WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing engagement: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]domain.EngagementState)
	for rows.Next() {
		var (
			quoteID           int64
			liked, bookmarked int
		)

		if err := rows.Scan(&quoteID, &liked, &bookmarked); err != nil {
			return nil, fmt.Errorf("listing engagement: %w", err)
		}

		out[quoteID] = domain.EngagementState{Liked: liked != 0, Bookmarked: bookmarked != 0}
	}

	return out, rows.Err()
}

// Restore implements ports.CatalogRestorer.
func (s *Store) Restore(ctx context.Context, snap ports.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := count(ctx, tx,
			"SELECT (SELECT COUNT(*) FROM quotes) + (SELECT COUNT(*) FROM authors) + (SELECT COUNT(*) FROM topics)")
		if err != nil {
			return fmt.Errorf("checking store is empty: %w", err)
		}

		if n > 0 {
			return domain.NewConflictError("catalog", "store is not empty")
		}

		for _, a := range snap.Authors {
			popular, err := json.Marshal(nonNil(a.PopularQuotes))
			if err != nil {
				return fmt.Errorf("encoding popular quotes: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `INSERT INTO authors
				(id, name, profession, bio, birth_date, death_date, image_url, total_quotes, popular_quotes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, a.Name, a.Profession, a.Bio, formatDate(a.BirthDate), deathDate(a.DeathDate),
				a.ImageURL, a.TotalQuotes, string(popular)); err != nil {
				return fmt.Errorf("restoring author %d: %w", a.ID, err)
			}
		}

		for _, t := range snap.Topics {
			if _, err := tx.ExecContext(ctx, `INSERT INTO topics
				(id, name, description, color, icon, total_quotes, featured) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.Name, t.Description, t.Color, t.Icon, t.TotalQuotes, boolInt(t.Featured)); err != nil {
				return fmt.Errorf("restoring topic %d: %w", t.ID, err)
			}
		}

		for _, q := range snap.Quotes {
			if err := insertQuote(ctx, tx, q); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetDaily implements ports.DailyQuoteStore.
func (s *Store) GetDaily(ctx context.Context, day time.Time) (int64, bool, error) {
	var id int64

	err := s.conn.QueryRowContext(ctx,
		"SELECT quote_id FROM daily_quotes WHERE day = ?", formatDate(domain.Day(day))).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("reading daily quote: %w", err)
	}

	return id, true, nil
}

// PutDaily implements ports.DailyQuoteStore.
func (s *Store) PutDaily(ctx context.Context, day time.Time, quoteID int64) error {
	if _, err := s.conn.ExecContext(ctx, `INSERT INTO daily_quotes (day, quote_id) VALUES (?, ?)
		ON CONFLICT (day) DO UPDATE SET quote_id = excluded.quote_id`,
		formatDate(domain.Day(day)), quoteID); err != nil {
		return fmt.Errorf("storing daily quote: %w", err)
	}

	return nil
}
