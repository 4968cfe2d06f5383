package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

const quoteColumns = `q.id, q.text, q.author_id, q.category_id, q.background_image_url,
	q.date_added, q.featured, q.likes, q.shares, q.bookmarks`

// ListQuotes implements ports.QuoteReader.
func (s *Store) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	quotes, err := selectQuotes(ctx, s.conn, "")
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	return quotes, nil
}

// QuotesByAuthor implements ports.QuoteReader.
func (s *Store) QuotesByAuthor(ctx context.Context, authorID int64) ([]domain.Quote, error) {
	quotes, err := selectQuotes(ctx, s.conn, "q.author_id = ?", authorID)
	if err != nil {
		return nil, fmt.Errorf("listing quotes by author: %w", err)
	}

	return quotes, nil
}

// QuotesByTopic implements ports.QuoteReader.
func (s *Store) QuotesByTopic(ctx context.Context, topicID int64) ([]domain.Quote, error) {
	quotes, err := selectQuotes(ctx, s.conn, "q.category_id = ?", topicID)
	if err != nil {
		return nil, fmt.Errorf("listing quotes by topic: %w", err)
	}

	return quotes, nil
}

// GetQuote implements ports.QuoteReader.
func (s *Store) GetQuote(ctx context.Context, id int64) (domain.Quote, error) {
	return getQuote(ctx, s.conn, id)
}

// RandomQuote implements ports.QuoteReader.
func (s *Store) RandomQuote(ctx context.Context) (domain.Quote, error) {
	var q domain.Quote

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := count(ctx, tx, "SELECT COUNT(*) FROM quotes")
		if err != nil {
			return fmt.Errorf("counting quotes: %w", err)
		}

		if n == 0 {
			return domain.NewEmptyCollectionError("quotes")
		}

		var id int64
		if err := tx.QueryRowContext(ctx,
			"SELECT id FROM quotes ORDER BY id LIMIT 1 OFFSET ?", s.intN(n)).Scan(&id); err != nil {
			return fmt.Errorf("picking quote: %w", err)
		}

		q, err = getQuote(ctx, tx, id)

		return err
	})

	return q, err
}

// AddQuote implements ports.QuoteWriter.
func (s *Store) AddQuote(ctx context.Context, in domain.QuoteInput) (domain.Quote, error) {
	var q domain.Quote

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkRefs(ctx, tx, in); err != nil {
			return err
		}

		q = domain.NewQuote(0, in, s.now())

		res, err := tx.ExecContext(ctx, `INSERT INTO quotes
			(text, author_id, category_id, background_image_url, date_added, featured)
			VALUES (?, ?, ?, ?, ?, ?)`,
			q.Text, q.AuthorID, q.CategoryID, q.BackgroundImageURL, formatDate(q.DateAdded), boolInt(q.Featured))
		if err != nil {
			return fmt.Errorf("inserting quote: %w", err)
		}

		if q.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading quote id: %w", err)
		}

		return replaceTags(ctx, tx, q.ID, q.Tags)
	})
	if err != nil {
		return domain.Quote{}, err
	}

	return q, nil
}

// UpdateQuote implements ports.QuoteWriter.
func (s *Store) UpdateQuote(ctx context.Context, id int64, in domain.QuoteInput) (domain.Quote, error) {
	var q domain.Quote

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getQuote(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := checkRefs(ctx, tx, in); err != nil {
			return err
		}

		q = current.Apply(in)

		if _, err := tx.ExecContext(ctx, `UPDATE quotes SET
			text = ?, author_id = ?, category_id = ?, background_image_url = ?, featured = ?
			WHERE id = ?`,
			q.Text, q.AuthorID, q.CategoryID, q.BackgroundImageURL, boolInt(q.Featured), id); err != nil {
			return fmt.Errorf("updating quote: %w", err)
		}

		return replaceTags(ctx, tx, id, q.Tags)
	})
	if err != nil {
		return domain.Quote{}, err
	}

	return q, nil
}

// DeleteQuote implements ports.QuoteWriter. Tags and engagement cascade.
func (s *Store) DeleteQuote(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM quotes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	if n == 0 {
		return domain.NewNotFoundError("quote", domain.FormatID(id))
	}

	return nil
}

func checkRefs(ctx context.Context, q queryer, in domain.QuoteInput) error {
	ok, err := exists(ctx, q, "authors", in.AuthorID)
	if err != nil {
		return err
	}

	if !ok {
		return domain.NewInvalidReferenceError("authorId", "author", domain.FormatID(in.AuthorID))
	}

	ok, err = exists(ctx, q, "topics", in.CategoryID)
	if err != nil {
		return err
	}

	if !ok {
		return domain.NewInvalidReferenceError("categoryId", "topic", domain.FormatID(in.CategoryID))
	}

	return nil
}

func getQuote(ctx context.Context, q queryer, id int64) (domain.Quote, error) {
	quotes, err := selectQuotes(ctx, q, "q.id = ?", id)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("getting quote: %w", err)
	}

	if len(quotes) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote", domain.FormatID(id))
	}

	return quotes[0], nil
}

// selectQuotes loads quotes matching where (empty for all) with their tags, in id order.
func selectQuotes(ctx context.Context, q queryer, where string, args ...any) ([]domain.Quote, error) {
	clause := ""
	if where != "" {
		clause = " WHERE " + where
	}

	rows, err := q.QueryContext(ctx, "SELECT "+quoteColumns+" FROM quotes q"+clause+" ORDER BY q.id", args...)
	if err != nil {
		return nil, err
	}

	quotes := []domain.Quote{}
	index := map[int64]int{}

	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}

		index[quote.ID] = len(quotes)
		quotes = append(quotes, quote)
	}

	if err := rows.Close(); err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		return quotes, nil
	}

	tagRows, err := q.QueryContext(ctx,
		"SELECT t.quote_id, t.tag FROM quote_tags t JOIN quotes q ON q.id = t.quote_id"+clause+
			" ORDER BY t.quote_id, t.position", args...)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			quoteID int64
			tag     string
		)

		if err := tagRows.Scan(&quoteID, &tag); err != nil {
			return nil, err
		}

		if i, ok := index[quoteID]; ok {
			quotes[i].Tags = append(quotes[i].Tags, tag)
		}
	}

	return quotes, tagRows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (domain.Quote, error) {
	var (
		q        domain.Quote
		added    string
		featured int
	)

	if err := row.Scan(&q.ID, &q.Text, &q.AuthorID, &q.CategoryID, &q.BackgroundImageURL,
		&added, &featured, &q.Likes, &q.Shares, &q.Bookmarks); err != nil {
		return domain.Quote{}, err
	}

	d, err := parseDate(added)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote %d date_added: %w", q.ID, err)
	}

	q.DateAdded = d
	q.Featured = featured != 0

	return q, nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, quoteID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM quote_tags WHERE quote_id = ?", quoteID); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}

	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO quote_tags (quote_id, position, tag) VALUES (?, ?, ?)", quoteID, i, tag); err != nil {
			return fmt.Errorf("inserting tag: %w", err)
		}
	}

	return nil
}

func insertQuote(ctx context.Context, tx *sql.Tx, q domain.Quote) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO quotes
		(id, text, author_id, category_id, background_image_url, date_added, featured, likes, shares, bookmarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Text, q.AuthorID, q.CategoryID, q.BackgroundImageURL, formatDate(q.DateAdded),
		boolInt(q.Featured), q.Likes, q.Shares, q.Bookmarks); err != nil {
		return fmt.Errorf("restoring quote %d: %w", q.ID, err)
	}

	return replaceTags(ctx, tx, q.ID, q.Tags)
}
