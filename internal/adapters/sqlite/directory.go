package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

const authorColumns = `id, name, profession, bio, birth_date, death_date, image_url, total_quotes, popular_quotes`

const topicColumns = `id, name, description, color, icon, total_quotes, featured`

// ListAuthors implements ports.AuthorStore.
func (s *Store) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT "+authorColumns+" FROM authors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	authors := []domain.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("listing authors: %w", err)
		}

		authors = append(authors, a)
	}

	return authors, rows.Err()
}

// GetAuthor implements ports.AuthorStore.
func (s *Store) GetAuthor(ctx context.Context, id int64) (domain.Author, error) {
	return getAuthor(ctx, s.conn, id)
}

func getAuthor(ctx context.Context, q queryer, id int64) (domain.Author, error) {
	a, err := scanAuthor(q.QueryRowContext(ctx, "SELECT "+authorColumns+" FROM authors WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Author{}, domain.NewNotFoundError("author", domain.FormatID(id))
	}

	if err != nil {
		return domain.Author{}, fmt.Errorf("getting author: %w", err)
	}

	return a, nil
}

// AddAuthor implements ports.AuthorStore.
func (s *Store) AddAuthor(ctx context.Context, in domain.AuthorInput) (domain.Author, error) {
	a := domain.NewAuthor(0, in)

	popular, err := json.Marshal(nonNil(a.PopularQuotes))
	if err != nil {
		return domain.Author{}, fmt.Errorf("encoding popular quotes: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, `INSERT INTO authors
		(name, profession, bio, birth_date, death_date, image_url, total_quotes, popular_quotes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Profession, a.Bio, formatDate(a.BirthDate), deathDate(a.DeathDate), a.ImageURL,
		a.TotalQuotes, string(popular))
	if err != nil {
		return domain.Author{}, fmt.Errorf("inserting author: %w", err)
	}

	if a.ID, err = res.LastInsertId(); err != nil {
		return domain.Author{}, fmt.Errorf("reading author id: %w", err)
	}

	return a, nil
}

// UpdateAuthor implements ports.AuthorStore.
func (s *Store) UpdateAuthor(ctx context.Context, id int64, in domain.AuthorInput) (domain.Author, error) {
	var a domain.Author

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getAuthor(ctx, tx, id)
		if err != nil {
			return err
		}

		a = current.Apply(in)

		popular, err := json.Marshal(nonNil(a.PopularQuotes))
		if err != nil {
			return fmt.Errorf("encoding popular quotes: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE authors SET
			name = ?, profession = ?, bio = ?, birth_date = ?, death_date = ?, image_url = ?,
			total_quotes = ?, popular_quotes = ?
			WHERE id = ?`,
			a.Name, a.Profession, a.Bio, formatDate(a.BirthDate), deathDate(a.DeathDate), a.ImageURL,
			a.TotalQuotes, string(popular), id); err != nil {
			return fmt.Errorf("updating author: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Author{}, err
	}

	return a, nil
}

// DeleteAuthor implements ports.AuthorStore.
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	return s.deleteReferenced(ctx, "authors", "author", "author_id", id)
}

// ListTopics implements ports.TopicStore.
func (s *Store) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT "+topicColumns+" FROM topics ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	topics := []domain.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("listing topics: %w", err)
		}

		topics = append(topics, t)
	}

	return topics, rows.Err()
}

// GetTopic implements ports.TopicStore.
func (s *Store) GetTopic(ctx context.Context, id int64) (domain.Topic, error) {
	return getTopic(ctx, s.conn, id)
}

func getTopic(ctx context.Context, q queryer, id int64) (domain.Topic, error) {
	t, err := scanTopic(q.QueryRowContext(ctx, "SELECT "+topicColumns+" FROM topics WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Topic{}, domain.NewNotFoundError("topic", domain.FormatID(id))
	}

	if err != nil {
		return domain.Topic{}, fmt.Errorf("getting topic: %w", err)
	}

	return t, nil
}

// AddTopic implements ports.TopicStore.
func (s *Store) AddTopic(ctx context.Context, in domain.TopicInput) (domain.Topic, error) {
	t := domain.NewTopic(0, in)

	res, err := s.conn.ExecContext(ctx, `INSERT INTO topics
		(name, description, color, icon, total_quotes, featured) VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.Color, t.Icon, t.TotalQuotes, boolInt(t.Featured))
	if err != nil {
		return domain.Topic{}, fmt.Errorf("inserting topic: %w", err)
	}

	if t.ID, err = res.LastInsertId(); err != nil {
		return domain.Topic{}, fmt.Errorf("reading topic id: %w", err)
	}

	return t, nil
}

// UpdateTopic implements ports.TopicStore.
func (s *Store) UpdateTopic(ctx context.Context, id int64, in domain.TopicInput) (domain.Topic, error) {
	var t domain.Topic

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getTopic(ctx, tx, id)
		if err != nil {
			return err
		}

		t = current.Apply(in)

		if _, err := tx.ExecContext(ctx, `UPDATE topics SET
			name = ?, description = ?, color = ?, icon = ?, total_quotes = ?, featured = ?
			WHERE id = ?`,
			t.Name, t.Description, t.Color, t.Icon, t.TotalQuotes, boolInt(t.Featured), id); err != nil {
			return fmt.Errorf("updating topic: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Topic{}, err
	}

	return t, nil
}

// DeleteTopic implements ports.TopicStore.
func (s *Store) DeleteTopic(ctx context.Context, id int64) error {
	return s.deleteReferenced(ctx, "topics", "topic", "category_id", id)
}

// deleteReferenced removes a row from table unless quotes still point at it through column.
func (s *Store) deleteReferenced(ctx context.Context, table, entity, column string, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, table, id)
		if err != nil {
			return err
		}

		if !ok {
			return domain.NewNotFoundError(entity, domain.FormatID(id))
		}

		n, err := count(ctx, tx, "SELECT COUNT(*) FROM quotes WHERE "+column+" = ?", id)
		if err != nil {
			return fmt.Errorf("counting references: %w", err)
		}

		if n > 0 {
			return domain.NewConflictErrorWithDetails(entity, "still referenced by quotes", fmt.Sprintf("%d quotes", n))
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting %s: %w", entity, err)
		}

		return nil
	})
}

func scanAuthor(row scanner) (domain.Author, error) {
	var (
		a       domain.Author
		birth   string
		death   sql.NullString
		popular string
	)

	if err := row.Scan(&a.ID, &a.Name, &a.Profession, &a.Bio, &birth, &death,
		&a.ImageURL, &a.TotalQuotes, &popular); err != nil {
		return domain.Author{}, err
	}

	var err error
	if a.BirthDate, err = parseDate(birth); err != nil {
		return domain.Author{}, fmt.Errorf("author %d birth_date: %w", a.ID, err)
	}

	if death.Valid {
		d, err := parseDate(death.String)
		if err != nil {
			return domain.Author{}, fmt.Errorf("author %d death_date: %w", a.ID, err)
		}

		a.DeathDate = &d
	}

	if err := json.Unmarshal([]byte(popular), &a.PopularQuotes); err != nil {
		return domain.Author{}, fmt.Errorf("author %d popular_quotes: %w", a.ID, err)
	}

	if len(a.PopularQuotes) == 0 {
		a.PopularQuotes = nil
	}

	return a, nil
}

func scanTopic(row scanner) (domain.Topic, error) {
	var (
		t        domain.Topic
		featured int
	)

	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Color, &t.Icon, &t.TotalQuotes, &featured); err != nil {
		return domain.Topic{}, err
	}

	t.Featured = featured != 0

	return t, nil
}

func deathDate(d *time.Time) any {
	if d == nil {
		return nil
	}

	return formatDate(*d)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
