package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	appctx "github.com/jsamuelsen/quote-catalog/internal/app/context"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Import record results, used as metric labels.
const (
	ImportResultImported = "imported"
	ImportResultSkipped  = "skipped"
	ImportResultFailed   = "failed"
)

// TransferService imports and exports the catalog in bulk.
type TransferService struct {
	store      ports.CatalogStore
	publisher  ports.EventPublisher
	metrics    Metrics
	maxRecords int
	now        func() time.Time
	logger     *slog.Logger
}

// TransferServiceConfig contains configuration for the transfer service.
type TransferServiceConfig struct {
	Store ports.CatalogStore

	// Publisher receives CatalogImported events. Optional.
	Publisher ports.EventPublisher

	Metrics    Metrics
	MaxRecords int
	Clock      func() time.Time
	Logger     *slog.Logger
}

// NewTransferService creates a transfer service. It panics without a store.
func NewTransferService(cfg TransferServiceConfig) *TransferService {
	if cfg.Store == nil {
		panic("app: TransferServiceConfig.Store is required")
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	maxRecords := cfg.MaxRecords
	if maxRecords < 1 {
		maxRecords = domain.MaxImportRecords
	}

	logger := defaultLogger(cfg.Logger, "app.TransferService")

	return &TransferService{
		store:      cfg.Store,
		publisher:  cfg.Publisher,
		metrics:    metrics,
		maxRecords: maxRecords,
		now:        defaultClock(cfg.Clock),
		logger:     logger,
	}
}

// ImportOptions controls an import run.
type ImportOptions struct {
	// Format is recorded on the import event.
	Format string

	// DryRun validates every record without writing.
	DryRun bool

	// Atomic undoes every write when any record fails.
	Atomic bool
}

// importRun carries one import through its stages.
type importRun struct {
	batch  domain.ImportBatch
	opts   ImportOptions
	rc     *appctx.RequestContext
	report domain.ImportReport

	// folded name → id; 0 marks a name created by a dry run.
	authors map[string]int64
	topics  map[string]int64
	texts   map[string]struct{}
}

// Import writes a decoded batch. Authors and topics are imported before
// quotes so quotes can reference them by name. Row problems are reported in
// the result and never abort the run.
func (s *TransferService) Import(ctx context.Context, batch domain.ImportBatch, opts ImportOptions) (domain.ImportReport, error) {
	run := &importRun{batch: batch, opts: opts}

	err := RunStages(ctx, s.logger, "catalog.import", run,
		Stage[*importRun]{Name: StageValidate, Run: s.validateImport},
		Stage[*importRun]{Name: StageWrite, Run: s.writeImport},
		Stage[*importRun]{Name: StageVerify, Run: s.verifyImport},
		Stage[*importRun]{Name: StagePublish, Run: s.publishImport},
	)
	if err != nil {
		return domain.ImportReport{}, err
	}

	return run.report, nil
}

func (s *TransferService) validateImport(_ context.Context, run *importRun) error {
	n := run.batch.Len()
	if n == 0 {
		return domain.NewValidationError("file", "contains no records")
	}

	if n > s.maxRecords {
		return domain.NewValidationErrorWithValue("file",
			fmt.Sprintf("must contain at most %d records", s.maxRecords), n)
	}

	return nil
}

func (s *TransferService) writeImport(ctx context.Context, run *importRun) error {
	run.rc = appctx.New(ctx)

	authors, err := appctx.Load[[]domain.Author](run.rc, authorsProvider{s.store})
	if err != nil {
		return fmt.Errorf("loading authors: %w", err)
	}

	topics, err := appctx.Load[[]domain.Topic](run.rc, topicsProvider{s.store})
	if err != nil {
		return fmt.Errorf("loading topics: %w", err)
	}

	quotes, err := s.store.ListQuotes(ctx)
	if err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	run.report = domain.ImportReport{DryRun: run.opts.DryRun, Errors: []domain.RowError{}}
	run.authors = make(map[string]int64)
	run.topics = make(map[string]int64)
	run.texts = make(map[string]struct{}, len(quotes))

	for _, a := range authors {
		run.authors[nameKey(a.Name)] = a.ID
	}

	for _, t := range topics {
		run.topics[nameKey(t.Name)] = t.ID
	}

	for _, q := range quotes {
		run.texts[textKey(q.Text)] = struct{}{}
	}

	for _, rec := range run.batch.Authors {
		if err := s.importAuthor(ctx, run, rec); err != nil {
			return run.abort(ctx, err)
		}
	}

	for _, rec := range run.batch.Topics {
		if err := s.importTopic(ctx, run, rec); err != nil {
			return run.abort(ctx, err)
		}
	}

	for _, rec := range run.batch.Quotes {
		if err := s.importQuote(ctx, run, rec); err != nil {
			return run.abort(ctx, err)
		}
	}

	return nil
}

func (s *TransferService) verifyImport(ctx context.Context, run *importRun) error {
	r := &run.report
	if total := r.Imported + r.Skipped + r.Failed; total != run.batch.Len() {
		return fmt.Errorf("import accounted for %d of %d records", total, run.batch.Len())
	}

	if !run.opts.Atomic || run.opts.DryRun || r.Failed == 0 || r.Imported == 0 {
		return nil
	}

	if err := run.rc.Rollback(ctx); err != nil {
		return fmt.Errorf("rolling back import: %w", err)
	}

	componentLogger(ctx, s.logger, "Import").WarnContext(ctx, "atomic import rolled back",
		slog.Int("undone", r.Imported),
		slog.Int("failed", r.Failed),
	)

	r.Skipped += r.Imported
	r.Imported = 0
	r.RolledBack = true

	return nil
}

func (s *TransferService) publishImport(ctx context.Context, run *importRun) error {
	r := run.report

	s.metrics.RecordImport(ImportResultImported, r.Imported)
	s.metrics.RecordImport(ImportResultSkipped, r.Skipped)
	s.metrics.RecordImport(ImportResultFailed, r.Failed)

	if run.opts.DryRun || r.Imported == 0 || s.publisher == nil {
		return nil
	}

	event := domain.CatalogImported{
		Format:     run.opts.Format,
		Imported:   r.Imported,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		OccurredAt: s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		componentLogger(ctx, s.logger, "Import").WarnContext(ctx, "publishing import event failed",
			slog.Any("error", err),
		)
	}

	return nil
}

// abort undoes what the run wrote before a store failure stopped it.
func (run *importRun) abort(ctx context.Context, cause error) error {
	if err := run.rc.Rollback(ctx); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

func (run *importRun) fail(kind domain.RecordKind, row int, reason string) {
	run.report.Failed++
	run.report.Errors = append(run.report.Errors, domain.RowError{Kind: kind, Row: row, Reason: reason})
}

func (run *importRun) skip(kind domain.RecordKind, row int, reason string) {
	run.report.Skipped++

	if reason != "" {
		run.report.Errors = append(run.report.Errors, domain.RowError{Kind: kind, Row: row, Reason: reason})
	}
}

// apply stages action on a dry run and executes it otherwise. Domain errors
// fail the row; anything else is returned and aborts the import.
func (run *importRun) apply(ctx context.Context, kind domain.RecordKind, row int, action appctx.Action) (bool, error) {
	if run.report.DryRun {
		return true, run.rc.Stage(action)
	}

	err := run.rc.Do(ctx, action)
	if err == nil {
		return true, nil
	}

	if reason, ok := rowReason(err); ok {
		run.fail(kind, row, reason)
		return false, nil
	}

	return false, err
}

func (s *TransferService) importAuthor(ctx context.Context, run *importRun, rec domain.AuthorRecord) error {
	key := nameKey(rec.Name)
	if key == "" {
		run.fail(domain.RecordAuthor, rec.Row, "Missing author name")
		return nil
	}

	if _, exists := run.authors[key]; exists {
		run.skip(domain.RecordAuthor, rec.Row, "")
		return nil
	}

	in := domain.AuthorInput{
		Name:       rec.Name,
		Profession: rec.Profession,
		Bio:        rec.Bio,
		ImageURL:   rec.Image,
	}

	birth, err := domain.ParseDate(rec.Birth)
	if err != nil {
		run.fail(domain.RecordAuthor, rec.Row, fmt.Sprintf("Invalid birth date %q", rec.Birth))
		return nil
	}

	in.BirthDate = birth

	if strings.TrimSpace(rec.Death) != "" {
		death, err := domain.ParseDate(rec.Death)
		if err != nil {
			run.fail(domain.RecordAuthor, rec.Row, fmt.Sprintf("Invalid death date %q", rec.Death))
			return nil
		}

		in.DeathDate = &death
	}

	if err := in.Validate(); err != nil {
		reason, _ := rowReason(err)
		run.fail(domain.RecordAuthor, rec.Row, reason)

		return nil
	}

	action := &createAuthor{store: s.store, in: in}

	ok, err := run.apply(ctx, domain.RecordAuthor, rec.Row, action)
	if ok {
		run.authors[key] = action.created.ID
		run.report.Imported++
	}

	return err
}

func (s *TransferService) importTopic(ctx context.Context, run *importRun, rec domain.TopicRecord) error {
	key := nameKey(rec.Name)
	if key == "" {
		run.fail(domain.RecordTopic, rec.Row, "Missing topic name")
		return nil
	}

	if _, exists := run.topics[key]; exists {
		run.skip(domain.RecordTopic, rec.Row, "")
		return nil
	}

	in := domain.TopicInput{
		Name:        rec.Name,
		Description: rec.Description,
		Color:       rec.Color,
		Icon:        rec.Icon,
	}

	action := &createTopic{store: s.store, in: in}

	ok, err := run.apply(ctx, domain.RecordTopic, rec.Row, action)
	if ok {
		run.topics[key] = action.created.ID
		run.report.Imported++
	}

	return err
}

func (s *TransferService) importQuote(ctx context.Context, run *importRun, rec domain.QuoteRecord) error {
	if reason := quoteRecordProblem(rec); reason != "" {
		run.fail(domain.RecordQuote, rec.Row, reason)
		return nil
	}

	authorID, ok := run.authors[nameKey(rec.Author)]
	if !ok {
		run.fail(domain.RecordQuote, rec.Row, fmt.Sprintf("Unknown author %q", strings.TrimSpace(rec.Author)))
		return nil
	}

	topicID, ok := run.topics[nameKey(rec.Category)]
	if !ok {
		run.fail(domain.RecordQuote, rec.Row, fmt.Sprintf("Invalid category %q", strings.TrimSpace(rec.Category)))
		return nil
	}

	key := textKey(rec.Text)
	if _, dup := run.texts[key]; dup {
		run.skip(domain.RecordQuote, rec.Row, "Duplicate quote detected")
		return nil
	}

	in := domain.QuoteInput{
		Text:               rec.Text,
		AuthorID:           authorID,
		CategoryID:         topicID,
		Tags:               rec.Tags,
		BackgroundImageURL: rec.BackgroundImage,
		Featured:           rec.Featured,
	}

	// Authors and topics staged by a dry run have no id yet.
	check := in
	check.AuthorID, check.CategoryID = max(authorID, 1), max(topicID, 1)

	if err := check.Validate(); err != nil {
		reason, _ := rowReason(err)
		run.fail(domain.RecordQuote, rec.Row, reason)

		return nil
	}

	imported, err := run.apply(ctx, domain.RecordQuote, rec.Row, &createQuote{store: s.store, in: in})
	if imported {
		run.texts[key] = struct{}{}
		run.report.Imported++
	}

	return err
}

// quoteRecordProblem reports content problems that need no store lookup.
func quoteRecordProblem(rec domain.QuoteRecord) string {
	switch {
	case rec.Problem != "":
		return rec.Problem
	case strings.TrimSpace(rec.Text) == "":
		return "Missing quote text"
	case strings.TrimSpace(rec.Author) == "":
		return "Missing author information"
	case strings.TrimSpace(rec.Category) == "":
		return "Missing category information"
	case utf8.RuneCountInString(strings.TrimSpace(rec.Text)) > domain.MaxQuoteTextLength:
		return "Text too long"
	case domain.ValidateImageURL("backgroundImage", rec.BackgroundImage) != nil:
		return "Invalid background image URL"
	default:
		return ""
	}
}

// rowReason turns a domain error into a row report line.
func rowReason(err error) (string, bool) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		reference  *domain.InvalidReferenceError
	)

	switch {
	case errors.As(err, &validation):
		return fmt.Sprintf("Invalid %s: %s", validation.Field, validation.Message), true
	case errors.As(err, &conflict):
		return "Conflict: " + conflict.Reason, true
	case errors.As(err, &reference):
		return fmt.Sprintf("Unknown %s %s", reference.Entity, reference.ID), true
	default:
		return err.Error(), false
	}
}

func nameKey(name string) string {
	return textKey(name)
}

// Export returns the whole catalog with quote names resolved.
func (s *TransferService) Export(ctx context.Context) (domain.ExportData, error) {
	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return domain.ExportData{}, fmt.Errorf("loading catalog: %w", err)
	}

	componentLogger(ctx, s.logger, "Export").InfoContext(ctx, "catalog exported",
		slog.Int("quotes", len(snap.quotes)),
		slog.Int("authors", len(snap.authors)),
		slog.Int("topics", len(snap.topics)),
	)

	return domain.ExportData{
		Quotes:  snap.views(),
		Authors: snap.authors,
		Topics:  snap.topics,
	}, nil
}
