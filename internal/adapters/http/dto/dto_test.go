package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testTraceID = trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}

func newTestContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	return c, w
}

func withTrace(req *http.Request) *http.Request {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    testTraceID,
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})

	return req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeEmptyCollection, http.StatusNotFound},
		{ErrorCodeInvalidReference, http.StatusUnprocessableEntity},
		{ErrorCodeInvalidSortKey, http.StatusBadRequest},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "not found",
			err:         domain.NewNotFoundError("quote", "42"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: "quote",
		},
		{
			name:        "empty collection",
			err:         domain.NewEmptyCollectionError("quotes"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeEmptyCollection,
			wantMessage: "no quotes available",
		},
		{
			name:        "invalid reference",
			err:         fmt.Errorf("adding quote: %w", domain.NewInvalidReferenceError("authorId", "author", "9")),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    ErrorCodeInvalidReference,
			wantMessage: "unknown author",
		},
		{
			name:        "invalid sort key",
			err:         domain.NewInvalidSortKeyError("oldest", catalog.SortKeys()...),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeInvalidSortKey,
			wantMessage: "relevance, popular",
		},
		{
			name:        "conflict",
			err:         domain.NewConflictError("quote", "duplicate text"),
			wantStatus:  http.StatusConflict,
			wantCode:    ErrorCodeConflict,
			wantMessage: "duplicate text",
		},
		{
			name:        "validation carries field details",
			err:         domain.NewValidationError("text", "is required"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "text",
			wantDetails: map[string]string{"text": "is required"},
		},
		{
			name:        "forbidden",
			err:         domain.NewForbiddenError("reroll", "admins only"),
			wantStatus:  http.StatusForbidden,
			wantCode:    ErrorCodeForbidden,
			wantMessage: "reroll",
		},
		{
			name:        "unavailable",
			err:         domain.NewUnavailableError("sqlite", "database is locked"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "sqlite",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("listing quotes: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusGatewayTimeout,
			wantCode:    ErrorCodeTimeout,
			wantMessage: "timeout",
		},
		{
			name:        "unknown errors are hidden",
			err:         errors.New("pq: relation does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMessage)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}

	t.Run("nil error", func(t *testing.T) {
		status, resp := MapDomainError(nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, resp)
	})
}

func TestTraceID(t *testing.T) {
	c, _ := newTestContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, TraceID(c))

	c, _ = newTestContext(t, withTrace(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, testTraceID.String(), TraceID(c))
}

func TestHandleError(t *testing.T) {
	c, w := newTestContext(t, withTrace(httptest.NewRequest(http.MethodGet, "/quotes/9", nil)))

	HandleError(c, domain.NewNotFoundError("quote", "9"))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, testTraceID.String(), resp.TraceID)
}

func TestRespondWithBindingError(t *testing.T) {
	t.Run("validation failures list fields", func(t *testing.T) {
		c, w := newTestContext(t, httptest.NewRequest(http.MethodPost, "/", nil))

		RespondWithBindingError(c, Validate(&QuoteRequest{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "text")
		assert.Contains(t, resp.Error.Details, "authorId")
	})

	t.Run("binding failures are bad requests", func(t *testing.T) {
		c, w := newTestContext(t, httptest.NewRequest(http.MethodPost, "/", nil))

		RespondWithBindingError(c, ErrBinding)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrorCodeBadRequest, resp.Error.Code)
	})
}

func TestAbortWithErrorCode(t *testing.T) {
	c, w := newTestContext(t, httptest.NewRequest(http.MethodGet, "/", nil))

	AbortWithErrorCode(c, ErrorCodeUnauthorized, "authentication required")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewPageResponse(t *testing.T) {
	page := catalog.Paginate([]int{1, 2, 3, 4, 5}, 2, 3)

	got := NewPageResponse(page, func(n int) string { return strings.Repeat("x", n) })

	assert.Equal(t, []string{"xxxxx"}, got.Items)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 2, got.PageSize)
	assert.Equal(t, 5, got.TotalItems)
	assert.Equal(t, 3, got.TotalPages)

	empty := NewPageResponse(catalog.Paginate([]int(nil), 12, 1), func(n int) int { return n })
	body, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"page":1,"pageSize":12,"totalItems":0,"totalPages":0}`, string(body))
}

func TestBindQueryAndValidate_QuoteSearch(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    catalog.Criteria
		wantErr error
	}{
		{
			name:  "all filters",
			query: "?q=+life+&author=3&category=2&filter=popular&sort=recent&page=2&pageSize=6",
			want:  catalog.Criteria{Query: "life", AuthorID: 3, CategoryID: 2, OnlyPopular: true},
		},
		{
			name:  "empty query",
			query: "",
			want:  catalog.Criteria{},
		},
		{
			name:    "unknown filter",
			query:   "?filter=trending",
			wantErr: ErrValidation,
		},
		{
			name:    "page size out of range",
			query:   "?pageSize=500",
			wantErr: ErrValidation,
		},
		{
			name:    "non-numeric author",
			query:   "?author=steve",
			wantErr: ErrBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, httptest.NewRequest(http.MethodGet, "/quotes"+tt.query, nil))

			var req QuoteSearchRequest
			err := BindQueryAndValidate(c, &req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Criteria())
		})
	}
}

func TestBindAndValidate_QuoteRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		fields  []string
	}{
		{
			name: "valid",
			body: `{"text":"Stay hungry.","authorId":1,"categoryId":2,"tags":["life"],"backgroundImageUrl":"https://img.example.com/a.jpg"}`,
		},
		{
			name:    "malformed json",
			body:    `{"text":`,
			wantErr: ErrBinding,
		},
		{
			name:    "blank text and missing references",
			body:    `{"text":"   "}`,
			wantErr: ErrValidation,
			fields:  []string{"text", "authorId", "categoryId"},
		},
		{
			name:    "text too long",
			body:    `{"text":"` + strings.Repeat("é", 501) + `","authorId":1,"categoryId":1}`,
			wantErr: ErrValidation,
			fields:  []string{"text"},
		},
		{
			name:    "relative image url",
			body:    `{"text":"t","authorId":1,"categoryId":1,"backgroundImageUrl":"/img.png"}`,
			wantErr: ErrValidation,
			fields:  []string{"backgroundImageUrl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			c, _ := newTestContext(t, req)

			var body QuoteRequest
			err := BindAndValidate(c, &body)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, []string{"life"}, body.ToInput().Tags)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			details := ValidationErrors(err)
			for _, f := range tt.fields {
				assert.Contains(t, details, f)
			}
		})
	}
}

func TestAuthorRequest_ToInput(t *testing.T) {
	in, err := AuthorRequest{Name: "Maya Angelou", BirthDate: "1928-04-04", DeathDate: "2014-05-28"}.ToInput()
	require.NoError(t, err)

	assert.Equal(t, time.Date(1928, 4, 4, 0, 0, 0, 0, time.UTC), in.BirthDate)
	require.NotNil(t, in.DeathDate)
	assert.Equal(t, 2014, in.DeathDate.Year())

	living, err := AuthorRequest{Name: "Living Author"}.ToInput()
	require.NoError(t, err)
	assert.Nil(t, living.DeathDate)
	assert.True(t, living.BirthDate.IsZero())

	_, err = AuthorRequest{Name: "x", DeathDate: "28/05/2014"}.ToInput()
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestFromQuoteView(t *testing.T) {
	v := domain.QuoteView{
		Quote: domain.Quote{
			ID:        4,
			Text:      "Innovation distinguishes between a leader and a follower.",
			AuthorID:  1,
			DateAdded: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Likes:     1523,
		},
		AuthorName: "Steve Jobs",
	}

	got := FromQuoteView(v)

	assert.Equal(t, "2024-01-15", got.DateAdded)
	assert.Equal(t, "Steve Jobs", got.AuthorName)
	assert.NotNil(t, got.Tags)
	assert.Equal(t, int64(1523), got.Likes)
}

func TestFromAuthor(t *testing.T) {
	death := time.Date(2014, 5, 28, 0, 0, 0, 0, time.UTC)

	got := FromAuthorView(catalog.AuthorView{
		Author:     domain.Author{ID: 2, Name: "Maya Angelou", DeathDate: &death},
		QuoteCount: 3,
	})

	assert.Equal(t, "2014-05-28", got.DeathDate)
	assert.Empty(t, got.BirthDate)
	assert.False(t, got.Living)
	assert.Equal(t, 3, got.QuoteCount)
}

func TestFromImportReport(t *testing.T) {
	got := FromImportReport(domain.ImportReport{
		Imported: 2,
		Failed:   1,
		Errors:   []domain.RowError{{Kind: domain.RecordQuote, Row: 3, Reason: "Author not found"}},
	})

	require.Len(t, got.Errors, 1)
	assert.Equal(t, "Row 3: Author not found", got.Errors[0].Message)

	empty := FromImportReport(domain.ImportReport{})
	assert.NotNil(t, empty.Errors)
}

func TestValidate_CatalogRules(t *testing.T) {
	tests := []struct {
		name  string
		value any
		field string
		msg   string
	}{
		{
			name:  "death before birth",
			value: AuthorRequest{Name: "Ada", BirthDate: "1900-01-01", DeathDate: "1899-12-31"},
			field: "deathDate",
			msg:   "must not be before birthDate",
		},
		{
			name:  "ftp image",
			value: AuthorRequest{Name: "Ada", ImageURL: "ftp://img.example.com/a.png"},
			field: "imageUrl",
			msg:   "must be an absolute http(s) URL",
		},
		{
			name:  "blank tag",
			value: QuoteRequest{Text: "t", AuthorID: 1, CategoryID: 1, Tags: []string{"life", " "}},
			field: "tags[1]",
			msg:   "must not be blank",
		},
		{
			name:  "page size in form name",
			value: QuoteSearchRequest{PageRequest: PageRequest{PageSize: 101}},
			field: "pageSize",
			msg:   "must be less than or equal to 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value)
			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.msg, ValidationErrors(err)[tt.field])
		})
	}

	require.NoError(t, Validate(AuthorRequest{Name: "Ada", BirthDate: "1815-12-10", DeathDate: "1852-11-27"}))
}
