package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-catalog/internal/app"
)

// StatsResult is the catalog overview printed by stats.
type StatsResult struct {
	Quotes     int          `json:"quotes"`
	Authors    int          `json:"authors"`
	Topics     int          `json:"topics"`
	Likes      int64        `json:"likes"`
	Shares     int64        `json:"shares"`
	Bookmarks  int64        `json:"bookmarks"`
	TopQuotes  []QuoteStat  `json:"topQuotes"`
	TopAuthors []AuthorStat `json:"topAuthors"`
}

// QuoteStat is one row of the most liked quotes.
type QuoteStat struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Likes  int64  `json:"likes"`
	Text   string `json:"text"`
}

// AuthorStat is one row of the most quoted authors.
type AuthorStat struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Quotes int64  `json:"quotes"`
}

// WriteText renders the result as aligned tables.
func (r StatsResult) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Quotes\t%d\n", r.Quotes)
	fmt.Fprintf(tw, "Authors\t%d\n", r.Authors)
	fmt.Fprintf(tw, "Topics\t%d\n", r.Topics)
	fmt.Fprintf(tw, "Likes\t%d\n", r.Likes)
	fmt.Fprintf(tw, "Shares\t%d\n", r.Shares)
	fmt.Fprintf(tw, "Bookmarks\t%d\n", r.Bookmarks)

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tAUTHOR\tLIKES\tQUOTE")

	for _, q := range r.TopQuotes {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", q.ID, q.Author, q.Likes, truncate(q.Text, 60))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tAUTHOR\tQUOTES")

	for _, a := range r.TopAuthors {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", a.ID, a.Name, a.Quotes)
	}

	return tw.Flush()
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show catalog totals and leaderboards",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, rootOpts)
		},
	}
}

func runStats(cmd *cobra.Command, opts *RootOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return fail(out, "opening catalog", err)
	}
	defer e.Close()

	d, err := e.admin.Dashboard(ctx)
	if err != nil {
		return fail(out, "computing stats", err)
	}

	return out.Success(newStatsResult(d))
}

func newStatsResult(d app.Dashboard) StatsResult {
	r := StatsResult{
		Quotes:     d.TotalQuotes,
		Authors:    d.TotalAuthors,
		Topics:     d.TotalTopics,
		Likes:      d.TotalLikes,
		Shares:     d.TotalShares,
		Bookmarks:  d.TotalBookmarks,
		TopQuotes:  make([]QuoteStat, 0, len(d.TopQuotes)),
		TopAuthors: make([]AuthorStat, 0, len(d.TopAuthors)),
	}

	for _, q := range d.TopQuotes {
		r.TopQuotes = append(r.TopQuotes, QuoteStat{ID: q.ID, Author: q.AuthorName, Likes: q.Likes, Text: q.Text})
	}

	for _, a := range d.TopAuthors {
		r.TopAuthors = append(r.TopAuthors, AuthorStat{ID: a.ID, Name: a.Name, Quotes: a.TotalQuotes})
	}

	return r
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-1]) + "…"
}
