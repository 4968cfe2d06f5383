package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	bearerPattern = regexp.MustCompile(`(?i)^(bearer|basic)\s+.+$`)

	// signedURLPattern matches webhook URLs that carry a credential in the
	// query string, e.g. https://hooks.example.com/share?token=abc.
	signedURLPattern = regexp.MustCompile(`(?i)^https?://[^\s]*[?&](token|sig|signature|key|secret)=`)
)

// sessionFields are the spellings a raw visitor session ID travels under:
// the event struct field, its JSON name and the gin context key.
var sessionFields = []string{"SessionID", "sessionId", "session_id"}

// DefaultRedactOptions returns the masq options applied to every logger.
// Extend them for a single logger through NewReplaceAttr:
//
//	logging.NewReplaceAttr(masq.WithFieldName("Bio"))
func DefaultRedactOptions() []masq.Option {
	opts := []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("token"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("webhook_url"),
		masq.WithFieldName("WebhookURL"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(signedURLPattern),
	}

	for _, f := range sessionFields {
		opts = append(opts, masq.WithFieldName(f))
	}

	return opts
}

// NewReplaceAttr returns a slog ReplaceAttr hook applying
// DefaultRedactOptions plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
