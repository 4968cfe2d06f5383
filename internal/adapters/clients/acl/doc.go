// Package acl is the anti-corruption layer between catalog domain events and
// the external share webhook.
//
// Domain events never cross the wire as-is. Each one is mapped to
// an envelope whose shape belongs to the webhook contract:
//
//	{
//	  "id": "3b0e...",
//	  "type": "quote.shared",
//	  "source": "quote-catalog",
//	  "occurredAt": "2024-06-01T12:00:00Z",
//	  "data": { "quoteId": "4", "text": "...", "shares": 124 }
//	}
//
// Identifiers are rendered as strings so the receiver does not depend on the
// catalog's numeric id scheme.
//
// Failures coming back from the webhook are mapped to domain errors:
//   - 400/422 → [domain.ErrValidation]
//   - 401/403 → [domain.ErrForbidden]
//   - 429, 5xx, transport errors, open circuit → [domain.ErrUnavailable]
package acl
