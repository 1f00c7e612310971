package ledger

import (
	"errors"

	"github.com/ignite/seo-noc/internal/domain"
)

var (
	ErrRationaleTooShort = errors.New("change rationale does not meet the minimum length")
	ErrLedgerWriteFailed = errors.New("entity write succeeded but the ledger row failed to persist; state is inconsistent")
)

// ErrNotificationDisabled re-exports domain.ErrNotificationDisabled: a
// Renderer returns it to signal an intentionally skipped (not failed) send.
var ErrNotificationDisabled = domain.ErrNotificationDisabled
