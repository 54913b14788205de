package repository

import (
	"context"

	"github.com/storeops/reporting-backend/internal/domain"
)

// TableReader is the only interface the par engine needs from the
// persistent store: a range-paginated bulk read of a named table. Callers
// loop, incrementing offset by limit, until a short or empty page comes
// back. No write path is exposed here; par results are display-only.
type TableReader interface {
	FetchPage(ctx context.Context, table string, offset, limit int) ([]domain.RawRecord, error)
}
