// internal/repository/postgres/invoice_repository.go
package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/storeops/reporting-backend/internal/domain"
)

// identifierPattern guards the table name interpolated into the page
// query; table names cannot be bound as query parameters.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type invoiceRepository struct {
	db *DB
}

// NewInvoiceRepository returns a TableReader over the invoice export
// tables.
func NewInvoiceRepository(db *DB) *invoiceRepository {
	return &invoiceRepository{db: db}
}

// FetchPage reads one offset window of the named table, ordered by id so
// pagination is stable across pages. Rows come back as raw column/value
// maps; the normalizer owns all interpretation.
func (r *invoiceRepository) FetchPage(ctx context.Context, table string, offset, limit int) ([]domain.RawRecord, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	release, err := r.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY id OFFSET $1 LIMIT $2`, pq.QuoteIdentifier(table))
	rows, err := r.db.QueryxContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page from %s at offset %d: %w", table, offset, err)
	}
	defer rows.Close()

	records := make([]domain.RawRecord, 0, limit)
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		for k, v := range row {
			// lib/pq hands text columns back as []byte through MapScan.
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		records = append(records, domain.RawRecord(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}

	return records, nil
}
