package par

import (
	"strings"

	"github.com/storeops/reporting-backend/internal/domain"
)

// Column aliases seen across the invoice export variants, keyed by their
// canonicalKey form. The canonical names themselves are included so that
// normalizing an already-normalized record set is a no-op.
var (
	storeIDKeys     = []string{"pcnumber", "storeid", "pc"}
	itemIDKeys      = []string{"itemnumber", "itemid"}
	itemNameKeys    = []string{"itemname", "itemdescription", "productname"}
	categoryKeys    = []string{"categorydesc", "category"}
	orderedKeys     = []string{"qtyordered"}
	shippedKeys     = []string{"qtyshipped"}
	orderDateKeys   = []string{"orderdate"}
	invoiceDateKeys = []string{"invoicedate"}
)

// Normalize maps raw invoice rows onto Transactions. Column matching is
// case- and spacing-insensitive ("PC Number", "pc_number" and "pcnumber"
// all match). Rows that cannot produce a store id, item id, item name and
// effective date are dropped; malformed dates and quantities degrade to
// null instead of failing the batch.
func Normalize(records []domain.RawRecord) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(records))
	for _, rec := range records {
		if tx, ok := normalizeRecord(rec); ok {
			txs = append(txs, tx)
		}
	}
	return txs
}

func normalizeRecord(rec domain.RawRecord) (domain.Transaction, bool) {
	fields := make(map[string]any, len(rec))
	for k, v := range rec {
		fields[canonicalKey(k)] = v
	}

	tx := domain.Transaction{
		StoreID:  lookupString(fields, storeIDKeys),
		ItemID:   lookupString(fields, itemIDKeys),
		ItemName: lookupString(fields, itemNameKeys),
		Category: lookupString(fields, categoryKeys),
	}
	if tx.StoreID == "" || tx.ItemID == "" || tx.ItemName == "" {
		return domain.Transaction{}, false
	}

	if qty, ok := ParseQuantity(lookup(fields, orderedKeys)); ok {
		tx.QtyOrdered = &qty
	}
	if qty, ok := ParseQuantity(lookup(fields, shippedKeys)); ok {
		tx.QtyShipped = &qty
	}

	if d := ParseCompactDate(lookup(fields, orderDateKeys)); d.Valid {
		t := d.Time
		tx.OrderDate = &t
	}
	if d := ParseCompactDate(lookup(fields, invoiceDateKeys)); d.Valid {
		t := d.Time
		tx.InvoiceDate = &t
	}

	// Invoice date wins over order date; shipped quantity wins over
	// ordered. A row with neither date is unusable.
	switch {
	case tx.InvoiceDate != nil:
		tx.EffectiveDate = *tx.InvoiceDate
	case tx.OrderDate != nil:
		tx.EffectiveDate = *tx.OrderDate
	default:
		return domain.Transaction{}, false
	}

	switch {
	case tx.QtyShipped != nil:
		tx.EffectiveQty = *tx.QtyShipped
	case tx.QtyOrdered != nil:
		tx.EffectiveQty = *tx.QtyOrdered
	default:
		tx.EffectiveQty = 0
	}
	if tx.EffectiveQty < 0 {
		tx.EffectiveQty = 0
	}

	return tx, true
}

// canonicalKey lowercases a column name and strips the separators that
// vary between export formats.
func canonicalKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, k)
}

func lookup(fields map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func lookupString(fields map[string]any, keys []string) string {
	v := lookup(fields, keys)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(coerceString(v))
}
