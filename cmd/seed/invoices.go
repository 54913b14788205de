package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"
)

// invoiceColumns maps collapsed export header names onto table columns.
// Exports disagree on casing and spacing ("PC Number" vs "pc_number"),
// so headers are matched with separators stripped.
var invoiceColumns = map[string]string{
	"pcnumber":        "pc_number",
	"itemnumber":      "item_number",
	"itemname":        "item_name",
	"itemdescription": "item_name",
	"categorydesc":    "category",
	"category":        "category",
	"qtyordered":      "qty_ordered",
	"qtyshipped":      "qty_shipped",
	"orderdate":       "order_date",
	"invoicedate":     "invoice_date",
}

var tableColumns = []string{
	"pc_number", "item_number", "item_name", "category",
	"qty_ordered", "qty_shipped", "order_date", "invoice_date",
}

func seedInvoices(c *cli.Context) error {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return fmt.Errorf("database connection not found in context")
	}

	path := c.String("file")
	table := c.String("table")

	csvPath := path
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		converted, err := convertXLSXToCSV(path)
		if err != nil {
			return err
		}
		defer os.Remove(converted)
		csvPath = converted
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", csvPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header from %s: %w", csvPath, err)
	}

	// Position of each destination column in the export, -1 when absent.
	positions := make(map[string]int, len(tableColumns))
	for _, col := range tableColumns {
		positions[col] = -1
	}
	for i, name := range header {
		if col, ok := invoiceColumns[collapseHeader(name)]; ok && positions[col] == -1 {
			positions[col] = i
		}
	}
	if positions["pc_number"] == -1 || positions["item_number"] == -1 {
		return fmt.Errorf("%s is missing the PC Number or Item Number column", path)
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (
			pc_number, item_number, item_name, category,
			qty_ordered, qty_shipped, order_date, invoice_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pc_number, item_number, invoice_date) DO UPDATE SET
			item_name = EXCLUDED.item_name,
			category = EXCLUDED.category,
			qty_ordered = EXCLUDED.qty_ordered,
			qty_shipped = EXCLUDED.qty_shipped,
			order_date = EXCLUDED.order_date
	`, table)

	stmt, err := db.PrepareContext(c.Context, upsert)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	var inserted, skipped int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read row from %s: %w", csvPath, err)
		}

		args := make([]any, len(tableColumns))
		for i, col := range tableColumns {
			args[i] = fieldAt(row, positions[col])
		}
		if args[0] == nil || args[1] == nil {
			skipped++
			continue
		}

		if _, err := stmt.ExecContext(c.Context, args...); err != nil {
			return fmt.Errorf("failed to upsert invoice row: %w", err)
		}
		inserted++
	}

	log.Printf("Loaded %d invoice rows into %s (%d skipped)", inserted, table, skipped)
	return nil
}

func fieldAt(row []string, pos int) any {
	if pos < 0 || pos >= len(row) {
		return nil
	}
	v := strings.TrimSpace(row[pos])
	if v == "" {
		return nil
	}
	return v
}

func collapseHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, name)
}

// convertXLSXToCSV writes the first sheet of an XLSX export to a
// temporary CSV file and returns its path.
func convertXLSXToCSV(xlsxPath string) (string, error) {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return "", fmt.Errorf("failed to open xlsx file %s: %w", xlsxPath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("xlsx file %s has no sheets", xlsxPath)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	out, err := os.CreateTemp("", "invoices-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp csv: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return "", fmt.Errorf("failed to read row from %s: %w", xlsxPath, err)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	return out.Name(), nil
}
