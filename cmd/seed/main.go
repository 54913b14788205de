// cmd/seed/main.go
//
// Loads invoice spreadsheet exports into the reporting database. The
// report server only ever reads that table; this CLI is the ingestion
// side of the pipeline.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Load spreadsheet exports into the reporting database",
		Commands: []*cli.Command{
			{
				Name:  "invoices",
				Usage: "Load an invoice export (CSV or XLSX) into the invoice table",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the invoice export (.csv or .xlsx)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "table",
						Usage:   "Destination table",
						Value:   "ndcp_invoices",
						EnvVars: []string{"PAR_INVOICE_TABLE"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedInvoices,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
