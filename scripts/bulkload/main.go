// scripts/bulkload: offline CSV loader for the SQLite file. Same decode,
// header normalization and dedup rules as the web import.
//
//	go run ./scripts/bulkload -db data/equip.db -csv assets.csv
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gin_sqlite_equip_tool/csvutil"
	"gin_sqlite_equip_tool/db"
	"gin_sqlite_equip_tool/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	dbPath := flag.String("db", "data/equip.db", "SQLite database file")
	csvPath := flag.String("csv", "", "CSV file to import (required)")
	truncate := flag.Bool("truncate", false, "delete existing assets and loans first")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	conn, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if *truncate {
		if err := conn.Exec("DELETE FROM " + models.LoanTable).Error; err != nil {
			log.Fatalf("truncate loans: %v", err)
		}
		if err := conn.Exec("DELETE FROM " + models.AssetTable).Error; err != nil {
			log.Fatalf("truncate assets: %v", err)
		}
		log.Printf("truncated %s and %s", models.AssetTable, models.LoanTable)
	}

	data, err := os.ReadFile(*csvPath)
	if err != nil {
		log.Fatalf("read csv: %v", err)
	}
	rows, err := csvutil.BytesToRows(data)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}

	repo := db.NewRepo(conn)
	res, err := repo.BulkImportAssets(context.Background(), rows)
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	log.Printf("created=%d skipped=%d errors=%d", res.Created, res.Skipped, len(res.Errors))
	for _, e := range res.Errors {
		log.Printf("  %s", e)
	}
}
