package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/MarkerAnn/wine-backend/internal/model"
	"github.com/MarkerAnn/wine-backend/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

// Loads the Kaggle winemag CSV into kaggle_wine_reviews. This is the only
// writer the corpus table ever sees: the API reads it, ingestion embeds it,
// nobody mutates it. Re-running the seeder leaves existing rows alone.
func main() {
	filePath := flag.String("file", "winemag-data-130k-v2.csv", "path to the Kaggle reviews CSV")
	batchSize := flag.Int("batch-size", 1000, "rows per insert batch")
	flag.Parse()

	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Error: Failed to open %s: %v", *filePath, err)
	}
	defer f.Close()

	log.Printf("Seeding wine corpus from %s...", *filePath)

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		log.Fatalf("Error: Failed to read CSV header: %v", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var (
		batch      []*model.Wine
		total      int
		skipped    int
		lastLogged int
	)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Existing ids win: embeddings may already reference them and the
		// corpus is append-only.
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error; err != nil {
			log.Fatalf("Error: Insert batch failed: %v", err)
		}
		total += len(batch)
		batch = batch[:0]
		if total-lastLogged >= 10000 {
			log.Printf("  %d rows loaded...", total)
			lastLogged = total
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				skipped++
				continue
			}
			log.Fatalf("Error: Failed reading CSV: %v", err)
		}

		wine, ok := parseReviewRow(record, col)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, wine)
		if len(batch) >= *batchSize {
			flush()
		}
	}
	flush()

	log.Printf("Seeded %d reviews (%d rows skipped)", total, skipped)
	log.Println("✅ Corpus seed complete. Run cmd/migrate for indexes, then cmd/ingest to build embeddings.")
}

func parseReviewRow(record []string, col map[string]int) (*model.Wine, bool) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	// The dump's unnamed first column is a 0-based row index. Ids are shifted
	// to 1-based so the first row never looks like an unset primary key.
	idx, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return nil, false
	}

	title := get("title")
	description := get("description")
	if title == "" || description == "" {
		// Rows without prose can be neither searched nor embedded.
		return nil, false
	}

	points, _ := strconv.Atoi(get("points"))

	wine := &model.Wine{
		Id:                  idx + 1,
		Title:               title,
		Description:         description,
		Points:              points,
		Country:             optional(get("country")),
		Designation:         optional(get("designation")),
		Province:            optional(get("province")),
		Region1:             optional(get("region_1")),
		Region2:             optional(get("region_2")),
		TasterName:          optional(get("taster_name")),
		TasterTwitterHandle: optional(get("taster_twitter_handle")),
		Variety:             optional(get("variety")),
		Winery:              optional(get("winery")),
		Source:              "kaggle",
	}
	if price := get("price"); price != "" {
		if v, err := strconv.ParseFloat(price, 64); err == nil {
			wine.Price = &v
		}
	}
	return wine, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
