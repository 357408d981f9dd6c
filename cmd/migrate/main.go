package main

import (
	"log"
	"os"

	"github.com/MarkerAnn/wine-backend/internal/model"
	"github.com/MarkerAnn/wine-backend/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (things AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`, // gen_random_uuid()
		`CREATE EXTENSION IF NOT EXISTS vector;`,   // pgvector
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Wine{},
		&model.WineEmbedding{},
		&model.IngestRun{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: generated column and search indexes. The tsvector
	// column lives outside the GORM model so AutoMigrate never tries to
	// write it.
	log.Println("Step 3: Creating search column and indexes...")

	postMigrationSQL := []string{
		// Full-text search over title + review text, maintained by Postgres.
		`ALTER TABLE kaggle_wine_reviews
		 ADD COLUMN IF NOT EXISTS search_vector tsvector
		 GENERATED ALWAYS AS (to_tsvector('english', coalesce(title, '') || ' ' || description)) STORED;`,

		`CREATE INDEX IF NOT EXISTS idx_wine_reviews_search_vector
		 ON kaggle_wine_reviews USING GIN (search_vector);`,

		// ANN index for cosine similarity; matches the <=> operator used by
		// the embedding repository.
		`CREATE INDEX IF NOT EXISTS idx_wine_embeddings_embedding
		 ON wine_embeddings USING hnsw (embedding vector_cosine_ops);`,

		// Status endpoint reads the newest run per corpus.
		`CREATE INDEX IF NOT EXISTS idx_ingest_runs_corpus_started_at
		 ON ingest_runs (corpus, started_at DESC);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
