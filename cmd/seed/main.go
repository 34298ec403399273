package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/implementation"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/pkg/database"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/utils"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	seedChunkSize = 1500
	seedOverlap   = 200
)

// Seeds the corpus from a directory of .txt/.md files and embeds every
// passage inline, so a fresh database is immediately queryable without
// waiting on the async indexer.
//
// Usage: go run ./cmd/seed ./sample-docs
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	if len(os.Args) < 2 {
		log.Fatal("Usage: seed <directory>")
	}
	dir := os.Args[1]

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	documents := implementation.NewDocumentRepository(db)
	passages := implementation.NewPassageRepository(db)
	ctx := context.Background()

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal("Error: Failed to read seed directory:", err)
	}

	seeded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			continue
		}
		content := strings.TrimSpace(string(raw))
		if content == "" {
			continue
		}

		hash := sha256.Sum256([]byte(content))
		hashHex := hex.EncodeToString(hash[:])

		existing, err := documents.FindAll(ctx, specification.ByFilename{Filename: entry.Name()})
		if err != nil {
			log.Fatal("Error: Failed to check existing documents:", err)
		}
		if len(existing) > 0 {
			log.Printf("Document '%s' already seeded, skipping...", entry.Name())
			continue
		}

		doc := entity.Document{
			Id:          uuid.New(),
			Filename:    entry.Name(),
			Title:       strings.TrimSuffix(entry.Name(), ext),
			ContentHash: hashHex,
		}
		if err := documents.Create(ctx, &doc); err != nil {
			log.Fatal("Error: Failed to create document:", err)
		}

		chunks := utils.SplitText(content, seedChunkSize, seedOverlap)
		batch := make([]*entity.Passage, 0, len(chunks))
		for i, chunk := range chunks {
			res, err := provider.Generate(chunk, embedding.TaskRetrievalDocument)
			if err != nil {
				log.Fatalf("Error: Failed to embed chunk %d of %s: %v", i, entry.Name(), err)
			}
			batch = append(batch, &entity.Passage{
				Id:         uuid.New(),
				DocumentId: doc.Id,
				Content:    chunk,
				ChunkIndex: i,
				Embedding:  res.Values,
				Metadata:   map[string]interface{}{"filename": doc.Filename},
			})
		}
		if err := passages.CreateBulk(ctx, batch); err != nil {
			log.Fatal("Error: Failed to create passages:", err)
		}

		log.Printf("Seeded '%s' (%d passages)", entry.Name(), len(chunks))
		seeded++
	}

	log.Printf("Corpus seeding completed: %d documents", seeded)
}
