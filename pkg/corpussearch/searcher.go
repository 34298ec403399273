package corpussearch

import (
	"context"
	"fmt"
	"log"

	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/store"
)

// DBThreshold is the similarity cutoff applied inside the vector query.
// Kept at zero so ranking stays visible; weak hits are dropped downstream
// by the confidence floor.
const DBThreshold = 0.0

// Searcher turns a question into an embedding and runs a cosine similarity
// search over the indexed passages.
type Searcher struct {
	embeddingProvider embedding.EmbeddingProvider
	passages          contract.PassageRepository
	logger            *log.Logger
}

func NewSearcher(embeddingProvider embedding.EmbeddingProvider, passages contract.PassageRepository, logger *log.Logger) *Searcher {
	return &Searcher{
		embeddingProvider: embeddingProvider,
		passages:          passages,
		logger:            logger,
	}
}

// Search implements the passage lookup used by corpus retrieval.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]store.PassageResult, error) {
	embeddingRes, err := s.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := s.passages.SearchSimilarWithScore(ctx, embeddingRes.Values, k, DBThreshold)
	if err != nil {
		s.logger.Printf("[CORPUS-SEARCH] vector search failed: %v", err)
		return nil, err
	}

	s.logger.Printf("[CORPUS-SEARCH] raw search results: %d passages", len(scored))

	results := make([]store.PassageResult, 0, len(scored))
	for _, res := range scored {
		filename := ""
		if v, ok := res.Passage.Metadata["filename"].(string); ok {
			filename = v
		}
		results = append(results, store.PassageResult{
			Content:    res.Passage.Content,
			DocumentID: res.Passage.DocumentId.String(),
			Filename:   filename,
			ChunkIndex: res.Passage.ChunkIndex,
			Score:      res.Similarity,
		})
	}
	return results, nil
}
