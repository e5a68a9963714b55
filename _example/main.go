package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/semcache"
)

// demoProvider fakes an embedding service with deterministic vectors.
type demoProvider struct{}

func (demoProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

func (demoProvider) MaxBatchSize() int { return 100 }

// demoBackend fakes a vector-search backend.
type demoBackend struct{}

func (demoBackend) Search(_ context.Context, agentID string, _ []float32, topK int) ([]string, error) {
	docs := make([]string, topK)
	for i := range docs {
		docs[i] = fmt.Sprintf("%s/doc-%d", agentID, i)
	}
	return docs, nil
}

func main() {
	ctx := context.Background()

	sc, err := semcache.New[string](demoProvider{}, demoBackend{})
	if err != nil {
		log.Fatal(err)
	}

	queries := []string{
		"What properties are available?",
		"thanks",
		"what properties are available",
		"Are pets allowed?",
	}

	for _, query := range queries {
		resp, err := sc.Search(ctx, "agent-1", query, 3)
		if err != nil {
			log.Fatal(err)
		}

		if resp.Source == semcache.SourceFilter {
			fmt.Printf("%-35q -> [%s] %s\n", query, resp.Source, resp.Answer)
			continue
		}
		fmt.Printf("%-35q -> [%s] %v\n", query, resp.Source, resp.Results)
	}

	stats := sc.Stats()
	fmt.Printf("\nresult cache: hits=%d misses=%d hitRate=%.2f\n",
		stats.ResultCache.Hits, stats.ResultCache.Misses, stats.ResultCache.HitRate)
}
