package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"news-chatter-be/internal/config"
	"news-chatter-be/internal/constant"
	"news-chatter-be/internal/mapper"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/repository/implementation"
	"news-chatter-be/internal/retrieval"
	"news-chatter-be/pkg/database"
	"news-chatter-be/pkg/embedding"
	"news-chatter-be/pkg/enhance"
	llmfactory "news-chatter-be/pkg/llm/factory"
)

// Retrieval diagnostic: run one query through enhancement and the ranked
// chunk search, and print what the pipeline would hand to generation.
//
//	go run ./cmd/debug -query "what happened with the fed today" -enhance
func main() {
	query := flag.String("query", "", "question to retrieve for")
	withEnhance := flag.Bool("enhance", false, "run query enhancement first")
	flag.Parse()

	if *query == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	embedder, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Keys.GoogleGemini, cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	if err != nil {
		log.Fatalf("embedder: %v", err)
	}

	chunkRepo := implementation.NewChunkRepository(db, mapper.NewChunkMapper())
	ranker := retrieval.NewRanker(cfg.Retrieval.DocsK, cfg.Retrieval.RecencyLambda)
	aggregator := retrieval.NewAggregator(embedder, chunkRepo, ranker, logger.NewNoopLogger(), cfg.Retrieval.FetchK, cfg.Timeouts.Retrieve)

	subQueries := enhance.Fallback(*query)
	if *withEnhance {
		generator, err := llmfactory.New(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Keys.GoogleGemini, cfg.Ai.OllamaBaseURL)
		if err != nil {
			log.Fatalf("llm: %v", err)
		}
		enhanced, err := enhance.NewEnhancer(generator, constant.EnhancementPromptTemplate).Enhance(ctx, *query)
		if err != nil {
			color.Yellow("enhancement failed (%v), using original query", err)
		} else {
			subQueries = enhanced
		}
	}

	color.Cyan("sub-queries:")
	for _, sq := range subQueries {
		fmt.Printf("  %s: %s\n", color.GreenString(sq.Label), sq.Text)
	}

	started := time.Now()
	passages, failed := aggregator.Retrieve(ctx, subQueries, retrieval.Filters{})
	color.Cyan("\n%d passages in %s", len(passages), time.Since(started).Round(time.Millisecond))
	for _, label := range failed {
		color.Red("  sub-query failed: %s", label)
	}

	for i, p := range passages {
		fmt.Println()
		color.Green("[%d] %s", i+1, p.Title)
		fmt.Printf("    score=%.4f similarity=%.4f recency=%.4f\n", p.AdjustedScore, p.Similarity, p.RecencyWeight)
		if p.PublishedAt != nil {
			fmt.Printf("    published=%s\n", p.PublishedAt.Format("2006-01-02"))
		}
		if p.SourceURL != "" {
			fmt.Printf("    url=%s\n", p.SourceURL)
		}
		text := p.Text
		if len(text) > 240 {
			text = text[:240] + "..."
		}
		fmt.Printf("    %s\n", strings.ReplaceAll(text, "\n", " "))
	}
}
