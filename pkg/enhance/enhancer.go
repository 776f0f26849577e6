package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"news-chatter-be/pkg/llm"
)

// SubQuery is one labeled retrieval query produced from the user's question.
// The original question always carries label "original_query"; rewrites are
// labeled "enhanced_query_1", "enhanced_query_2", ...
type SubQuery struct {
	Label string
	Text  string
}

type Enhancer struct {
	llm            llm.IProvider
	promptTemplate string // must contain one %s for the user question
}

func NewEnhancer(provider llm.IProvider, promptTemplate string) *Enhancer {
	return &Enhancer{
		llm:            provider,
		promptTemplate: promptTemplate,
	}
}

// Enhance asks the model to rewrite the question into retrieval queries. On
// any model or parse failure the caller should retrieve with the original
// question alone; Fallback builds that set.
func (e *Enhancer) Enhance(ctx context.Context, question string) ([]SubQuery, error) {
	raw, err := e.llm.Generate(ctx, fmt.Sprintf(e.promptTemplate, question))
	if err != nil {
		return nil, fmt.Errorf("enhancement generation failed: %w", err)
	}

	subQueries, err := ParseEnhancement(raw, question)
	if err != nil {
		return nil, err
	}
	return subQueries, nil
}

// Fallback is the single-query set used when enhancement fails.
func Fallback(question string) []SubQuery {
	return []SubQuery{{Label: "original_query", Text: question}}
}

// ParseEnhancement decodes the model's JSON answer. Models routinely wrap the
// object in a markdown code fence, so fences are stripped before decoding.
// Labels other than original_query / enhanced_query_N are ignored, and the
// result is ordered original first, then rewrites by ascending index.
func ParseEnhancement(raw, question string) ([]SubQuery, error) {
	cleaned := stripCodeFence(raw)

	var fields map[string]string
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("enhancement response is not a JSON object: %w", err)
	}

	original := question
	if text, ok := fields["original_query"]; ok && strings.TrimSpace(text) != "" {
		original = text
	}

	type indexed struct {
		index int
		text  string
	}
	var rewrites []indexed
	for label, text := range fields {
		if !strings.HasPrefix(label, "enhanced_query_") {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(label, "enhanced_query_"))
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		rewrites = append(rewrites, indexed{index: index, text: text})
	}
	sort.Slice(rewrites, func(i, j int) bool { return rewrites[i].index < rewrites[j].index })

	subQueries := []SubQuery{{Label: "original_query", Text: original}}
	for _, r := range rewrites {
		subQueries = append(subQueries, SubQuery{
			Label: "enhanced_query_" + strconv.Itoa(r.index),
			Text:  r.text,
		})
	}
	return subQueries, nil
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
