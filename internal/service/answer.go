package service

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/domain"
)

const (
	// ContextSeparator joins retrieved chunk texts in ranked order.
	ContextSeparator = "\n---\n"
	// NoContextSentinel stands in for the context when search returns
	// nothing, so prompts never see an empty context block.
	NoContextSentinel = "No relevant context found."
	// RefusalAnswer is the canonical out-of-context refusal. Model output
	// that is empty or contains it is normalized to exactly this string.
	RefusalAnswer = "I cannot answer such questions."

	// DefaultMaxRephrases bounds the corrective judge/rephrase cycle.
	DefaultMaxRephrases = 3
)

// Answerer answers questions from retrieved context. In corrective mode it
// judges whether the retrieved context suffices and rewrites the question
// for another retrieval round when it does not, up to MaxRephrases times;
// after that it answers best-effort from the last context.
type Answerer struct {
	embedder     domain.Embedder
	store        domain.VectorStore
	llm          domain.Completer
	topK         int
	maxRephrases int
	corrective   bool
}

// AnswererOptions tunes the retrieval loop.
type AnswererOptions struct {
	TopK         int
	MaxRephrases int
	Corrective   bool
}

func NewAnswerer(embedder domain.Embedder, store domain.VectorStore, llm domain.Completer, opts AnswererOptions) *Answerer {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	maxRephrases := opts.MaxRephrases
	if maxRephrases <= 0 {
		maxRephrases = DefaultMaxRephrases
	}
	return &Answerer{
		embedder:     embedder,
		store:        store,
		llm:          llm,
		topK:         topK,
		maxRephrases: maxRephrases,
		corrective:   opts.Corrective,
	}
}

// Answer runs the retrieval loop and generates a context-only answer for the
// question. Empty or refusing model output is normalized to RefusalAnswer.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	question, ragContext, err := a.retrieve(ctx, question)
	if err != nil {
		return "", err
	}
	answer, err := a.llm.Complete(ctx, answerPrompt(ragContext, question), 0.2, 512)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if answer == "" || strings.Contains(strings.ToLower(answer), strings.ToLower(RefusalAnswer)) {
		return RefusalAnswer, nil
	}
	return answer, nil
}

// ExtractProfile runs the retrieval loop and asks for the structured
// doctor-profile JSON. The model output is returned verbatim; no schema
// validation is applied.
func (a *Answerer) ExtractProfile(ctx context.Context, question string) (string, error) {
	question, ragContext, err := a.retrieve(ctx, question)
	if err != nil {
		return "", err
	}
	answer, err := a.llm.Complete(ctx, profilePrompt(ragContext, question), 0.2, 512)
	if err != nil {
		return "", fmt.Errorf("extract profile: %w", err)
	}
	return answer, nil
}

// retrieve embeds the question, searches, and in corrective mode loops
// through judge/rephrase until the context is judged sufficient or the
// rephrase budget is spent. It returns the final (possibly rewritten)
// question together with the formatted context.
func (a *Answerer) retrieve(ctx context.Context, question string) (string, string, error) {
	question = strings.TrimSpace(question)
	var ragContext string
	for cycle := 0; ; cycle++ {
		vector, err := a.embedder.Embed(ctx, "query: "+question)
		if err != nil {
			return "", "", fmt.Errorf("embed query: %w", err)
		}
		hits, err := a.store.Search(ctx, vector, a.topK)
		if err != nil {
			return "", "", fmt.Errorf("search: %w", err)
		}
		ragContext = FormatContext(hits)
		if !a.corrective || cycle >= a.maxRephrases {
			return question, ragContext, nil
		}
		sufficient, err := a.judgeSufficiency(ctx, question, ragContext)
		if err != nil {
			return "", "", fmt.Errorf("judge context: %w", err)
		}
		if sufficient {
			return question, ragContext, nil
		}
		rewritten, err := a.rephrase(ctx, question)
		if err != nil {
			return "", "", fmt.Errorf("rephrase question: %w", err)
		}
		if rewritten != "" {
			question = rewritten
		}
	}
}

func (a *Answerer) judgeSufficiency(ctx context.Context, question, ragContext string) (bool, error) {
	verdict, err := a.llm.Complete(ctx, judgePrompt(ragContext, question), 0.2, 32)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(verdict), "yes"), nil
}

func (a *Answerer) rephrase(ctx context.Context, question string) (string, error) {
	rewritten, err := a.llm.Complete(ctx, rephrasePrompt(question), 0.5, 64)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rewritten), nil
}

// FormatContext concatenates hit texts in ranked order separated by
// ContextSeparator. Zero hits yield NoContextSentinel.
func FormatContext(hits []domain.SearchHit) string {
	if len(hits) == 0 {
		return NoContextSentinel
	}
	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Payload.Text
	}
	return strings.Join(texts, ContextSeparator)
}
