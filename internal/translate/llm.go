package translate

import (
	"context"
	"fmt"
)

// completer sends one prompt to a model and returns its raw text reply.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// LLMTranslator translates batches of lines by prompting a chat model for a
// JSON array of {id, text} objects.
type LLMTranslator struct {
	provider Provider
	model    string
	llm      completer
	options  Options
}

func newLLMTranslator(provider Provider, model string, llm completer, opts Options) *LLMTranslator {
	return &LLMTranslator{
		provider: provider,
		model:    model,
		llm:      llm,
		options:  opts,
	}
}

func (t *LLMTranslator) Provider() Provider { return t.provider }

func (t *LLMTranslator) Model() string { return t.model }

func (t *LLMTranslator) Translate(ctx context.Context, items []Item) ([]Result, error) {
	return runBatches(ctx, items, t.options, t.translateBatch)
}

func (t *LLMTranslator) translateBatch(ctx context.Context, items []Item) ([]Result, error) {
	reply, err := t.llm.complete(ctx, BuildPrompt(t.options, items))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", t.provider, err)
	}
	return parseResponse(string(t.provider), reply, items)
}

func (t *LLMTranslator) Close() error {
	return nil
}
