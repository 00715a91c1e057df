package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TextStrategy is one named text-extraction method over a PDF file on disk.
type TextStrategy struct {
	Name    string
	Extract func(ctx context.Context, path string) (string, error)
}

// Attempt records the outcome of one strategy in a chain run.
type Attempt struct {
	Strategy  string `json:"strategy"`
	Chars     int    `json:"chars"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// ChainOptions configures the strategy chain.
type ChainOptions struct {
	MinTextLength int
	OCRMaxPages   int
	OCRBinary     string
	OCRLanguage   string
	Runner        Runner
}

// Chain runs an ordered, fixed sequence of text-extraction strategies until
// one yields text above the minimum-length bar.
type Chain struct {
	strategies []TextStrategy
	minLength  int
	logger     *slog.Logger
}

// NewChain builds the standard chain: structured-layout extraction, then the
// legacy page-text walker, then OCR over rendered page images.
func NewChain(opts ChainOptions, logger *slog.Logger) *Chain {
	runner := opts.Runner
	if runner == nil {
		runner = execRunner{}
	}

	return &Chain{
		strategies: []TextStrategy{
			StructuredText(),
			LegacyText(),
			OCRText(runner, opts.OCRBinary, opts.OCRLanguage, opts.OCRMaxPages),
		},
		minLength: opts.MinTextLength,
		logger:    logger.With("system", "extraction"),
	}
}

// NewChainWith builds a chain from an explicit strategy list. Used by tests
// and callers that need a non-standard sequence.
func NewChainWith(strategies []TextStrategy, minLength int, logger *slog.Logger) *Chain {
	return &Chain{
		strategies: strategies,
		minLength:  minLength,
		logger:     logger.With("system", "extraction"),
	}
}

// Extract runs the chain against the PDF at path. It returns the first
// strategy output exceeding the minimum length, along with per-attempt
// outcome records. A strategy error is logged and the chain proceeds; only
// full exhaustion returns an error, wrapping ErrUnusableContent with the
// list of attempted strategies.
func (c *Chain) Extract(ctx context.Context, path string) (string, []Attempt, error) {
	attempts := make([]Attempt, 0, len(c.strategies))

	for _, strat := range c.strategies {
		if ctx.Err() != nil {
			return "", attempts, ctx.Err()
		}

		text, err := strat.Extract(ctx, path)
		text = strings.TrimSpace(text)

		attempt := Attempt{Strategy: strat.Name, Chars: len(text)}
		if err != nil {
			attempt.Error = err.Error()
			c.logger.Warn("text strategy failed",
				"strategy", strat.Name,
				"error", err,
			)
			attempts = append(attempts, attempt)
			continue
		}

		if len(text) < c.minLength {
			attempt.Error = fmt.Sprintf("output below minimum length (%d < %d)", len(text), c.minLength)
			c.logger.Warn("text strategy output too short",
				"strategy", strat.Name,
				"chars", len(text),
				"min", c.minLength,
			)
			attempts = append(attempts, attempt)
			continue
		}

		attempt.Succeeded = true
		attempts = append(attempts, attempt)

		c.logger.Info("text extracted",
			"strategy", strat.Name,
			"chars", len(text),
		)

		return text, attempts, nil
	}

	names := make([]string, len(attempts))
	for i, a := range attempts {
		names[i] = a.Strategy
	}

	return "", attempts, fmt.Errorf("%w: tried %s", ErrUnusableContent, strings.Join(names, ", "))
}
