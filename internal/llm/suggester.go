package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const suggestSystemPrompt = "You match a user-typed expense category against their existing categories. " +
	"Respond with ONLY the single best-matching existing category name, exactly as given, " +
	"or NEW_CATEGORY if none is a reasonable match. No other text."

// Suggester resolves an unrecognized category label to the closest existing
// classification name, or to nothing at all. Implements
// service.CategorySuggester.
type Suggester struct {
	client Client
	logger *slog.Logger
}

// NewSuggester creates a suggester backed by the configured provider.
func NewSuggester(cfg Config, logger *slog.Logger) (*Suggester, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic", "":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{client: client, logger: logger}, nil
}

// NewSuggesterWithClient wires an explicit client, used by tests.
func NewSuggesterWithClient(client Client, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suggester{client: client, logger: logger}
}

// Suggest returns the existing name the model picked, or "" when the model
// answered NEW_CATEGORY or anything that is not an existing name. Callers
// treat "" and an error identically.
func (s *Suggester) Suggest(ctx context.Context, candidate string, existing []string) (string, error) {
	if len(existing) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf("The user entered %q as a category. Their existing categories are: %s.",
		candidate, strings.Join(existing, ", "))

	reply, err := s.client.Complete(ctx, suggestSystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("category suggestion failed", "candidate", candidate, "error", err)
		return "", err
	}

	reply = strings.ToLower(strings.TrimSpace(reply))
	if reply == "" || strings.EqualFold(reply, "new_category") {
		return "", nil
	}

	// Anything that is not literally an existing name counts as no match.
	for _, name := range existing {
		if strings.EqualFold(name, reply) {
			s.logger.Debug("suggested existing category", "candidate", candidate, "suggestion", name)
			return name, nil
		}
	}

	s.logger.Debug("unrecognized suggestion reply", "candidate", candidate, "reply", reply)
	return "", nil
}
