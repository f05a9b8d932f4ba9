package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/chatledger/internal/config"
	"github.com/Veraticus/chatledger/internal/flow"
	"github.com/Veraticus/chatledger/internal/llm"
	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/service"
	"github.com/Veraticus/chatledger/internal/session"
	"github.com/Veraticus/chatledger/internal/sheets"
	"github.com/Veraticus/chatledger/internal/state"
	"github.com/Veraticus/chatledger/internal/storage"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	draftStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session against the flow engine",
		Long: `Drives the conversation engine from a local REPL: register expense
drafts, approve or edit them, and walk the classification wizard, with
prompts rendered the way a messaging front end would receive them.`,
		RunE: runChat,
	}
	cmd.Flags().String("user", "local", "user id for the session")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetString("user")

	store, err := storage.NewSQLiteStorage(config.DataPath(viper.GetString("storage.path")))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	if err := store.EnsureDefaults(ctx, userID); err != nil {
		return fmt.Errorf("failed to seed classifications: %w", err)
	}

	engine := buildEngine(ctx, store)
	engine.StartSweeper(ctx)

	fmt.Println(infoStyle.Render("chatledger chat: 'expense <amount> <merchant>' to start, '/<action>' for buttons, 'quit' to exit"))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case strings.HasPrefix(line, "expense "):
			handleExpenseCommand(ctx, engine, store, userID, strings.TrimPrefix(line, "expense "))
		case strings.HasPrefix(line, "/"):
			action, parseErr := model.ParseAction(strings.TrimPrefix(line, "/"))
			if parseErr != nil {
				fmt.Println(errorStyle.Render(parseErr.Error()))
				continue
			}
			prompt, actErr := engine.HandleAction(ctx, userID, action)
			renderOutcome(prompt, actErr)
		default:
			prompt, textErr := engine.HandleText(ctx, userID, line)
			renderOutcome(prompt, textErr)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// buildEngine wires the engine with whatever collaborators are configured,
// degrading to local-only stand-ins when credentials are absent.
func buildEngine(ctx context.Context, store *storage.SQLiteStorage) *flow.Engine {
	drafts := session.NewDraftStore()
	sessions := session.NewStore(session.WithTimeout(config.SessionTimeout()))
	registry := state.NewRegistry()

	var suggester service.CategorySuggester
	llmCfg := config.LoadLLMConfig()
	if llmCfg.APIKey != "" {
		s, err := llm.NewSuggester(llmCfg, slog.Default())
		if err != nil {
			slog.Warn("suggester unavailable, falling back to no suggestions", "error", err)
		} else {
			suggester = s
		}
	}
	if suggester == nil {
		suggester = noSuggester{}
	}

	var persister service.ExpensePersister
	if sheetsCfg, err := config.LoadSheetsConfig(); err == nil {
		w, werr := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
		if werr != nil {
			slog.Warn("sheets writer unavailable, saving locally only", "error", werr)
		} else {
			persister = w
		}
	}
	if persister == nil {
		persister = localPersister{}
	}

	return flow.NewWithConfig(drafts, sessions, registry, store, suggester, persister, store, config.LoadEngineConfig())
}

// handleExpenseCommand plays the role of the upstream parser: it turns
// "expense 250.50 pizza place" into a draft with a keyword-matched category.
func handleExpenseCommand(ctx context.Context, engine *flow.Engine, store *storage.SQLiteStorage, userID, rest string) {
	parts := strings.Fields(rest)
	if len(parts) == 0 {
		fmt.Println(errorStyle.Render("usage: expense <amount> [merchant...]"))
		return
	}
	amount, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || amount <= 0 {
		fmt.Println(errorStyle.Render("amount must be a positive number"))
		return
	}

	merchant := strings.Join(parts[1:], " ")
	category := "miscellaneous"
	if match, matchErr := store.MatchKeyword(ctx, userID, merchant); matchErr == nil && match != nil {
		category = match.Name
	}

	draft := engine.RegisterDraft(userID, model.Attributes{
		Amount:   amount,
		Merchant: merchant,
		Category: category,
		Date:     time.Now(),
	})

	fmt.Println(draftStyle.Render(fmt.Sprintf(
		"Draft %s\n💰 %.2f  %s\n📂 %s\nactions: /approve_%s  /edit_%s  /reject_%s",
		draft.ID, amount, merchant, category, draft.ID, draft.ID, draft.ID)))
}

// renderOutcome is the presentation layer for the REPL: it maps the
// engine's abstract prompt descriptor to text.
func renderOutcome(prompt *model.Prompt, err error) {
	if err != nil && prompt == nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	if prompt == nil {
		return
	}

	switch prompt.Notice {
	case model.NoticeApproved:
		fmt.Println(infoStyle.Render("✅ expense approved and saved"))
	case model.NoticeRejected:
		fmt.Println(infoStyle.Render("❌ expense rejected"))
	case model.NoticeSaved:
		fmt.Println(infoStyle.Render("💾 changes saved\n" + prompt.Summary))
	case model.NoticeCancelled:
		fmt.Println(infoStyle.Render("🚫 flow cancelled"))
	case model.NoticeExpired:
		fmt.Println(errorStyle.Render("session expired; start again from the draft"))
	case model.NoticeNoActiveFlow:
		fmt.Println(errorStyle.Render("nothing in progress"))
	case model.NoticeSaveFailed:
		fmt.Println(errorStyle.Render("saving failed; your edits are intact, try /save_expense_<id> again"))
	case model.NoticeInvalidInput:
		fmt.Println(errorStyle.Render("that didn't parse; " + stepHint(prompt.Step)))
		return
	}

	if hint := stepHint(prompt.Step); hint != "" && prompt.Notice != model.NoticeSaved {
		fmt.Println(promptStyle.Render(hint))
	}
	if prompt.Step == model.StepConfirmingSuggestion {
		fmt.Println(promptStyle.Render(fmt.Sprintf("did you mean %q instead of %q? (yes/no)", prompt.Suggestion, prompt.Candidate)))
	}
}

func stepHint(step model.Step) string {
	switch step {
	case model.StepCollectingAmount:
		return "send the new amount (e.g. 350 or 350.50)"
	case model.StepCollectingCategory:
		return "send the new category"
	case model.StepReady:
		return "ready: /save_expense_<id> or /cancel_edit_<id>"
	case model.StepCollectingName:
		return "name for the new classification?"
	case model.StepCollectingGlyph:
		return "pick a glyph (or anything; I'll default it)"
	case model.StepCollectingKeywords:
		return "comma-separated keywords, or 'none'"
	case model.StepDone:
		return "classification created"
	default:
		return ""
	}
}

type noSuggester struct{}

func (noSuggester) Suggest(_ context.Context, _ string, _ []string) (string, error) {
	return "", nil
}

type localPersister struct{}

func (localPersister) Save(_ context.Context, userID string, attrs model.Attributes, status service.SaveStatus) error {
	slog.Info("expense saved locally", "user_id", userID, "amount", attrs.Amount, "category", attrs.Category, "status", status)
	return nil
}
