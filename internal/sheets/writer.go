package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/service"
)

var headerRow = []any{"Date", "Amount", "Merchant", "Category", "Payment Method", "Notes", "Status", "Recorded At"}

// Writer appends finalized expenses to a Google Sheet, one tab per user.
// Implements service.ExpensePersister.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets expense writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Save appends one expense row to the user's tab, creating the tab with a
// header row on first use. Implements the persistence contract: the caller
// decides what a failure means; Save itself only retries transient API
// errors per the configured retry policy.
func (w *Writer) Save(ctx context.Context, userID string, attrs model.Attributes, status service.SaveStatus) error {
	tab := "user_" + userID

	if err := w.ensureTab(ctx, tab); err != nil {
		return fmt.Errorf("failed to ensure tab for user %s: %w", userID, err)
	}

	date := attrs.Date
	if date.IsZero() {
		date = time.Now()
	}

	row := []any{
		date.Format("2006-01-02"),
		attrs.Amount,
		attrs.Merchant,
		attrs.Category,
		attrs.PaymentMethod,
		attrs.Notes,
		string(status),
		time.Now().Format(time.RFC3339),
	}

	appendCall := func() error {
		_, err := w.service.Spreadsheets.Values.Append(
			w.config.SpreadsheetID,
			tab+"!A:H",
			&sheets.ValueRange{Values: [][]any{row}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
	}
	if err := common.WithRetry(ctx, appendCall, retryOpts); err != nil {
		return fmt.Errorf("failed to append expense row: %w", err)
	}

	w.logger.Info("expense written to sheet",
		"user_id", userID,
		"amount", attrs.Amount,
		"category", attrs.Category,
		"status", status)
	return nil
}

// ensureTab creates the user's tab with a header row if it does not exist.
func (w *Writer) ensureTab(ctx context.Context, tab string) error {
	spreadsheet, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			},
		},
	}
	if _, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create tab %s: %w", tab, err)
	}

	_, err = w.service.Spreadsheets.Values.Append(
		w.config.SpreadsheetID,
		tab+"!A:H",
		&sheets.ValueRange{Values: [][]any{headerRow}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	w.logger.Info("created user tab", "tab", tab)
	return nil
}

// createSheetsService builds an authenticated Sheets client from either a
// service account key or an OAuth2 refresh token.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
