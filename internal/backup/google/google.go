// Package google mirrors time entries into a Google Sheets spreadsheet so a
// user keeps a readable backup outside the application database.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fsreport/internal/backup"
	"fsreport/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year; rows land in "<year> <base>".
	sheetBase string
}

// Ensure interface conformance
var (
	_ backup.EntryAppender = (*Client)(nil)
	_ backup.EntryRemover  = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: GOOGLE_SHEET_NAME (default
// "Field Service").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Field Service"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// sheetName returns the year-scoped sheet the entry belongs to.
func (c *Client) sheetName(year int) string {
	return fmt.Sprintf("%d %s", year, c.sheetBase)
}

// AppendEntry writes one row per entry:
// id, date, start, end, hours, participated, studies, comments.
func (c *Client) AppendEntry(ctx context.Context, e core.TimeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := c.sheetName(e.Date.Year())
	row := []any{
		e.ID,
		e.Date.UTC().Format("2006-01-02"),
		e.TimeStarted.UTC().Format(time.RFC3339),
		e.TimeEnded.UTC().Format(time.RFC3339),
		e.HoursWorked,
		e.Participated,
		strings.Join(e.Participants(), ", "),
		e.Comments,
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:H", sheet), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append entry to sheet %s: %w", sheet, err)
	}

	ref := sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Entry mirrored to Google Sheets", "id", e.ID, "range", ref)
	return ref, nil
}

// RemoveEntry deletes the row holding the given entry id. The id column is
// scanned across the current and previous year sheets; a missing row is not
// an error since the entry may never have been mirrored.
func (c *Client) RemoveEntry(ctx context.Context, entryID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	year := time.Now().Year()
	for _, y := range []int{year, year - 1} {
		sheet := c.sheetName(y)
		found, err := c.removeFromSheet(ctx, sheet, entryID)
		if err != nil {
			return err
		}
		if found {
			slog.InfoContext(ctx, "Entry removed from Google Sheets", "id", entryID, "sheet", sheet)
			return nil
		}
	}

	slog.WarnContext(ctx, "Entry not found in Google Sheets backup", "id", entryID)
	return nil
}

func (c *Client) removeFromSheet(ctx context.Context, sheet, entryID string) (bool, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", sheet)).
		Context(ctx).Do()
	if err != nil {
		// A missing year sheet is expected; anything else is a real failure.
		if strings.Contains(err.Error(), "Unable to parse range") {
			return false, nil
		}
		return false, fmt.Errorf("read id column of %s: %w", sheet, err)
	}

	rowIdx := -1
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == entryID {
			rowIdx = i
			break
		}
	}
	if rowIdx < 0 {
		return false, nil
	}

	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return false, err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIdx),
					EndIndex:   int64(rowIdx + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("delete row %d of %s: %w", rowIdx+1, sheet, err)
	}
	return true, nil
}

func (c *Client) sheetID(ctx context.Context, sheetName string) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == sheetName {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", sheetName)
}
