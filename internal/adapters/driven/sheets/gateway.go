package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
)

// Spreadsheet layout.
const (
	SpreadsheetTitle = "Auristitutum Habit Logs"
	SheetTitle       = "Logs"

	headerRange = SheetTitle + "!A1:F1"
	appendRange = SheetTitle + "!A:F"
	dataRange   = SheetTitle + "!A2:F"

	columnCount = 6
)

// Header is the first row of the Logs sheet.
var Header = []string{"Date", "Habit", "Type", "Status", "Value", "Synced At"}

// Gateway implements driven.SpreadsheetGateway on the Sheets v4 API.
type Gateway struct {
	limiter *RateLimiter
	opts    []option.ClientOption
}

var _ driven.SpreadsheetGateway = (*Gateway)(nil)

// NewGateway creates a gateway. opts are added to every Sheets client,
// after the credential's token source.
func NewGateway(limiter *RateLimiter, opts ...option.ClientOption) *Gateway {
	if limiter == nil {
		limiter = NewRateLimiter(0, 0)
	}
	return &Gateway{limiter: limiter, opts: opts}
}

func (g *Gateway) service(ctx context.Context, cred domain.Credential) (*sheets.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(NewTokenSource(cred))}, g.opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return srv, nil
}

// call waits for the limiter, runs fn and records rate limit responses.
func (g *Gateway) call(ctx context.Context, fn func() error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	err := fn()
	if IsRateLimited(err) {
		g.limiter.RecordRateLimitError(retryAfter(err))
	}
	return toDomain(WrapError(err))
}

// Create makes a new spreadsheet with a formatted, frozen header row and
// returns its ID.
func (g *Gateway) Create(ctx context.Context, cred domain.Credential) (string, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return "", err
	}

	var created *sheets.Spreadsheet
	err = g.call(ctx, func() error {
		created, err = srv.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: SpreadsheetTitle},
			Sheets: []*sheets.Sheet{{
				Properties: &sheets.SheetProperties{
					Title:          SheetTitle,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
			}},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("creating spreadsheet: %w", err)
	}

	spreadsheetID := created.SpreadsheetId
	var sheetID int64
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		sheetID = created.Sheets[0].Properties.SheetId
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	err = g.call(ctx, func() error {
		_, err := srv.Spreadsheets.Values.Update(spreadsheetID, headerRange, &sheets.ValueRange{
			Values: [][]interface{}{header},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("writing header row: %w", err)
	}

	err = g.call(ctx, func() error {
		_, err := srv.Spreadsheets.BatchUpdate(spreadsheetID, formatHeaderRequest(sheetID)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("formatting header row: %w", err)
	}

	return spreadsheetID, nil
}

func formatHeaderRequest(sheetID int64) *sheets.BatchUpdateSpreadsheetRequest {
	return &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   columnCount,
						ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							BackgroundColor:     &sheets.Color{Red: 0.88, Green: 0.88, Blue: 0.88},
							TextFormat:          &sheets.TextFormat{Bold: true, FontSize: 11},
							HorizontalAlignment: "CENTER",
						},
					},
					Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
				},
			},
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:         sheetID,
						GridProperties:  &sheets.GridProperties{FrozenRowCount: 1},
						ForceSendFields: []string{"SheetId"},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}
}

// Append adds entries as new rows after the existing data.
func (g *Gateway) Append(ctx context.Context, cred domain.Credential, spreadsheetID string, entries []domain.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}
	if err := g.append(ctx, srv, spreadsheetID, entries); err != nil {
		return fmt.Errorf("appending rows: %w", err)
	}
	return nil
}

func (g *Gateway) append(ctx context.Context, srv *sheets.Service, spreadsheetID string, entries []domain.LogEntry) error {
	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		rows[i] = []interface{}{e.Date, e.Habit, e.Type, e.Status, e.Value, e.Timestamp}
	}
	return g.call(ctx, func() error {
		_, err := srv.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{Values: rows}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
}

// List returns every row below the header, in sheet order.
// Rows are returned as stored; callers filter incomplete ones.
func (g *Gateway) List(ctx context.Context, cred domain.Credential, spreadsheetID string) ([]domain.LogEntry, error) {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	var resp *sheets.ValueRange
	err = g.call(ctx, func() error {
		resp, err = srv.Spreadsheets.Values.Get(spreadsheetID, dataRange).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	entries := make([]domain.LogEntry, 0, len(resp.Values))
	for _, row := range resp.Values {
		entries = append(entries, domain.LogEntry{
			Date:      cell(row, 0),
			Habit:     cell(row, 1),
			Type:      cell(row, 2),
			Status:    cell(row, 3),
			Value:     cell(row, 4),
			Timestamp: cell(row, 5),
		})
	}
	return entries, nil
}

// Replace clears every row below the header and writes entries instead.
func (g *Gateway) Replace(ctx context.Context, cred domain.Credential, spreadsheetID string, entries []domain.LogEntry) error {
	srv, err := g.service(ctx, cred)
	if err != nil {
		return err
	}

	err = g.call(ctx, func() error {
		_, err := srv.Spreadsheets.Values.Clear(spreadsheetID, dataRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("clearing rows: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}
	if err := g.append(ctx, srv, spreadsheetID, entries); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprint(row[i])
}

// retryAfter reads the Retry-After header of a 429 response, in seconds.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(strings.TrimSpace(gerr.Header.Get("Retry-After")))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
