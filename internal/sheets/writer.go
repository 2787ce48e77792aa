package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/miles-to-go/internal/model"
)

// Writer publishes a mileage report to a Google Sheets spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write replaces the spreadsheet's contents with the weekly table, the
// overall split, and the full trip log.
func (w *Writer) Write(ctx context.Context, trips []model.CategorizedTrip, weeks []model.WeeklySummary, overall model.OverallSummary) error {
	w.logger.Info("starting report upload",
		"trips", len(trips), "weeks", len(weeks))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := w.prepareReportData(trips, weeks, overall)

	if err := w.writeData(ctx, spreadsheetID, values); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		if err := w.applyFormatting(ctx, spreadsheetID); err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
			// The data is already written; formatting is cosmetic.
		}
	}

	w.logger.Info("report upload completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
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
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		if config.RefreshToken == "" {
			// First run without a stored credential: load the saved token
			// or walk the user through the consent flow.
			var err error
			token, err = GetOrCreateToken(ctx, OAuth2Config{
				ClientID:     config.ClientID,
				ClientSecret: config.ClientSecret,
				TokenFile:    config.TokenFile,
			})
			if err != nil {
				return nil, fmt.Errorf("oauth2 authentication failed: %w", err)
			}
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Mileage",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData lays out the report as stacked sections: overall
// split, weekly table, then the trip log.
func (w *Writer) prepareReportData(trips []model.CategorizedTrip, weeks []model.WeeklySummary, overall model.OverallSummary) [][]any {
	estimatedRows := 16 + len(weeks) + len(trips) + len(overall.TrackedMiles)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{"Mileage Report"},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Miles", overall.TotalMiles},
		[]any{"Business Miles", overall.BusinessMiles, fmt.Sprintf("%.1f%%", overall.BusinessPercent())},
		[]any{"Personal Miles", overall.PersonalMiles(), fmt.Sprintf("%.1f%%", overall.PersonalPercent())},
		[]any{"Commute Miles", overall.CommuteMiles, fmt.Sprintf("%.1f%%", overall.CommutePercent())},
		[]any{"Weekend Miles", overall.WeekendMiles},
	)

	regions := make([]string, 0, len(overall.TrackedMiles))
	for region := range overall.TrackedMiles {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	for _, region := range regions {
		values = append(values, []any{region + " Miles", overall.TrackedMiles[region]})
	}

	values = append(values,
		[]any{},
		[]any{"Weekly Summary"},
		[]any{"Week", "Commute", "Business", "Personal", "Weekend", "Total"},
	)
	for _, week := range weeks {
		values = append(values, []any{
			week.WeekStart.Format("2006-01-02"),
			week.CommuteMiles,
			week.BusinessMiles,
			week.PersonalMiles,
			week.WeekendMiles,
			week.TotalMiles(),
		})
	}

	values = append(values,
		[]any{},
		[]any{"Trips"},
		[]any{"Started", "Stopped", "Category", "Rule", "Miles", "From", "To", "Business", "Source", "Notes"},
	)
	for _, t := range trips {
		values = append(values, []any{
			t.Trip.StartTime.Format("2006-01-02 15:04"),
			t.Trip.EndTime.Format("2006-01-02 15:04"),
			string(t.Result.Category),
			t.Result.Rule,
			t.Trip.DistanceMiles,
			t.Trip.StartAddress,
			t.Trip.EndAddress,
			t.Label.Label,
			string(t.Label.Source),
			t.Trip.Notes,
		})
	}

	return values
}

// writeData writes the data to the spreadsheet in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		valueRange := &sheets.ValueRange{Values: values[i:end]}
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", end-i)
	}

	return nil
}

// applyFormatting bolds the title and section headers.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold:     true,
							FontSize: 16,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
