// Package sheets pushes end-of-day summaries to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"turnboard/internal/service"
)

// SheetsService appends one row per technician to the configured spreadsheet
// whenever a day is closed. It implements service.Notifier.
type SheetsService struct {
	srv           *sheetsapi.Service
	spreadsheetID string
	log           zerolog.Logger
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string, logger zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		log:           logger,
	}, nil
}

// DayClosed appends the summary's technician stats to the spreadsheet.
func (s *SheetsService) DayClosed(ctx context.Context, date string, summary *service.Summary) error {
	if summary == nil {
		return nil
	}

	values := make([][]interface{}, 0, len(summary.TechStats))
	for i := range summary.TechStats {
		values = append(values, statRowValues(date, &summary.TechStats[i]))
	}
	if len(values) == 0 {
		return nil
	}

	vr := &sheetsapi.ValueRange{Values: values}
	_, err := s.srv.Spreadsheets.Values.
		Append(s.spreadsheetID, "A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append summary rows: %w", err)
	}

	s.log.Info().
		Str("date", date).
		Int("rows", len(values)).
		Msg("summary pushed to spreadsheet")
	return nil
}

func statRowValues(date string, ts *service.TechStats) []interface{} {
	rowNumber := ""
	if ts.RowNumber != nil {
		rowNumber = fmt.Sprintf("%d", *ts.RowNumber)
	}
	return []interface{}{
		date,
		ts.TechAlias,
		ts.TechName,
		rowNumber,
		ts.RegularTurns,
		ts.BonusTurns,
		ts.TotalValueWithoutPenalty,
		ts.TotalValueWithPenalty,
		ts.PenaltyCount,
		ts.IsAbsent,
	}
}
