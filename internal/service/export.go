package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/model"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	csvBioLength   = 200
	xlsxBioLength  = 500
	xlsxSheet      = "Investors"
	xlsxHeaderFill = "4F46E5"
	maxDirectItems = 1000
)

var (
	csvHeader  = []string{"name", "title", "company", "email", "linkedin_url", "location", "bio", "investment_focus", "source"}
	xlsxHeader = []string{"Name", "Title", "Company", "Email", "LinkedIn URL", "Location", "Bio", "Investment Focus", "Source"}
	xlsxWidths = []float64{25, 30, 30, 35, 50, 25, 60, 40, 15}
)

// ExportService writes investor lists as downloadable files.
type ExportService struct {
	conversations *ConversationService
}

// NewExportService creates a new export service.
func NewExportService(conversations *ConversationService) *ExportService {
	return &ExportService{conversations: conversations}
}

// Conversation writes every investor of a conversation in format and returns
// the suggested filename. A conversation without investors produces a file
// with only the header row.
func (s *ExportService) Conversation(ctx context.Context, w io.Writer, userID, conversationID, format string) (string, error) {
	investors, err := s.conversations.Investors(ctx, userID, conversationID)
	if err != nil {
		return "", err
	}
	prefix := conversationID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "investors_" + prefix + "." + format, Write(w, format, investors)
}

// Direct writes investors posted by the client.
func (s *ExportService) Direct(w io.Writer, req *model.ExportRequest, format string) (string, error) {
	if req == nil || len(req.Investors) == 0 {
		return "", apperr.New(apperr.KindValidation, "export.Direct", "no investors provided")
	}
	if len(req.Investors) > maxDirectItems {
		return "", apperr.Newf(apperr.KindValidation, "export.Direct", "at most %d investors can be exported", maxDirectItems)
	}
	return "investors." + format, Write(w, format, req.Investors)
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes investors in format.
func Write(w io.Writer, format string, investors []model.Investor) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, investors)
	case FormatXLSX:
		return WriteXLSX(w, investors)
	default:
		return apperr.Newf(apperr.KindValidation, "export.Write", "unsupported export format %q", format)
	}
}

// WriteCSV writes investors as CSV with a header row.
func WriteCSV(w io.Writer, investors []model.Investor) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, inv := range investors {
		if err := cw.Write(exportRow(inv, csvBioLength)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes investors as a single-sheet workbook with a styled header.
func WriteXLSX(w io.Writer, investors []model.Investor) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{xlsxHeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := setRow(f, 1, xlsxHeader); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(xlsxHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, inv := range investors {
		if err := setRow(f, i+2, exportRow(inv, xlsxBioLength)); err != nil {
			return err
		}
	}

	for i, width := range xlsxWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(xlsxSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func exportRow(inv model.Investor, bioLength int) []string {
	row := []string{
		inv.Name,
		inv.Title,
		inv.Company,
		inv.Email,
		inv.ProfileURL,
		inv.Location,
		clip(inv.Bio, bioLength),
		strings.Join(inv.InvestmentFocus, ", "),
		inv.Source,
	}
	for i, v := range row {
		row[i] = inertCell(v)
	}
	return row
}

// inertCell prefixes scraped text that a spreadsheet would evaluate as a
// formula with a single quote.
func inertCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}
