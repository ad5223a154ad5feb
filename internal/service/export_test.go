package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

func sampleInvestors() []model.Investor {
	return []model.Investor{
		{
			Name:            "Jane Doe",
			Title:           "Partner",
			Company:         "Acme Ventures",
			ProfileURL:      "https://www.linkedin.com/in/jane-doe",
			Location:        "New York",
			Bio:             strings.Repeat("b", 300),
			InvestmentFocus: []string{"fintech", "saas"},
			Source:          "linkedin",
		},
		{Name: "John Roe", Source: "web_search"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleInvestors()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", rows[1][4])
	assert.Equal(t, strings.Repeat("b", 200)+"...", rows[1][6])
	assert.Equal(t, "fintech, saas", rows[1][7])
	assert.Equal(t, "", rows[2][1])
}

func TestExportCellsAreNotFormulas(t *testing.T) {
	investors := []model.Investor{{
		Name:    `=HYPERLINK("http://evil.example","click")`,
		Title:   "+1 555",
		Company: "@Acme",
		Bio:     "-2+3",
		Source:  "linkedin",
	}}

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, investors))
	rows, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `'=HYPERLINK("http://evil.example","click")`, rows[1][0])
	assert.Equal(t, "'+1 555", rows[1][1])
	assert.Equal(t, "'@Acme", rows[1][2])
	assert.Equal(t, "'-2+3", rows[1][6])
	assert.Equal(t, "linkedin", rows[1][8])

	var xlsxBuf bytes.Buffer
	require.NoError(t, WriteXLSX(&xlsxBuf, investors))
	f, err := excelize.OpenReader(&xlsxBuf)
	require.NoError(t, err)
	defer f.Close()
	formula, err := f.GetCellFormula("Investors", "A2")
	require.NoError(t, err)
	assert.Empty(t, formula)
	name, err := f.GetCellValue("Investors", "A2")
	require.NoError(t, err)
	assert.Equal(t, `'=HYPERLINK("http://evil.example","click")`, name)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleInvestors()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Investors"}, f.GetSheetList())
	rows, err := f.GetRows("Investors")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, xlsxHeader, rows[0])
	assert.Equal(t, "Acme Ventures", rows[1][2])
	assert.Equal(t, strings.Repeat("b", 300), rows[1][6])

	width, err := f.GetColWidth("Investors", "E")
	require.NoError(t, err)
	assert.Equal(t, 50.0, width)
}

func TestExportConversation(t *testing.T) {
	h := newHarness(t, harnessOptions{}, &fakeLLM{name: "a", reply: "ok"})
	h.search.results = linkedInResults(4)
	exports := NewExportService(NewConversationService(h.store, logger.NewNop()))
	ctx := context.Background()

	resp, err := h.chat.Handle(ctx, "u1", &model.ChatRequest{Message: "find fintech investors"})
	require.NoError(t, err)

	var buf bytes.Buffer
	name, err := exports.Conversation(ctx, &buf, "u1", resp.ConversationID, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "investors_"+resp.ConversationID[:8]+".csv", name)
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	_, err = exports.Conversation(ctx, &bytes.Buffer{}, "u2", resp.ConversationID, FormatCSV)
	assert.ErrorIs(t, err, apperr.NotFound)
}

func TestExportEmptyConversationWritesHeader(t *testing.T) {
	h := newHarness(t, harnessOptions{}, &fakeLLM{name: "a", reply: "ok"})
	exports := NewExportService(NewConversationService(h.store, logger.NewNop()))
	ctx := context.Background()

	resp, err := h.chat.Handle(ctx, "", &model.ChatRequest{Message: "hello there"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = exports.Conversation(ctx, &buf, "", resp.ConversationID, FormatCSV)
	require.NoError(t, err)
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{csvHeader}, rows)
}

func TestExportDirect(t *testing.T) {
	exports := NewExportService(nil)

	_, err := exports.Direct(&bytes.Buffer{}, &model.ExportRequest{}, FormatCSV)
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = exports.Direct(&bytes.Buffer{}, &model.ExportRequest{Investors: make([]model.Investor, 1001)}, FormatCSV)
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = exports.Direct(&bytes.Buffer{}, &model.ExportRequest{Investors: sampleInvestors()}, "pdf")
	assert.ErrorIs(t, err, apperr.Validation)

	var buf bytes.Buffer
	name, err := exports.Direct(&buf, &model.ExportRequest{Investors: sampleInvestors()}, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "investors.xlsx", name)
	assert.NotZero(t, buf.Len())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
}
