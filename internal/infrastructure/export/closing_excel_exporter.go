// Package export renders finance data into downloadable documents.
package export

import (
	"fmt"

	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	closingsSheet = "Closings"
	summarySheet  = "Summary"

	// builtin "#,##0" and "#,##0.00"
	numFmtWholeAmount = 3
	numFmtAmount      = 4
)

var closingHeaders = []string{
	"Business date",
	"Currency",
	"Opening cash",
	"Total sales",
	"Cash sales",
	"Extra income",
	"Cash expenses",
	"System cash",
	"Closing cash",
	"Difference",
	"Status",
	"Transactions",
	"Notes",
	"Closed at",
}

// ClosingExcelExporter writes closings as an xlsx workbook with one row per
// business date, a totals row and a summary sheet
type ClosingExcelExporter struct {
	printer *message.Printer
}

// ExporterOption configures a ClosingExcelExporter
type ExporterOption func(*ClosingExcelExporter)

// WithLanguage sets the language used for number formatting in the summary sheet
func WithLanguage(tag language.Tag) ExporterOption {
	return func(e *ClosingExcelExporter) {
		e.printer = message.NewPrinter(tag)
	}
}

// NewClosingExcelExporter creates a new exporter
func NewClosingExcelExporter(opts ...ExporterOption) *ClosingExcelExporter {
	e := &ClosingExcelExporter{printer: message.NewPrinter(language.English)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type closingTotals struct {
	totalSales   decimal.Decimal
	cashSales    decimal.Decimal
	extraIncome  decimal.Decimal
	cashExpenses decimal.Decimal
	difference   decimal.Decimal
	transactions int
	shortages    int
	surpluses    int
	minorUnits   int32
}

func (t *closingTotals) add(c *finance.CashClosing) {
	t.totalSales = t.totalSales.Add(c.TotalSales)
	t.cashSales = t.cashSales.Add(c.CashSales)
	t.extraIncome = t.extraIncome.Add(c.ExtraIncome)
	t.cashExpenses = t.cashExpenses.Add(c.CashExpenses)
	t.difference = t.difference.Add(c.Difference)
	t.transactions += c.TransactionCount
	t.minorUnits = max(t.minorUnits, c.Currency.MinorUnits())
	switch c.DifferenceStatus {
	case finance.DifferenceStatusShortage:
		t.shortages++
	case finance.DifferenceStatusSurplus:
		t.surpluses++
	}
}

// ExportClosings renders closings in the order given
func (e *ClosingExcelExporter) ExportClosings(closings []finance.CashClosing) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", closingsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	header := make([]any, len(closingHeaders))
	for i, h := range closingHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(closingsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(closingHeaders))
	if err := f.SetCellStyle(closingsSheet, "A1", lastCol+"1", styles.header); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	// amounts print with the finest minor unit among the closings
	totals := closingTotals{minorUnits: 2}
	if len(closings) > 0 {
		totals.minorUnits = 0
	}
	for i := range closings {
		c := &closings[i]
		totals.add(c)

		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			c.BusinessDate.String(),
			string(c.Currency),
			c.OpeningCash.InexactFloat64(),
			c.TotalSales.InexactFloat64(),
			c.CashSales.InexactFloat64(),
			c.ExtraIncome.InexactFloat64(),
			c.CashExpenses.InexactFloat64(),
			c.SystemCash.InexactFloat64(),
			c.ClosingCash.InexactFloat64(),
			c.Difference.InexactFloat64(),
			c.DifferenceStatus.String(),
			c.TransactionCount,
			c.Notes,
			c.ClosedAt,
		}
		if err := f.SetSheetRow(closingsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := e.styleRow(f, row, styles.amountFor(c.Currency.MinorUnits()), styles); err != nil {
			return nil, err
		}
	}

	totalRow := len(closings) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totalValues := []any{
		"Total", nil, nil,
		totals.totalSales.InexactFloat64(),
		totals.cashSales.InexactFloat64(),
		totals.extraIncome.InexactFloat64(),
		totals.cashExpenses.InexactFloat64(),
		nil, nil,
		totals.difference.InexactFloat64(),
		nil,
		totals.transactions,
	}
	if err := f.SetSheetRow(closingsSheet, cell, &totalValues); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}
	if err := e.styleRow(f, totalRow, styles.amountFor(totals.minorUnits), styles); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(closingsSheet, "A", lastCol, 14); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(closingsSheet, "M", "M", 40); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(closingsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := e.writeSummary(f, len(closings), &totals); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ClosingExcelExporter) styleRow(f *excelize.File, row, amountStyle int, styles *sheetStyles) error {
	from, _ := excelize.CoordinatesToCellName(3, row)
	to, _ := excelize.CoordinatesToCellName(10, row)
	if err := f.SetCellStyle(closingsSheet, from, to, amountStyle); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	closedAt, _ := excelize.CoordinatesToCellName(14, row)
	if err := f.SetCellStyle(closingsSheet, closedAt, closedAt, styles.timestamp); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	return nil
}

func (e *ClosingExcelExporter) writeSummary(f *excelize.File, count int, t *closingTotals) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	rows := [][]any{
		{"Closings", count},
		{"Total sales", e.amount(t.totalSales, t.minorUnits)},
		{"Cash sales", e.amount(t.cashSales, t.minorUnits)},
		{"Cash expenses", e.amount(t.cashExpenses, t.minorUnits)},
		{"Net difference", e.amount(t.difference, t.minorUnits)},
		{"Days with shortage", t.shortages},
		{"Days with surplus", t.surpluses},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 20); err != nil {
		return fmt.Errorf("failed to size summary columns: %w", err)
	}
	return nil
}

// amount formats with the exporter's digit grouping and the given number
// of decimals, e.g. 1,234.50 or 1,234
func (e *ClosingExcelExporter) amount(d decimal.Decimal, places int32) string {
	return e.printer.Sprintf(fmt.Sprintf("%%.%df", places), d.InexactFloat64())
}

type sheetStyles struct {
	header      int
	amount      int
	wholeAmount int
	timestamp   int
}

func (s *sheetStyles) amountFor(minorUnits int32) int {
	if minorUnits == 0 {
		return s.wholeAmount
	}
	return s.amount
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}
	wholeAmount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtWholeAmount})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}
	customFmt := "yyyy-mm-dd hh:mm"
	timestamp, err := f.NewStyle(&excelize.Style{CustomNumFmt: &customFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp style: %w", err)
	}
	return &sheetStyles{header: header, amount: amount, wholeAmount: wholeAmount, timestamp: timestamp}, nil
}
