package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary       = "Summary"
	SheetCashFlow      = "Cash Flow"
	SheetExitScenarios = "Exit Scenarios"
	SheetSensitivity   = "Sensitivity"
	SheetWaterfall     = "Waterfall"
)

// Built-in excel number formats.
const (
	numFmtThousands = 3  // #,##0
	numFmtPercent   = 10 // 0.00%
	numFmtDecimal   = 2  // 0.00
)

type workbook struct {
	file    *excelize.File
	header  int
	money   int
	percent int
	decimal int
}

// XLSXFormat outputs the forecast as an excel workbook.
func XLSXFormat(w io.Writer, f *forecast.Forecast) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer func() {
		_ = wb.file.Close()
	}()

	for _, write := range []func(*forecast.Forecast) error{
		wb.summarySheet, wb.cashFlowSheet, wb.scenarioSheet, wb.sensitivitySheet, wb.waterfallSheet,
	} {
		if err := write(f); err != nil {
			return err
		}
	}

	if err := wb.file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func newWorkbook() (*workbook, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	wb := &workbook{file: file}

	var err error
	if wb.header, err = file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if wb.money, err = file.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return nil, err
	}
	if wb.percent, err = file.NewStyle(&excelize.Style{NumFmt: numFmtPercent}); err != nil {
		return nil, err
	}
	if wb.decimal, err = file.NewStyle(&excelize.Style{NumFmt: numFmtDecimal}); err != nil {
		return nil, err
	}
	return wb, nil
}

// table writes a bold heading row followed by the data rows, applying the
// per-column style when one is given.
func (wb *workbook) table(sheet string, headings []string, styles []int, rows [][]interface{}) error {
	if sheet != SheetSummary {
		if _, err := wb.file.NewSheet(sheet); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(headings))
	for i, h := range headings {
		header[i] = h
	}
	if err := wb.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headings), 1)
	if err != nil {
		return err
	}
	if err := wb.file.SetCellStyle(sheet, "A1", last, wb.header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.file.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	for col, style := range styles {
		if style == 0 || len(rows) == 0 {
			continue
		}
		top, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(col+1, len(rows)+1)
		if err != nil {
			return err
		}
		if err := wb.file.SetCellStyle(sheet, top, bottom, style); err != nil {
			return err
		}
	}

	return wb.file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (wb *workbook) summarySheet(f *forecast.Forecast) error {
	r := f.Result
	rows := [][]interface{}{
		{"Deal", f.Name},
		{"Run", f.RunID},
		{"Recommendation", string(r.Recommendation)},
		{"Hold years", r.HoldYears},
		{"Purchase price", r.Basis.PurchasePrice},
		{"Closing costs", r.Basis.ClosingCosts},
		{"Development budget", r.Basis.DevelopmentBudget},
		{"Loan amount", r.Basis.LoanAmount},
		{"Loan fees", r.Basis.LoanFees},
		{"Total basis", r.Basis.TotalBasis},
		{"Equity required", r.Basis.EquityRequired},
		{"Levered IRR", optionalRatio(r.LeveredIRR)},
		{"Unlevered IRR", optionalRatio(r.UnleveredIRR)},
		{"Equity multiple", r.EquityMultiple},
		{"Net profit", r.NetProfit},
		{"Year 1 cash on cash", r.CashOnCashYear1},
		{"Going-in cap rate", r.GoingInCapRate},
		{"Annual debt service", r.AnnualDebtService},
		{"DSCR", r.DSCR},
		{"Debt yield", r.DebtYield},
		{"Sale price", r.Exit.SalePrice},
		{"Net sale proceeds", r.Exit.NetProceeds},
		{"Recommended loan (" + string(f.DebtSizing.LoanType) + ")", f.DebtSizing.RecommendedLoan},
		{"Binding constraint", f.DebtSizing.BindingConstraint},
	}
	if r.RentRoll.HasLeases {
		rows = append(rows, []interface{}{"WALT (years)", r.WeightedAverageLeaseTerm})
	}
	for _, warning := range f.Warnings {
		rows = append(rows, []interface{}{"Warning", warning})
	}
	return wb.table(SheetSummary, []string{"Metric", "Value"}, nil, rows)
}

func (wb *workbook) cashFlowSheet(f *forecast.Forecast) error {
	headings := []string{
		"Year", "Gross Potential Rent", "Effective Gross Income", "Operating Expenses", "NOI",
		"Debt Service", "Refinance Proceeds", "Levered Cash Flow", "Unlevered Cash Flow",
		"Cumulative Levered Cash Flow", "Cash on Cash",
	}
	styles := []int{0, wb.money, wb.money, wb.money, wb.money, wb.money, wb.money, wb.money, wb.money, wb.money, wb.percent}
	rows := make([][]interface{}, 0, len(f.Result.CashFlows))
	for _, row := range f.Result.CashFlows {
		rows = append(rows, []interface{}{
			row.Year, row.GrossPotentialRent, row.EffectiveGrossIncome, row.OperatingExpenses, row.NOI,
			row.DebtService, row.RefinanceProceeds, row.LeveredCashFlow, row.UnleveredCashFlow,
			row.CumulativeLeveredCashFlow, row.CashOnCash,
		})
	}
	return wb.table(SheetCashFlow, headings, styles, rows)
}

func (wb *workbook) scenarioSheet(f *forecast.Forecast) error {
	headings := []string{
		"Scenario", "Label", "Path", "Refinance Year", "Exit Year", "IRR", "IRR Status",
		"Equity Multiple", "Net Profit", "Refinance Proceeds", "Recommendation",
	}
	styles := []int{0, 0, 0, 0, 0, wb.percent, 0, wb.decimal, wb.money, wb.money, 0}
	var rows [][]interface{}
	if f.Analysis != nil {
		for _, s := range f.Analysis.Scenarios {
			var refinanceYear interface{}
			if s.RefinanceYear != nil {
				refinanceYear = *s.RefinanceYear
			}
			rows = append(rows, []interface{}{
				s.ID, s.Label, string(s.Path), refinanceYear, s.ExitYear, optionalRatio(s.IRR), s.IRRStatus.String(),
				s.EquityMultiple, s.NetProfit, s.RefinanceProceeds, string(s.Recommendation),
			})
		}
	}
	return wb.table(SheetExitScenarios, headings, styles, rows)
}

func (wb *workbook) sensitivitySheet(f *forecast.Forecast) error {
	headings := []string{"Variable", "Value", "Levered IRR", "Equity Multiple", "Net Profit", "DSCR", "Recommendation"}
	styles := []int{0, 0, wb.percent, wb.decimal, wb.money, wb.decimal, 0}
	var rows [][]interface{}
	for _, series := range f.Sensitivity {
		for _, point := range series.Points {
			rows = append(rows, []interface{}{
				string(series.Variable), point.Value, optionalRatio(point.LeveredIRR), point.EquityMultiple,
				point.NetProfit, point.DSCR, string(point.Recommendation),
			})
		}
	}
	return wb.table(SheetSensitivity, headings, styles, rows)
}

// waterfallSheet is only added when a waterfall was distributed.
func (wb *workbook) waterfallSheet(f *forecast.Forecast) error {
	if f.Waterfall == nil {
		return nil
	}
	headings := []string{"Tier", "Distributed", "GP", "LP"}
	styles := []int{0, wb.money, wb.money, wb.money}
	rows := make([][]interface{}, 0, len(f.Waterfall.Tiers)+1)
	for _, tier := range f.Waterfall.Tiers {
		rows = append(rows, []interface{}{tier.Name, tier.Distributed, tier.GP, tier.LP})
	}
	rows = append(rows, []interface{}{"Total", f.Waterfall.TotalDistributed, f.Waterfall.GPTotal, f.Waterfall.LPTotal})
	return wb.table(SheetWaterfall, headings, styles, rows)
}

// optionalRatio leaves an unsolved ratio as an empty cell.
func optionalRatio(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
