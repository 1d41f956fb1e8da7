package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// amounts formats money cells for the summary blocks with thousands
// separators; table cells stay numeric so spreadsheets can keep computing.
var amounts = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return amounts.Sprintf("%.2f", v)
}

// BuildTrialBalanceXLSX renders the trial balance as a spreadsheet.
func BuildTrialBalanceXLSX(view *TrialBalanceView) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "trial balance"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Trial Balance")
	_ = f.SetCellValue(sheet, "A2", "Tenant")
	_ = f.SetCellValue(sheet, "B2", view.Tenant)
	if view.AsOf != "" {
		_ = f.SetCellValue(sheet, "A3", "As of")
		_ = f.SetCellValue(sheet, "B3", view.AsOf)
	}
	_ = f.SetCellValue(sheet, "A4", "Balanced")
	_ = f.SetCellValue(sheet, "B4", view.IsBalanced)

	header := 6
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", header), "Code")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", header), "Account")
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", header), "Type")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", header), "Debit")
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", header), "Credit")
	row := header
	for _, r := range view.Rows {
		row++
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Code)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Name)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Type)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Debit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Credit)
	}
	row += 2
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), formatAmount(view.TotalDebit))
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), formatAmount(view.TotalCredit))

	typeSheet := "by type"
	if _, err := f.NewSheet(typeSheet); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(typeSheet, "A1", "Type")
	_ = f.SetCellValue(typeSheet, "B1", "Net")
	typeRow := 1
	for _, ft := range []string{"ASSET", "LIABILITY", "EQUITY", "REVENUE", "EXPENSE"} {
		typeRow++
		_ = f.SetCellValue(typeSheet, fmt.Sprintf("A%d", typeRow), ft)
		_ = f.SetCellValue(typeSheet, fmt.Sprintf("B%d", typeRow), view.ByType[ft])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildGeneralLedgerXLSX renders per-account ledgers as a spreadsheet, one
// block per account.
func BuildGeneralLedgerXLSX(view *GeneralLedgerView) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "general ledger"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "General Ledger")
	_ = f.SetCellValue(sheet, "A2", "Tenant")
	_ = f.SetCellValue(sheet, "B2", view.Tenant)
	if view.AsOf != "" {
		_ = f.SetCellValue(sheet, "A3", "As of")
		_ = f.SetCellValue(sheet, "B3", view.AsOf)
	}

	row := 4
	for _, acc := range view.Accounts {
		row += 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s %s (%s)", acc.Code, acc.Name, acc.Type))
		row++
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Date")
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Voucher")
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Description")
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "Debit")
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), "Credit")
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), "Balance")
		row++
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Opening balance")
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), acc.Opening)
		for _, e := range acc.Entries {
			row++
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Date)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.VoucherNumber)
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Description)
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Debit)
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.Credit)
			_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.Balance)
		}
		row++
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Closing balance")
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), formatAmount(acc.Closing))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAgingXLSX renders the aging table as a spreadsheet.
func BuildAgingXLSX(view *AgingView) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "aging"
	f.SetSheetName("Sheet1", sheet)

	title := "Receivables Aging"
	if view.Type == "PURCHASE" {
		title = "Payables Aging"
	}
	_ = f.SetCellValue(sheet, "A1", title)
	_ = f.SetCellValue(sheet, "A2", "Tenant")
	_ = f.SetCellValue(sheet, "B2", view.Tenant)
	_ = f.SetCellValue(sheet, "A3", "As of")
	_ = f.SetCellValue(sheet, "B3", view.AsOf)

	header := 5
	for col, label := range []string{"Party", "Current", "31-60", "61-90", "90+", "Total"} {
		cell, err := excelize.CoordinatesToCellName(col+1, header)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, label)
	}
	row := header
	for _, r := range view.Rows {
		row++
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Party)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Current)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Days31to60)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Days61to90)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Days90Plus)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Total)
	}
	row += 2
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total outstanding")
	_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), formatAmount(view.Totals.Total))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
