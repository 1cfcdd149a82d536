package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateColumns is the fixed header order of the past-sales import template
var TemplateColumns = []string{
	ColAddress, ColSuburb, ColStatus,
	ColAppraisalValueLow, ColAppraisalValueHigh, ColListingPrice, ColSaleValue,
	ColFirstContactDate, ColAppraisalDate, ColListingSignedDate, ColListingLiveDate,
	ColUnconditionalDate, ColSettlementDate, ColLostDate, ColLostReason,
	ColVendorName, ColVendorEmail, ColVendorPhone, ColVendorMovedTo, ColVendorReferralPartner,
	ColBuyerName, ColBuyerEmail, ColBuyerPhone, ColBuyerReferralPartner,
	ColLeadSource,
}

// templateExampleRows holds one sold and one withdrawn example in template
// column order
var templateExampleRows = [][]string{
	{
		"26 Milan Drive, Glen Eden", "Glen Eden", "sold",
		"850000", "900000", "879000", "892000",
		"2024-02-10", "2024-02-17", "2024-03-01", "2024-03-08",
		"2024-04-26", "2024-05-24", "", "",
		"Sarah Thompson", "sarah.t@example.com", "021 555 0187", "12 Rimu Street, New Lynn", "no",
		"James Chen", "james.c@example.com", "022 555 0243", "yes",
		"Open home",
	},
	{
		"45 Kauri Road, Titirangi", "Titirangi", "withdrawn",
		"1050000", "1150000", "", "",
		"2024-01-20", "2024-01-27", "", "",
		"", "", "2024-03-15", "Decided not to sell",
		"Mark Wilson", "mark.w@example.com", "027 555 0912", "", "no",
		"", "", "", "no",
		"Referral",
	},
}

var templateNotes = []string{
	"# Dates must be YYYY-MM-DD. Addresses containing commas must be quoted.",
	"# status must be sold or withdrawn.",
	"# When status is sold: sale_value, listing_live_date, unconditional_date and settlement_date are required.",
	"# When status is withdrawn: only listing_address and status are required; lost_reason is recommended.",
}

// TemplateCSV renders the downloadable CSV template: header, the two example
// rows, then comment lines documenting the conditional-requirement rules
func TemplateCSV() []byte {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	_ = w.Write(TemplateColumns)
	for _, row := range templateExampleRows {
		_ = w.Write(row)
	}
	w.Flush()

	for _, note := range templateNotes {
		buf.WriteString(note)
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// WriteTemplateXLSX writes a styled spreadsheet variant of the template
func WriteTemplateXLSX(outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Past Sales"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Write headers
	for i, header := range TemplateColumns {
		cell := fmt.Sprintf("%s1", columnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	// Set header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", columnName(len(TemplateColumns)-1)), headerStyle)

	// Write example rows
	for rowIdx, rowData := range templateExampleRows {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", columnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Address and contact columns need extra width
	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "C", 15)
	f.SetColWidth(sheetName, "D", "O", 18)
	f.SetColWidth(sheetName, "P", "Y", 22)

	// Add instructions
	instructionsStartRow := len(templateExampleRows) + 4
	instructions := []string{
		"Instructions:",
		"1. status: sold or withdrawn.",
		"2. Dates: YYYY-MM-DD format.",
		"3. When status is sold: sale_value, listing_live_date, unconditional_date and settlement_date are required.",
		"4. When status is withdrawn: only listing_address and status are required; lost_reason is recommended.",
		"5. vendor_referral_partner / buyer_referral_partner: yes or no.",
		"",
		"Note: Do not modify the header row. Fill data starting from row 2.",
	}

	for i, instruction := range instructions {
		cell := fmt.Sprintf("A%d", instructionsStartRow+i)
		f.SetCellValue(sheetName, cell, instruction)
	}

	instructionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F8FF"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", instructionsStartRow), fmt.Sprintf("A%d", instructionsStartRow), instructionStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

func columnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
