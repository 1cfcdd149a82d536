package main

import (
	"agency-crm/internal/importer"
	"flag"
	"log"
	"os"
	"path/filepath"
)

// Writes the past-sales import templates (CSV and XLSX) to an output
// directory, for bundling as static downloads.
func main() {
	outDir := flag.String("out", "./storage/templates", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	csvPath := filepath.Join(*outDir, "past_sales_template.csv")
	if err := os.WriteFile(csvPath, importer.TemplateCSV(), 0o644); err != nil {
		log.Fatalf("Failed to write CSV template: %v", err)
	}
	log.Printf("Wrote %s", csvPath)

	xlsxPath := filepath.Join(*outDir, "past_sales_template.xlsx")
	if err := importer.WriteTemplateXLSX(xlsxPath); err != nil {
		log.Fatalf("Failed to write XLSX template: %v", err)
	}
	log.Printf("Wrote %s", xlsxPath)
}
