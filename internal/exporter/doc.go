// Package exporter writes the derived discipline views as files.
//
// Views are first flattened into a Table (a header row plus string
// records). A Table can then be written by:
//
// CSVWriter: CSV with an optional UTF-8 BOM so spreadsheet tools detect
// the encoding, either to any io.Writer or atomically into the output
// directory.
//
// WorkbookWriter: a single .xlsx workbook with one sheet per table.
//
// Example usage:
//
//	tables := []exporter.Table{
//		exporter.RankingTable(ranking),
//		exporter.TrendTable(trends),
//		exporter.DisparityTable(disparities),
//	}
//	csvWriter := exporter.NewCSVWriter(files.NewManager("data/reports", logger), logger)
//	path, err := csvWriter.Save("ranking.csv", tables[0])
//
//	workbook := exporter.NewWorkbookWriter(manager, logger)
//	path, err = workbook.Save("discipline.xlsx", tables...)
package exporter
