// Package dataprocessing turns the discipline statistics CSV into typed rows
// and derives the views the dashboard presents.
//
// # Architecture
//
// The package has two stages:
//
// 1. Loader: parses the delimited text into domain.Row values, binding
// columns by exact header text and coercing the percent column once.
// 2. Aggregator: pure functions over the row slice producing the ranking,
// trend and disparity views.
//
// # Usage
//
//	rows, err := dataprocessing.LoadFile(ctx, "discipline.csv", dataprocessing.DefaultLoaderOptions())
//	if err != nil {
//	    return err // *ParseError for malformed input
//	}
//	ranking := dataprocessing.LatestYearRanking(rows, "2023-24")
//	trends := dataprocessing.TrendTable(rows, []string{"2021-22", "2022-23", "2023-24"}, groups)
//	disparities := dataprocessing.DisparityTable(rows, "2023-24")
//
// # Data Flow
//
//	CSV text → Loader → []domain.Row → Aggregator → views → presenter / exporter / HTTP
//
// # Error Handling
//
// Only the loader fails. Every loader failure caused by the input is a
// *ParseError carrying the line, column and offending value, and matches
// errors.Is(err, ErrParse). Aggregator functions never fail: a year or
// group with no rows produces an empty result.
//
// # Duplicates
//
// When the source holds more than one row for the same (year, group) pair
// every derivation uses the first row in file order. LoaderOptions.RejectDuplicates
// turns such files into a load failure instead.
package dataprocessing
