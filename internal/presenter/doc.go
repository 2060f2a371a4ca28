// Package presenter turns the derived discipline views into things people
// look at: PNG and SVG charts rendered with go-chart and a narrative summary
// computed from the rows.
//
// The presenter only consumes the dataprocessing results. Colors, chart
// size and how many highlights the summary lists all come from Config.
package presenter
