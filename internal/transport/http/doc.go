// Package http implements the HTTP handlers of the discipline dashboard.
// Handlers stay thin: they parse and validate query parameters, call the
// dashboard service and shape the response. Every failure is answered as an
// RFC 7807 problem through the shared error handler, so a dataset that is
// not loaded yet reads as 503 and a malformed source file as 422.
//
// # Routes
//
//	GET  /api/dataset                   dataset state
//	POST /api/dataset/reload            reload from the configured source
//	GET  /api/views/ranking?year=       ranking for one year
//	GET  /api/views/trends?years=&groups=
//	GET  /api/views/disparities?year=   distance from the baseline group
//	GET  /api/summary?year=             narrative summary
//	GET  /api/charts/{view}.{format}    png or svg chart of a view
//	GET  /api/export/{view}.csv         csv of a view or the dataset state
//	GET  /api/export/workbook.xlsx      every view, one sheet each
//
// JSON responses use the envelope
//
//	{"status": "success", "data": ..., "count": n}
//
// where count is present for list-shaped views.
package http
