// Package files locates, writes and watches the files the dashboard works
// with.
//
// Discovery resolves the configured data source. The source may name a
// single CSV export or a directory of exports; for a directory the most
// recently modified CSV is used.
//
// Manager writes generated artifacts (charts, CSV and workbook exports)
// below an output directory. Writes go through a temporary file and a rename
// so readers never observe a partial file.
//
// Watcher reports changes to the source file so the dataset can be reloaded
// without restarting the process:
//
//	w := files.NewWatcher(path, 500*time.Millisecond, logger)
//	go w.Run(ctx, func() { svc.Reload(ctx) })
package files
