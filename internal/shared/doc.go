// Package shared holds helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage provides a capturing slog handler and discipline
// dataset fixtures for tests:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteSampleCSV(t, t.TempDir())
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Loaded discipline data")
//	}
//
// Nothing here may import business packages other than the shared domain
// contracts.
package shared
