// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the data transformation core.
//
// # Available Services
//
//   - DashboardService: owns the loaded rows and derives every view
//   - HealthService: liveness, readiness and version reporting
//
// # Dataset Lifecycle
//
// DashboardService holds a single row slice. A load moves the dataset
// through loading to loaded or failed and publishes each transition to a
// Notifier (the websocket hub). A failed load drops the previous rows so no
// view is ever computed from stale data; views then return an UNAVAILABLE
// AppError that the HTTP layer turns into 503.
//
// Readers take a snapshot of the slice under a read lock. Derivations never
// mutate it, so a snapshot stays valid after a later reload swaps the slice.
//
// # Testing
//
// Collaborators are interfaces mocked with testify:
//
//	notifier := &MockNotifier{}
//	notifier.On("BroadcastDataset", mock.Anything, ReasonStartup, mock.Anything)
//	svc := NewDashboardService(cfg, notifier, nil, logger)
package services
