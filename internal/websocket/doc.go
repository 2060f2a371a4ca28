// Package websocket pushes dataset lifecycle events to dashboard clients.
//
// A single Hub goroutine owns the client set. Handler upgrades /ws requests,
// greets each client with the current dataset status and starts its read and
// write pumps. The dataset service publishes dataset:loading, dataset:loaded
// and dataset:failed through Hub.BroadcastDataset.
package websocket
