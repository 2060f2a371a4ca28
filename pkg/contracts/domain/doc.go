// Package domain holds the data contracts shared by the loader, the
// aggregator and every consumer of the derived views.
package domain
