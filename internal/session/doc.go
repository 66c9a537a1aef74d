// Package session owns the lifecycle of the single active ingestion worker:
// start, stop and status, with stop always fully sequenced before start.
package session
