// Package ingest runs the polling loop that pulls live chat messages,
// classifies them and publishes the results to the broadcast hub.
package ingest
