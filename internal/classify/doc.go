// Package classify maps raw message text to a toxicity probability and tier
// using fixed thresholds over an external scorer's output.
package classify
