// Package domain holds the core data model of the moderation pipeline and the
// interfaces to its external collaborators (chat source, toxicity scorer).
// It has no dependencies on other internal packages.
package domain
