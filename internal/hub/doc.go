// Package hub fans classified events out to subscribers through bounded
// per-subscriber mailboxes. Publishing never blocks: a full mailbox drops the
// event for that subscriber only.
package hub
