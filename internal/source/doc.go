// Package source provides the YouTube live-chat polling client and video-ID
// extraction from user-supplied stream references.
package source
