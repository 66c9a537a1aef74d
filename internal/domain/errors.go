package domain

import "errors"

// ErrInvalidReference indicates that no video ID could be extracted from a
// user-supplied stream reference.
var ErrInvalidReference = errors.New("could not extract video ID from input")
