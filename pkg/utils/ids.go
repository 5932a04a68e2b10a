package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// NewVideoID returns a fresh identifier for videos created on the fly,
// e.g. uploads arriving without a pre-registered video record.
func NewVideoID() string {
	return gonanoid.Must()
}
