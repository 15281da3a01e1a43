package idgen

import (
	"github.com/google/uuid"
)

// ID prefixes for different models
const (
	PrefixTransition = "tr_"
)

// NewTransition generates a new transition ID with tr_ prefix
func NewTransition() string {
	return PrefixTransition + uuid.New().String()
}

// New generates a generic UUID without prefix (for internal use only)
func New() string {
	return uuid.New().String()
}
