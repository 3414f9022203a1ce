package query

import (
	"errors"

	"github.com/acksell/dynaspec/spec"
)

var (
	// ErrUnknownIndex is spec.ErrUnknownIndex, re-exported for callers
	// that only import query.
	ErrUnknownIndex = spec.ErrUnknownIndex

	ErrMalformedCondition = errors.New("malformed condition")
	ErrUnknownPatternType = errors.New("unknown access pattern type")
)
