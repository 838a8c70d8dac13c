package entropy

import "github.com/pkg/errors"

// ErrAlphabetViolation is returned when a symbol sequence contains a value
// outside its declared alphabet (spec.md §4.3, §7).
var ErrAlphabetViolation = errors.New("entropy: symbol outside declared alphabet")
