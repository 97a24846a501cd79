// Package rights models access levels and resolves per-element overrides
// against the rights of the current document.
package rights

import (
	"strconv"
	"strings"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Level is an access level, ordered from no access to full control
type Level int

const (
	// None grants nothing; the element is hidden
	None Level = iota
	// Read grants read-only access
	Read
	// Edit grants modification of existing data
	Edit
	// Full grants full control
	Full
)

// Error codes returned by this package
const (
	CodeBadRights = "ERR_DEV_BAD_RIGHTS"
)

// String returns the numeric form used in markup and output attributes
func (l Level) String() string {
	return strconv.Itoa(int(l))
}

// Valid reports whether the level is one of the known constants
func (l Level) Valid() bool {
	return l >= None && l <= Full
}

// Parse converts a markup value into a Level
func Parse(s string) (Level, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return None, apperror.Developer(CodeBadRights, "rights value %q is not a number", s).Wrap(err)
	}
	l := Level(n)
	if !l.Valid() {
		return None, apperror.Developer(CodeBadRights, "rights value %d is out of range", n)
	}
	return l, nil
}

// Computer turns document rights plus optional read-only and full-control
// thresholds into an effective mode for a single element
type Computer interface {
	Compute(document Level, readOnly, fullControl *Level) Level
}

// ComputerFunc adapts a function to the Computer interface
type ComputerFunc func(document Level, readOnly, fullControl *Level) Level

// Compute calls f
func (f ComputerFunc) Compute(document Level, readOnly, fullControl *Level) Level {
	return f(document, readOnly, fullControl)
}

// Default is the standard threshold computation. A missing threshold
// defaults to the document rights themselves.
var Default Computer = ComputerFunc(Compute)

// Compute returns None when the document rights are below the read-only
// threshold, Read when they are below the full-control threshold, and the
// document rights otherwise.
func Compute(document Level, readOnly, fullControl *Level) Level {
	ro := document
	if readOnly != nil {
		ro = *readOnly
	}
	fc := document
	if fullControl != nil {
		fc = *fullControl
	}

	switch {
	case document < ro:
		return None
	case document < fc:
		return Read
	default:
		return document
	}
}
