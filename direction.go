package mdmath

import (
	"fmt"
	"strings"
)

// Direction selects which dialect a conversion produces.
// The zero value is ToUsual.
type Direction int

const (
	// ToUsual converts GitHub-dialect math to the usual dialect.
	ToUsual Direction = iota
	// ToGithub converts usual-dialect math to the GitHub dialect.
	ToGithub
)

var directionNames = map[string]Direction{
	"usual":        ToUsual,
	"to-usual":     ToUsual,
	"github2usual": ToUsual,
	"github":       ToGithub,
	"to-github":    ToGithub,
	"usual2github": ToGithub,
}

// ParseDirection parses a direction name, case-insensitively.
// Accepted: usual, to-usual, github2usual, github, to-github, usual2github.
func ParseDirection(s string) (Direction, error) {
	d, ok := directionNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// String returns the canonical name: "usual" or "github".
func (d Direction) String() string {
	switch d {
	case ToUsual:
		return "usual"
	case ToGithub:
		return "github"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == ToGithub {
		return ToUsual
	}
	return ToGithub
}

// Valid reports whether d is ToUsual or ToGithub.
func (d Direction) Valid() bool {
	return d == ToUsual || d == ToGithub
}
