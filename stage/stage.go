package stage

import (
	"fmt"
	"strings"

	"github.com/kbukum/pointflow/options"
)

// Role classifies a stage by where it sits in the data flow.
type Role int

const (
	RoleReader Role = iota + 1
	RoleFilter
	RoleWriter
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleFilter:
		return "filter"
	case RoleWriter:
		return "writer"
	default:
		return "unknown"
	}
}

// RoleOf derives a role from a driver name prefix such as "readers.".
func RoleOf(driver string) Role {
	switch {
	case strings.HasPrefix(driver, "readers."):
		return RoleReader
	case strings.HasPrefix(driver, "writers."):
		return RoleWriter
	default:
		return RoleFilter
	}
}

// Cardinality is the number of inputs a stage accepts. The zero value means
// the role's default.
type Cardinality int

const (
	CardinalityDefault Cardinality = iota
	CardinalityNone
	CardinalityOne
	CardinalityMany
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityNone:
		return "none"
	case CardinalityOne:
		return "one"
	case CardinalityMany:
		return "many"
	default:
		return "default"
	}
}

// DefaultCardinality returns the input cardinality of role when the driver
// does not declare one.
func DefaultCardinality(role Role) Cardinality {
	if role == RoleReader {
		return CardinalityNone
	}
	return CardinalityMany
}

// Accepts reports whether n inputs satisfy c.
func (c Cardinality) Accepts(n int) bool {
	switch c {
	case CardinalityNone:
		return n == 0
	case CardinalityOne:
		return n == 1
	case CardinalityMany:
		return n >= 1
	default:
		return true
	}
}

// Stage is one node of a pipeline: a driver instance with its options and
// the stages it reads from.
type Stage struct {
	// ID is the stage's position in its graph.
	ID int
	// Type is the driver name, e.g. "filters.splitter".
	Type string
	Role Role
	Tag  string
	// Options are the stage's own options. Base options are merged in by
	// the engine.
	Options *options.Options
	// Inputs are upstream stages in declaration order.
	Inputs      []*Stage
	Driver      Driver
	Cardinality Cardinality
}

// Name returns the stage's display name: the driver name, with the tag
// appended after '#' when one is set.
func (s *Stage) Name() string {
	if s.Tag == "" {
		return s.Type
	}
	return s.Type + "#" + s.Tag
}

// SetInput appends an upstream stage.
func (s *Stage) SetInput(in *Stage) {
	s.Inputs = append(s.Inputs, in)
}

// InputCardinality returns the declared cardinality, or the role's default.
func (s *Stage) InputCardinality() Cardinality {
	if s.Cardinality == CardinalityDefault {
		return DefaultCardinality(s.Role)
	}
	return s.Cardinality
}

func (s *Stage) String() string {
	return fmt.Sprintf("%s(%d)", s.Name(), s.ID)
}
