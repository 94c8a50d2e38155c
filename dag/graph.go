package dag

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/stage"
)

// Graph is the set of stages of one pipeline in document order. Edges are
// the stages' Inputs.
type Graph struct {
	Stages []*stage.Stage
	Tags   map[string]*stage.Stage
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Tags: make(map[string]*stage.Stage)}
}

// Add appends s, assigning its ID and registering its tag.
func (g *Graph) Add(s *stage.Stage) *stage.Stage {
	if g.Tags == nil {
		g.Tags = make(map[string]*stage.Stage)
	}
	s.ID = len(g.Stages)
	g.Stages = append(g.Stages, s)
	if s.Tag != "" {
		g.Tags[s.Tag] = s
	}
	return s
}

// ByTag returns the stage registered under tag, or nil.
func (g *Graph) ByTag(tag string) *stage.Stage {
	return g.Tags[tag]
}

// Consumers returns the stages reading from s, in document order.
func (g *Graph) Consumers(s *stage.Stage) []*stage.Stage {
	var out []*stage.Stage
	for _, c := range g.Stages {
		for _, in := range c.Inputs {
			if in == s {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Sinks returns the stages no other stage reads from.
func (g *Graph) Sinks() []*stage.Stage {
	consumed := make(map[*stage.Stage]bool, len(g.Stages))
	for _, s := range g.Stages {
		for _, in := range s.Inputs {
			consumed[in] = true
		}
	}
	var out []*stage.Stage
	for _, s := range g.Stages {
		if !consumed[s] {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the structural rules of a runnable graph: readers have no
// inputs, every other stage has at least one, inputs belong to the graph,
// input counts match each stage's cardinality, and there is no cycle.
func (g *Graph) Validate() error {
	if len(g.Stages) == 0 {
		return errors.Structural("pipeline has no stages")
	}

	member := make(map[*stage.Stage]bool, len(g.Stages))
	for _, s := range g.Stages {
		member[s] = true
	}

	var issues []error
	for _, s := range g.Stages {
		if s.Driver == nil {
			issues = append(issues, structural(s, "has no driver"))
		}
		switch {
		case s.Role == stage.RoleReader && len(s.Inputs) > 0:
			issues = append(issues, structural(s, "is a reader but has inputs"))
			continue
		case s.Role != stage.RoleReader && len(s.Inputs) == 0:
			issues = append(issues, structural(s, fmt.Sprintf("is a %s with no input", s.Role)))
			continue
		}
		for _, in := range s.Inputs {
			if !member[in] {
				issues = append(issues, structural(s, fmt.Sprintf("reads from %s, which is not part of the pipeline", in.Name())))
			}
		}
		if c := s.InputCardinality(); !c.Accepts(len(s.Inputs)) {
			issues = append(issues, errors.Cardinality(
				fmt.Sprintf("stage %s accepts %s input, got %d", s.Name(), c, len(s.Inputs)),
			).WithDetail("stage", s.Name()))
		}
	}
	if len(issues) > 0 {
		return errors.Join(issues...)
	}

	_, err := g.BuildLevels()
	return err
}

func structural(s *stage.Stage, reason string) error {
	return errors.Structural(fmt.Sprintf("stage %s %s", s.Name(), reason)).WithDetail("stage", s.Name())
}

// BuildLevels groups stages by dependency depth using Kahn's algorithm.
// Stages within a level do not depend on each other and keep document
// order. A cycle is a structural error.
func (g *Graph) BuildLevels() ([][]*stage.Stage, error) {
	inDegree := make(map[*stage.Stage]int, len(g.Stages))
	dependents := make(map[*stage.Stage][]*stage.Stage)

	for _, s := range g.Stages {
		seen := make(map[*stage.Stage]bool, len(s.Inputs))
		for _, in := range s.Inputs {
			if seen[in] {
				continue
			}
			seen[in] = true
			inDegree[s]++
			dependents[in] = append(dependents[in], s)
		}
	}

	var queue []*stage.Stage
	for _, s := range g.Stages {
		if inDegree[s] == 0 {
			queue = append(queue, s)
		}
	}

	var levels [][]*stage.Stage
	visited := 0
	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []*stage.Stage
		for _, s := range queue {
			for _, dep := range dependents[s] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.SortFunc(next, func(a, b *stage.Stage) int { return cmp.Compare(a.ID, b.ID) })
		queue = next
	}

	if visited != len(g.Stages) {
		return nil, errors.Structural(fmt.Sprintf("cycle detected, ordered %d of %d stages", visited, len(g.Stages)))
	}
	return levels, nil
}
