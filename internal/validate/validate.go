package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"soulminer/internal/config"
	"soulminer/internal/extract"
	"soulminer/internal/hierarchy"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeAncestorCycle      = "ancestor_cycle"
	codeUnresolvedAncestor = "unresolved_ancestor"
	codeUnknownBaseClass   = "unknown_base_class"
	codeEmptyDomain        = "empty_domain"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Domain   string
	Class    string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Run checks the indexed hierarchy and, when a schema is given, every domain
// against it.
func Run(index *hierarchy.Index, schema *config.Schema) (*Report, error) {
	if index == nil {
		return nil, fmt.Errorf("index is required")
	}

	issues := make([]Issue, 0)

	cycles, err := ancestorCycles(index)
	if err != nil {
		return nil, err
	}
	issues = append(issues, cycles...)

	for _, u := range index.Unresolved() {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnresolvedAncestor,
			Message:  fmt.Sprintf("ancestor %s is not indexed", u.SuperName),
			Class:    u.Class,
		})
	}

	if schema != nil {
		for i := range schema.Domains {
			issues = append(issues, validateDomain(index, &schema.Domains[i])...)
		}
	}

	return &Report{Issues: issues}, nil
}

// ancestorCycles loads every class-to-ancestor edge into an acyclic graph; an
// edge the graph refuses closes a cycle.
func ancestorCycles(index *hierarchy.Index) ([]Issue, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	classes := index.Classes()
	for _, class := range classes {
		if err := g.AddVertex(strings.ToLower(class.Name)); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("adding class %s: %w", class.Name, err)
		}
	}

	var issues []Issue
	for _, class := range classes {
		super, ok := index.Super(class.Name)
		if !ok {
			continue
		}
		err := g.AddEdge(strings.ToLower(class.Name), strings.ToLower(super.Name))
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeAncestorCycle,
				Message:  fmt.Sprintf("ancestor %s closes a cycle", super.Name),
				Class:    class.Name,
			})
		default:
			return nil, fmt.Errorf("linking class %s: %w", class.Name, err)
		}
	}
	return issues, nil
}

func validateDomain(index *hierarchy.Index, domain *config.Domain) []Issue {
	var issues []Issue
	known := 0
	candidates := make(map[string]struct{})
	for _, base := range domain.BaseClasses {
		if _, ok := index.Class(base); !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownBaseClass,
				Message:  fmt.Sprintf("base class %s is not indexed", base),
				Domain:   domain.Name,
				Class:    base,
			})
			continue
		}
		known++
		for _, class := range index.DerivedClasses(base) {
			if domain.ExcludeAbstract && extract.IsAbstract(class) {
				continue
			}
			candidates[strings.ToLower(class.Name)] = struct{}{}
		}
	}

	if known > 0 && len(candidates) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeEmptyDomain,
			Message:  "no class derives from the domain's base classes",
			Domain:   domain.Name,
		})
	}
	return issues
}

// Sort orders issues errors first, then by code and class.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Class < b.Class
	})
}
