// Package corpus loads the versioned philosophy, week-structure and
// session-template documents the planner draws from.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// ErrInvalidDocument is wrapped by every load failure caused by document
// content rather than by the store.
var ErrInvalidDocument = errors.New("invalid corpus document")

// ValidationError lists every problem found while loading a corpus.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d corpus error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// Corpus is a validated, read-only document set. It is safe for
// concurrent reads once loaded.
type Corpus struct {
	philosophies []domain.Philosophy
	structures   []domain.WeekStructure
	templates    []domain.SessionTemplate

	philosophyByID map[string]int
	structuresByNS map[string][]int
}

// Load reads every document from src and validates the full set. Any
// invalid document aborts the load; partial corpora are never returned.
func Load(ctx context.Context, src Source) (*Corpus, error) {
	docs, err := src.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	p, errs := parseDocuments(docs)
	errs = append(errs, validate(p)...)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return build(p), nil
}

// Validate reads and checks src without building a corpus. It returns
// every document problem found; a store failure is returned as err.
func Validate(ctx context.Context, src Source) ([]error, error) {
	docs, err := src.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	p, errs := parseDocuments(docs)
	return append(errs, validate(p)...), nil
}

// New builds a corpus from already-typed records. It is meant for tests
// and callers that assemble documents programmatically; no validation runs.
func New(philosophies []domain.Philosophy, structures []domain.WeekStructure, templates []domain.SessionTemplate) *Corpus {
	c := &Corpus{
		philosophies: philosophies,
		structures:   structures,
		templates:    templates,
	}
	c.index()
	return c
}

func build(p *parsed) *Corpus {
	c := &Corpus{}
	for _, n := range p.philosophies {
		c.philosophies = append(c.philosophies, toPhilosophy(n.doc))
	}
	for _, n := range p.structures {
		c.structures = append(c.structures, toStructure(n.doc))
	}
	for _, n := range p.templates {
		c.templates = append(c.templates, toTemplate(n.doc))
	}
	c.index()
	return c
}

func (c *Corpus) index() {
	c.philosophyByID = make(map[string]int, len(c.philosophies))
	for i, p := range c.philosophies {
		c.philosophyByID[p.ID] = i
	}
	c.structuresByNS = make(map[string][]int)
	for i, s := range c.structures {
		c.structuresByNS[s.PhilosophyID] = append(c.structuresByNS[s.PhilosophyID], i)
	}
}

// Philosophies returns every philosophy in load order.
func (c *Corpus) Philosophies() []domain.Philosophy {
	return c.philosophies
}

// Philosophy looks up a philosophy by id.
func (c *Corpus) Philosophy(id string) (domain.Philosophy, bool) {
	i, ok := c.philosophyByID[id]
	if !ok {
		return domain.Philosophy{}, false
	}
	return c.philosophies[i], true
}

// Structures returns every structure in load order.
func (c *Corpus) Structures() []domain.WeekStructure {
	return c.structures
}

// StructuresFor returns the structures in a philosophy's namespace.
func (c *Corpus) StructuresFor(philosophyID string) []domain.WeekStructure {
	idx := c.structuresByNS[philosophyID]
	out := make([]domain.WeekStructure, len(idx))
	for i, j := range idx {
		out[i] = c.structures[j]
	}
	return out
}

// Templates returns every template in load order.
func (c *Corpus) Templates() []domain.SessionTemplate {
	return c.templates
}

// TemplatesFor returns the templates a philosophy may use: its own plus
// the shared ones, in load order.
func (c *Corpus) TemplatesFor(philosophyID string) []domain.SessionTemplate {
	var out []domain.SessionTemplate
	for _, t := range c.templates {
		if t.PhilosophyID == philosophyID || t.PhilosophyID == "" {
			out = append(out, t)
		}
	}
	return out
}
