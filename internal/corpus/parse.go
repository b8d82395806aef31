package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// parsed holds the decoded documents of a corpus before validation.
type parsed struct {
	philosophies []named[PhilosophyDoc]
	structures   []named[StructureDoc]
	templates    []named[TemplateDoc]
}

// named pairs a decoded document with the file it came from.
type named[T any] struct {
	source string
	doc    T
}

// parseDocuments decodes every YAML document in docs. A file may hold
// several documents separated by "---". Unknown fields are rejected.
func parseDocuments(docs []RawDocument) (*parsed, []error) {
	out := &parsed{}
	var errs []error

	for _, raw := range docs {
		dec := yaml.NewDecoder(bytes.NewReader(raw.Data))
		for i := 0; ; i++ {
			var node yaml.Node
			err := dec.Decode(&node)
			if errors.Is(err, io.EOF) {
				break
			}
			src := raw.Name
			if i > 0 {
				src = fmt.Sprintf("%s#%d", raw.Name, i)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src, err))
				break
			}
			if err := out.add(src, &node); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src, err))
			}
		}
	}
	return out, errs
}

func (p *parsed) add(src string, node *yaml.Node) error {
	var h header
	if err := node.Decode(&h); err != nil {
		return err
	}
	switch h.Kind {
	case KindPhilosophy:
		doc, err := strictDecode[PhilosophyDoc](node)
		if err != nil {
			return err
		}
		p.philosophies = append(p.philosophies, named[PhilosophyDoc]{src, doc})
	case KindStructure:
		doc, err := strictDecode[StructureDoc](node)
		if err != nil {
			return err
		}
		p.structures = append(p.structures, named[StructureDoc]{src, doc})
	case KindTemplate:
		doc, err := strictDecode[TemplateDoc](node)
		if err != nil {
			return err
		}
		p.templates = append(p.templates, named[TemplateDoc]{src, doc})
	case "":
		return errors.New("kind is required")
	default:
		return fmt.Errorf("unknown document kind %q", h.Kind)
	}
	return nil
}

// strictDecode re-encodes node and decodes it with unknown fields rejected,
// which yaml.Node.Decode alone does not support.
func strictDecode[T any](node *yaml.Node) (T, error) {
	var out T
	data, err := yaml.Marshal(node)
	if err != nil {
		return out, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
