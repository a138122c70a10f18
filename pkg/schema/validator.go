package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/beevik/etree"
)

var (
	// ErrSchemaValidation is wrapped by every validation failure
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrUnknownDocument is returned when no schema governs the root element
	ErrUnknownDocument = fmt.Errorf("%w: unknown document", ErrSchemaValidation)
)

// ValidationError reports the first violation found in a document
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap allows errors.Is(err, ErrSchemaValidation)
func (e *ValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Validator checks documents against the compiled rule set. It holds no
// per-call state and is safe for concurrent use.
type Validator struct {
	rules map[key]*rule
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the process-wide validator, compiling it on first use.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = &Validator{rules: compile()}
	})
	return defaultValidator
}

// Validate checks data with the default validator.
func Validate(data []byte) error {
	return Default().Validate(data)
}

// Validate parses data and checks it against the schema of its root element.
func (v *Validator) Validate(data []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("%w: malformed XML: %v", ErrSchemaValidation, err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("%w: empty document", ErrSchemaValidation)
	}
	return v.ValidateElement(root)
}

// ValidateElement checks an already parsed element as a document root.
func (v *Validator) ValidateElement(el *etree.Element) error {
	space := el.NamespaceURI()
	r, ok := v.rules[key{space, el.Tag}]
	if !ok {
		return fmt.Errorf("%w: {%s}%s", ErrUnknownDocument, space, el.Tag)
	}
	return v.check(el, r, space, "/"+el.Tag)
}

// Supports reports whether a schema exists for the given root element.
func (v *Validator) Supports(space, local string) bool {
	_, ok := v.rules[key{space, local}]
	return ok
}

func (v *Validator) check(el *etree.Element, r *rule, space, path string) error {
	for _, a := range r.attrs {
		attr := el.SelectAttr(a.name)
		if attr == nil {
			if a.required {
				return &ValidationError{Path: path, Message: fmt.Sprintf("missing required attribute %s", a.name)}
			}
			continue
		}
		if msg := a.typ.check(attr.Value); msg != "" {
			return &ValidationError{Path: path + "/@" + a.name, Message: msg}
		}
	}

	children := el.ChildElements()

	switch {
	case r.any:
		// Known documents embedded in open content are validated on their own terms.
		for _, child := range children {
			childSpace := child.NamespaceURI()
			if cr, ok := v.rules[key{childSpace, child.Tag}]; ok {
				if err := v.check(child, cr, childSpace, path+"/"+child.Tag); err != nil {
					return err
				}
			}
		}
		return nil

	case r.text != nil:
		if len(children) > 0 {
			return &ValidationError{Path: path, Message: fmt.Sprintf("unexpected element %s in simple content", children[0].Tag)}
		}
		if msg := r.text.check(el.Text()); msg != "" {
			return &ValidationError{Path: path, Message: msg}
		}
		return nil

	case r.choice:
		return v.checkChoice(r, space, path, children)

	default:
		return v.checkSequence(r, space, path, children)
	}
}

func (v *Validator) checkSequence(r *rule, space, path string, children []*etree.Element) error {
	i := 0
	for _, p := range r.children {
		count := 0
		for i < len(children) && matches(children[i], p.rule, space) {
			if p.max != unbounded && count == p.max {
				return &ValidationError{Path: path, Message: fmt.Sprintf("too many %s elements (max %d)", p.rule.name, p.max)}
			}
			if err := v.check(children[i], p.rule, space, path+"/"+children[i].Tag); err != nil {
				return err
			}
			count++
			i++
		}
		if count < p.min {
			return &ValidationError{Path: path, Message: fmt.Sprintf("missing required element %s", p.rule.name)}
		}
	}
	if i < len(children) {
		return &ValidationError{Path: path, Message: fmt.Sprintf("unexpected element %s", children[i].Tag)}
	}
	return nil
}

func (v *Validator) checkChoice(r *rule, space, path string, children []*etree.Element) error {
	if len(children) != 1 {
		names := make([]string, 0, len(r.children))
		for _, p := range r.children {
			names = append(names, p.rule.name)
		}
		return &ValidationError{Path: path, Message: fmt.Sprintf("expected exactly one of %s", strings.Join(names, ", "))}
	}
	child := children[0]
	for _, p := range r.children {
		if matches(child, p.rule, space) {
			return v.check(child, p.rule, space, path+"/"+child.Tag)
		}
	}
	return &ValidationError{Path: path, Message: fmt.Sprintf("unexpected element %s", child.Tag)}
}

func matches(el *etree.Element, r *rule, space string) bool {
	if el.Tag != r.name {
		return false
	}
	want := space
	if r.space != "" {
		want = r.space
	}
	return el.NamespaceURI() == want
}

// check returns an empty string when value satisfies t
func (t *simpleType) check(value string) string {
	switch {
	case t.pattern != nil:
		if !t.pattern.MatchString(strings.TrimSpace(value)) {
			return fmt.Sprintf("value %q is not a valid %s", value, t.name)
		}
	case len(t.enum) > 0:
		if !slices.Contains(t.enum, strings.TrimSpace(value)) {
			return fmt.Sprintf("value %q is not one of %s", value, strings.Join(t.enum, ", "))
		}
	default:
		n := utf8.RuneCountInString(value)
		if n < t.minLen || (t.maxLen > 0 && n > t.maxLen) {
			return fmt.Sprintf("%s length %d outside [%d, %d]", t.name, n, t.minLen, t.maxLen)
		}
	}
	return ""
}
