package resolve

import (
	"errors"
	"fmt"
	"strings"

	"soulminer/internal/asset"
	"soulminer/internal/hierarchy"
	"soulminer/internal/logger"
)

var ErrInvalidQuery = errors.New("invalid attribute query")

type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindProperty Kind = "property"
)

const (
	SlotName        = "name"
	SlotDescription = "description"
	SlotIcon        = "icon"
)

// Slot names one attribute to fill and the default-object property it is read
// from.
type Slot struct {
	Name     string
	Property string
	Kind     Kind
	Required bool
}

type Query struct {
	Slots []Slot
}

// DisplayQuery asks for the display name (required), description and icon,
// plus any extra slots.
func DisplayQuery(extra ...Slot) Query {
	slots := []Slot{
		{Name: SlotName, Property: "Name", Kind: KindText, Required: true},
		{Name: SlotDescription, Property: "Description", Kind: KindText},
		{Name: SlotIcon, Property: "Icon", Kind: KindImage},
	}
	return Query{Slots: append(slots, extra...)}
}

func (q Query) validate() error {
	if len(q.Slots) == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidQuery)
	}
	required := false
	seen := make(map[string]struct{}, len(q.Slots))
	for i, slot := range q.Slots {
		name := strings.ToLower(strings.TrimSpace(slot.Name))
		if name == "" {
			return fmt.Errorf("%w: slot %d has no name", ErrInvalidQuery, i)
		}
		if strings.TrimSpace(slot.Property) == "" {
			return fmt.Errorf("%w: slot %s has no source property", ErrInvalidQuery, slot.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate slot %s", ErrInvalidQuery, slot.Name)
		}
		seen[name] = struct{}{}
		switch slot.Kind {
		case KindText, KindImage, KindProperty, "":
		default:
			return fmt.Errorf("%w: slot %s has unknown kind %q", ErrInvalidQuery, slot.Name, slot.Kind)
		}
		required = required || slot.Required
	}
	if !required {
		return fmt.Errorf("%w: no required slot", ErrInvalidQuery)
	}
	return nil
}

// Value is a filled slot.
type Value struct {
	Text     string
	Property asset.Property
	// Class is the class whose default object provided the value.
	Class string
}

type Result struct {
	Class  string
	slots  []Slot
	values map[string]Value
}

func (r *Result) Value(slot string) (Value, bool) {
	v, ok := r.values[strings.ToLower(slot)]
	return v, ok
}

// Text returns the slot's rendered value, or "" when unfilled.
func (r *Result) Text(slot string) string {
	return r.values[strings.ToLower(slot)].Text
}

func (r *Result) Filled(slot string) bool {
	_, ok := r.values[strings.ToLower(slot)]
	return ok
}

// Complete reports whether every slot of the query was filled.
func (r *Result) Complete() bool {
	return len(r.values) == len(r.slots)
}

// Missing lists unfilled slots in query order.
func (r *Result) Missing() []string {
	var out []string
	for _, slot := range r.slots {
		if !r.Filled(slot.Name) {
			out = append(out, slot.Name)
		}
	}
	return out
}

// MissingRequired lists unfilled required slots in query order.
func (r *Result) MissingRequired() []string {
	var out []string
	for _, slot := range r.slots {
		if slot.Required && !r.Filled(slot.Name) {
			out = append(out, slot.Name)
		}
	}
	return out
}

// Resolver fills attribute slots from a class and its ancestors.
type Resolver struct {
	index *hierarchy.Index
	log   *logger.Logger
}

func New(index *hierarchy.Index, log *logger.Logger) *Resolver {
	return &Resolver{index: index, log: logger.OrNop(log)}
}

// Resolve walks from start upward, filling each slot from the nearest default
// object that carries a non-null value for it. The walk ends once every slot
// is filled or the chain runs out. Classes without a loadable default object
// contribute nothing.
func (r *Resolver) Resolve(start *asset.Class, q Query) (*Result, error) {
	if start == nil {
		return nil, fmt.Errorf("%w: no start class", ErrInvalidQuery)
	}
	if err := q.validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Class:  start.Name,
		slots:  q.Slots,
		values: make(map[string]Value, len(q.Slots)),
	}

	seen := make(map[*asset.Class]bool)
	for class := start; class != nil; {
		if seen[class] {
			r.log.Error("ancestor chain cycles, stopping resolve", "class", start.Name, "at", class.Name)
			break
		}
		seen[class] = true

		r.fill(result, class, q)
		if result.Complete() {
			break
		}

		super, ok := r.ancestor(class)
		if !ok {
			break
		}
		class = super
	}

	return result, nil
}

func (r *Resolver) ancestor(class *asset.Class) (*asset.Class, bool) {
	if r.index == nil {
		return nil, false
	}
	indexed, ok := r.index.Class(class.Name)
	if !ok || indexed != class {
		return nil, false
	}
	return r.index.Super(class.Name)
}

func (r *Resolver) fill(result *Result, class *asset.Class, q Query) {
	if !class.HasDefaults() {
		return
	}
	obj, err := class.Defaults()
	if err != nil {
		r.log.Warn("default object unavailable", "class", class.Name, "error", err)
		return
	}

	for _, slot := range q.Slots {
		key := strings.ToLower(slot.Name)
		if _, done := result.values[key]; done {
			continue
		}
		prop, ok := obj.Find(slot.Property)
		if !ok {
			continue
		}
		text, ok := render(prop, slot.Kind)
		if !ok {
			continue
		}
		result.values[key] = Value{Text: text, Property: prop, Class: class.Name}
	}
}

func render(prop asset.Property, kind Kind) (string, bool) {
	if prop.IsNull() {
		return "", false
	}
	switch kind {
	case KindText:
		return prop.Text()
	case KindImage:
		return prop.ObjectPath()
	default:
		return prop.String(), true
	}
}
