package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrNoDefaults = errors.New("class has no default object")

// Property is one named value of a default object. Value holds the decoded
// JSON (numbers as json.Number).
type Property struct {
	Name  string
	Value any
}

// Object is a loaded default-value object.
type Object struct {
	Name       string
	Properties []Property
}

// Find returns the first property whose name matches case-insensitively.
func (o *Object) Find(name string) (Property, bool) {
	if o == nil {
		return Property{}, false
	}
	for _, prop := range o.Properties {
		if strings.EqualFold(prop.Name, name) {
			return prop, true
		}
	}
	return Property{}, false
}

// IsNull reports whether the property carries no usable value.
func (p Property) IsNull() bool {
	switch v := p.Value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == "" || v == "None"
	case map[string]any:
		if len(v) == 0 {
			return true
		}
		if _, ok := p.Text(); ok {
			return false
		}
		if _, ok := p.ObjectPath(); ok {
			return false
		}
		if isTextValue(v) || isObjectValue(v) {
			return true
		}
		return false
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// Text decodes plain strings and localized text values.
func (p Property) Text() (string, bool) {
	switch v := p.Value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case map[string]any:
		for _, key := range []string{"LocalizedString", "SourceString", "CultureInvariantString"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

// ObjectPath decodes soft and hard object references, dropping the export
// index suffix of hard references.
func (p Property) ObjectPath() (string, bool) {
	switch v := p.Value.(type) {
	case string:
		if strings.TrimSpace(v) == "" || v == "None" {
			return "", false
		}
		return v, true
	case map[string]any:
		if s, ok := v["AssetPathName"].(string); ok && s != "" && s != "None" {
			return s, true
		}
		if s, ok := v["ObjectPath"].(string); ok && s != "" {
			return trimExportIndex(s), true
		}
	}
	return "", false
}

// String renders the value for tabular output.
func (p Property) String() string {
	if s, ok := p.Text(); ok {
		return s
	}
	if s, ok := p.ObjectPath(); ok {
		return s
	}
	switch v := p.Value.(type) {
	case nil:
		return ""
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func isTextValue(v map[string]any) bool {
	_, a := v["SourceString"]
	_, b := v["LocalizedString"]
	_, c := v["CultureInvariantString"]
	return a || b || c
}

func isObjectValue(v map[string]any) bool {
	_, a := v["AssetPathName"]
	_, b := v["ObjectPath"]
	return a || b
}

func trimExportIndex(path string) string {
	dot := strings.LastIndex(path, ".")
	if dot == -1 || dot == len(path)-1 {
		return path
	}
	for _, r := range path[dot+1:] {
		if r < '0' || r > '9' {
			return path
		}
	}
	return path[:dot]
}

// Class is one asset class definition. It is immutable once created; the
// default object is loaded at most once, on first use.
type Class struct {
	Name      string
	SuperName string
	Package   string
	Abstract  bool

	load func() (*Object, error)
	once sync.Once
	obj  *Object
	err  error
}

// NewClass creates a class. load may be nil when the class has no default
// object (native classes, stripped exports).
func NewClass(name, superName, pkg string, load func() (*Object, error)) *Class {
	return &Class{Name: name, SuperName: superName, Package: pkg, load: load}
}

func (c *Class) HasDefaults() bool {
	return c != nil && c.load != nil
}

// Defaults returns the class default object, loading it on first call.
// Safe for concurrent use.
func (c *Class) Defaults() (*Object, error) {
	if !c.HasDefaults() {
		return nil, ErrNoDefaults
	}
	c.once.Do(func() {
		c.obj, c.err = c.load()
		if c.err == nil && c.obj == nil {
			c.err = ErrNoDefaults
		}
	})
	return c.obj, c.err
}
