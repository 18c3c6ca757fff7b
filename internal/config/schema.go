package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"soulminer/internal/store"
)

// Slot kinds understood by the extractor.
const (
	KindText     = "text"
	KindImage    = "image"
	KindProperty = "property"
)

// Combine key sources.
const (
	KeyName  = "name"
	KeyIcon  = "icon"
	KeyTitle = "title"
)

type Schema struct {
	Version int      `yaml:"version"`
	Natives []Native `yaml:"natives"`
	Domains []Domain `yaml:"domains"`

	domainIndex map[string]*Domain
}

// Native declares an engine class that never appears in the asset corpus.
type Native struct {
	Name  string `yaml:"name"`
	Super string `yaml:"super"`
}

type Domain struct {
	Name            string   `yaml:"name"`
	Table           string   `yaml:"table"`
	BaseClasses     []string `yaml:"base_classes"`
	ExcludeAbstract bool     `yaml:"exclude_abstract"`
	Slots           []Slot   `yaml:"slots"`
	Combine         *Combine `yaml:"combine"`
}

type Slot struct {
	Name     string `yaml:"name"`
	Property string `yaml:"property"`
	Kind     string `yaml:"kind"`
	Required bool   `yaml:"required"`
}

type Combine struct {
	Key              string   `yaml:"key"`
	Variant          string   `yaml:"variant"`
	Variants         []string `yaml:"variants"`
	MergeDescription bool     `yaml:"merge_description"`
}

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	if err := validateSchema(&schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	schema.domainIndex = make(map[string]*Domain)
	for i := range schema.Domains {
		domain := &schema.Domains[i]
		if strings.TrimSpace(domain.Table) == "" {
			domain.Table = domain.Name
		}
		for j := range domain.Slots {
			if domain.Slots[j].Kind == "" {
				domain.Slots[j].Kind = KindText
			}
		}
		schema.domainIndex[strings.ToLower(domain.Name)] = domain
	}

	return &schema, nil
}

func validateSchema(s *Schema) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.Domains) == 0 {
		return fmt.Errorf("at least one domain is required")
	}

	nativeNames := make(map[string]struct{})
	for i, native := range s.Natives {
		if strings.TrimSpace(native.Name) == "" {
			return fmt.Errorf("native %d name is required", i)
		}
		key := strings.ToLower(native.Name)
		if _, exists := nativeNames[key]; exists {
			return fmt.Errorf("duplicate native class: %s", native.Name)
		}
		nativeNames[key] = struct{}{}
	}

	domainNames := make(map[string]struct{})
	for i, domain := range s.Domains {
		if strings.TrimSpace(domain.Name) == "" {
			return fmt.Errorf("domain %d name is required", i)
		}
		key := strings.ToLower(domain.Name)
		if _, exists := domainNames[key]; exists {
			return fmt.Errorf("duplicate domain name: %s", domain.Name)
		}
		domainNames[key] = struct{}{}

		if err := validateDomain(&domain); err != nil {
			return fmt.Errorf("domain %s: %w", domain.Name, err)
		}
	}

	return nil
}

func validateDomain(d *Domain) error {
	if len(d.BaseClasses) == 0 {
		return fmt.Errorf("at least one base class is required")
	}
	for i, base := range d.BaseClasses {
		if strings.TrimSpace(base) == "" {
			return fmt.Errorf("base class %d is empty", i)
		}
	}
	if len(d.Slots) == 0 {
		return fmt.Errorf("at least one slot is required")
	}

	slotNames := make(map[string]struct{})
	required := false
	for _, slot := range d.Slots {
		name := strings.ToLower(strings.TrimSpace(slot.Name))
		if name == "" {
			return fmt.Errorf("slot with empty name")
		}
		if _, exists := slotNames[name]; exists {
			return fmt.Errorf("duplicate slot: %s", slot.Name)
		}
		slotNames[name] = struct{}{}
		if strings.TrimSpace(slot.Property) == "" {
			return fmt.Errorf("slot %s has no property", slot.Name)
		}
		switch strings.ToLower(slot.Kind) {
		case "", KindText, KindImage, KindProperty:
		default:
			return fmt.Errorf("slot %s has unknown kind: %s", slot.Name, slot.Kind)
		}
		required = required || slot.Required
	}
	if !required {
		return fmt.Errorf("at least one required slot is needed")
	}

	if d.Combine != nil {
		if err := validateCombine(d.Combine, slotNames); err != nil {
			return err
		}
	}
	return validateColumns(d)
}

func validateCombine(c *Combine, slotNames map[string]struct{}) error {
	switch key := strings.ToLower(strings.TrimSpace(c.Key)); {
	case key == KeyName, key == KeyIcon, key == KeyTitle:
		// The key is read from the slot of the same name.
		if _, ok := slotNames[key]; !ok {
			return fmt.Errorf("combine key %s needs a %s slot", c.Key, key)
		}
	case strings.HasPrefix(key, "slot:"):
		if _, ok := slotNames[strings.TrimPrefix(key, "slot:")]; !ok {
			return fmt.Errorf("combine key references unknown slot: %s", c.Key)
		}
	default:
		return fmt.Errorf("unknown combine key: %q", c.Key)
	}
	if _, ok := slotNames[strings.ToLower(strings.TrimSpace(c.Variant))]; !ok {
		return fmt.Errorf("combine variant references unknown slot: %q", c.Variant)
	}
	if len(c.Variants) < 2 {
		return fmt.Errorf("combine needs at least two variants")
	}
	seen := make(map[string]struct{})
	for _, v := range c.Variants {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("combine has an empty variant")
		}
		key := strings.ToLower(v)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate combine variant: %s", v)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// validateColumns checks the table and every generated column against the
// identifier rules the stores enforce, so a bad schema fails at load time.
func validateColumns(d *Domain) error {
	table := strings.TrimSpace(d.Table)
	if table == "" {
		table = d.Name
	}
	if _, err := store.QuoteIdent(table); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	seen := make(map[string]struct{})
	for _, col := range d.Columns() {
		if _, err := store.QuoteIdent(col); err != nil {
			return fmt.Errorf("column: %w", err)
		}
		if col == store.RowNumColumn {
			return fmt.Errorf("column %s is reserved", col)
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("column %s clashes with another slot or generated column", col)
		}
		seen[col] = struct{}{}
	}
	return nil
}

func (s *Schema) DomainByName(name string) (*Domain, bool) {
	if s == nil {
		return nil, false
	}
	domain, ok := s.domainIndex[strings.ToLower(name)]
	return domain, ok
}

// NativeMap returns native class names mapped to their native ancestor.
func (s *Schema) NativeMap() map[string]string {
	if s == nil {
		return nil
	}
	natives := make(map[string]string, len(s.Natives))
	for _, native := range s.Natives {
		natives[native.Name] = native.Super
	}
	return natives
}

// Columns lists the output columns for the domain in slot order. Combined
// domains get one class column per variant instead of a single class column.
func (d *Domain) Columns() []string {
	var cols []string
	if d.Combine == nil {
		cols = append(cols, "class")
	} else {
		cols = append(cols, "key")
		for _, v := range d.Combine.Variants {
			cols = append(cols, "class_"+strings.ToLower(v))
		}
	}
	for _, slot := range d.Slots {
		if d.Combine != nil && strings.EqualFold(slot.Name, d.Combine.Variant) {
			continue
		}
		cols = append(cols, strings.ToLower(slot.Name))
	}
	return cols
}

// SlotKey parses a "slot:<name>" combine key; ok is false for other sources.
func (c *Combine) SlotKey() (string, bool) {
	key := strings.ToLower(strings.TrimSpace(c.Key))
	if !strings.HasPrefix(key, "slot:") {
		return "", false
	}
	return strings.TrimPrefix(key, "slot:"), true
}
