package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadSchema(t *testing.T) {
	t.Run("valid schema loads", func(t *testing.T) {
		schema, err := LoadSchema(filepath.Join("testdata", "valid_schema.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(schema.Domains) != 2 {
			t.Fatalf("expected 2 domains, got %d", len(schema.Domains))
		}
	})

	cases := []struct {
		name     string
		contents string
	}{
		{"no domains", "version: 1\ndomains: []\n"},
		{"bad version", "version: 3\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n"},
		{"duplicate domain names", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n  - name: A\n    base_classes: [B]\n    slots:\n      - { name: Name, property: Name, required: true }\n"},
		{"no base classes", "version: 1\ndomains:\n  - name: a\n    slots:\n      - { name: Name, property: Name, required: true }\n"},
		{"no required slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name }\n"},
		{"slot without property", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, required: true }\n"},
		{"duplicate slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: name, property: Title }\n"},
		{"unknown kind", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, kind: audio, required: true }\n"},
		{"duplicate native", "version: 1\nnatives:\n  - { name: Actor }\n  - { name: actor }\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n"},
		{"combine unknown key", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: colour, variant: gender, variants: [M, F] }\n"},
		{"combine key unknown slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: \"slot:set\", variant: gender, variants: [M, F] }\n"},
		{"combine unknown variant slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n    combine: { key: name, variant: gender, variants: [M, F] }\n"},
		{"combine single variant", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: name, variant: gender, variants: [M] }\n"},
		{"combine duplicate variant", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: name, variant: gender, variants: [M, M] }\n"},
		{"combine duplicate variant differing in case", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: name, variant: gender, variants: [Male, male] }\n"},
		{"combine title key without title slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: title, variant: gender, variants: [Male, Female] }\n"},
		{"combine icon key without icon slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: icon, variant: gender, variants: [Male, Female] }\n"},
		{"combine name key without name slot", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Title, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: name, variant: gender, variants: [Male, Female] }\n"},
		{"combine variant not an identifier", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n    combine: { key: name, variant: gender, variants: [Male, \"Non Binary\"] }\n"},
		{"combine slot clashes with variant column", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n      - { name: Class_Male, property: Other }\n    combine: { key: name, variant: gender, variants: [Male, Female] }\n"},
		{"combine slot clashes with key column", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Gender, property: Gender }\n      - { name: Key, property: Other }\n    combine: { key: name, variant: gender, variants: [Male, Female] }\n"},
		{"slot clashes with class column", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Class, property: Other }\n"},
		{"slot named row_num", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: row_num, property: Other }\n"},
		{"slot not an identifier", "version: 1\ndomains:\n  - name: a\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Base Damage, property: BaseDamage }\n"},
		{"table not an identifier", "version: 1\ndomains:\n  - name: a\n    table: armor-sets\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n"},
		{"domain name not an identifier when used as table", "version: 1\ndomains:\n  - name: armor sets\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempSchema(t, tc.contents)
			if _, err := LoadSchema(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSchemaHelpers(t *testing.T) {
	schema, err := LoadSchema(filepath.Join("testdata", "valid_schema.yaml"))
	if err != nil {
		t.Fatalf("loading schema: %v", err)
	}

	t.Run("DomainByName case-insensitive", func(t *testing.T) {
		if _, ok := schema.DomainByName("WEAPONS"); !ok {
			t.Fatalf("expected to find weapons domain")
		}
		if _, ok := schema.DomainByName("potions"); ok {
			t.Fatalf("expected potions to be unknown")
		}
	})

	t.Run("table defaults to domain name", func(t *testing.T) {
		weapons, _ := schema.DomainByName("weapons")
		if weapons.Table != "weapons" {
			t.Fatalf("expected weapons table, got %q", weapons.Table)
		}
		armor, _ := schema.DomainByName("armor")
		if armor.Table != "armor_sets" {
			t.Fatalf("expected armor_sets table, got %q", armor.Table)
		}
	})

	t.Run("slot kind defaults to text", func(t *testing.T) {
		weapons, _ := schema.DomainByName("weapons")
		if weapons.Slots[0].Kind != KindText {
			t.Fatalf("expected text kind, got %q", weapons.Slots[0].Kind)
		}
	})

	t.Run("NativeMap", func(t *testing.T) {
		natives := schema.NativeMap()
		if natives["Actor"] != "Object" {
			t.Fatalf("expected Actor to derive from Object, got %q", natives["Actor"])
		}
		if super, ok := natives["Object"]; !ok || super != "" {
			t.Fatalf("expected Object to be a native root")
		}
	})

	t.Run("Columns", func(t *testing.T) {
		weapons, _ := schema.DomainByName("weapons")
		want := []string{"class", "name", "description", "icon", "damage"}
		if got := weapons.Columns(); !slices.Equal(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		armor, _ := schema.DomainByName("armor")
		want = []string{"key", "class_male", "class_female", "name", "description"}
		if got := armor.Columns(); !slices.Equal(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("SlotKey", func(t *testing.T) {
		c := &Combine{Key: "slot:Set"}
		if key, ok := c.SlotKey(); !ok || key != "set" {
			t.Fatalf("expected slot key set, got %q %v", key, ok)
		}
		c = &Combine{Key: "name"}
		if _, ok := c.SlotKey(); ok {
			t.Fatalf("expected name key not to be a slot key")
		}
	})
}

func writeTempSchema(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp schema: %v", err)
	}
	return path
}

func TestParseSchema_CombineKeyFromSlot(t *testing.T) {
	contents := "version: 1\ndomains:\n  - name: masks\n    base_classes: [A]\n    slots:\n      - { name: Name, property: Name, required: true }\n      - { name: Title, property: Title }\n      - { name: Gender, property: Gender }\n    combine: { key: title, variant: gender, variants: [Male, Female] }\n"
	schema, err := ParseSchema([]byte(contents))
	if err != nil {
		t.Fatalf("expected title key with a Title slot to load, got %v", err)
	}
	masks, _ := schema.DomainByName("masks")
	want := []string{"key", "class_male", "class_female", "name", "title"}
	if !slices.Equal(masks.Columns(), want) {
		t.Fatalf("expected columns %v, got %v", want, masks.Columns())
	}
}
