package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrNotExportList  = errors.New("not a JSON export list")
	ErrInvalidJSON    = errors.New("invalid JSON in export list")
	ErrMissingName    = errors.New("export missing required 'Name' field")
	ErrObjectNotFound = errors.New("object not found in package")
)

const defaultPrefix = "Default__"

// ClassDecl is a class export as declared in a package file.
type ClassDecl struct {
	Name         string
	SuperName    string
	DefaultsName string
	Abstract     bool
}

// Package is one parsed export file. Object properties stay raw until asked for.
type Package struct {
	Path    string
	Classes []ClassDecl

	objects map[string]json.RawMessage
}

type objectRef struct {
	ObjectName string `json:"ObjectName"`
	ObjectPath string `json:"ObjectPath"`
}

type export struct {
	Type               string          `json:"Type"`
	Name               string          `json:"Name"`
	SuperStruct        *objectRef      `json:"SuperStruct"`
	Super              *objectRef      `json:"Super"`
	ClassFlags         string          `json:"ClassFlags"`
	ClassDefaultObject *objectRef      `json:"ClassDefaultObject"`
	Properties         json.RawMessage `json:"Properties"`
}

func ParsePackageFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pkg, err := ParsePackage(data)
	if err != nil {
		return nil, err
	}
	pkg.Path = path
	return pkg, nil
}

func ParsePackage(content []byte) (*Package, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		return nil, ErrNotExportList
	}

	var exports []export
	if err := json.Unmarshal(trimmed, &exports); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	pkg := &Package{objects: make(map[string]json.RawMessage)}
	for i, exp := range exports {
		if strings.TrimSpace(exp.Name) == "" {
			return nil, fmt.Errorf("export %d: %w", i, ErrMissingName)
		}
		if isClassExport(exp.Type) {
			decl := ClassDecl{
				Name:     exp.Name,
				Abstract: strings.Contains(exp.ClassFlags, "CLASS_Abstract"),
			}
			super := exp.SuperStruct
			if super == nil {
				super = exp.Super
			}
			if super != nil {
				decl.SuperName = RefName(super.ObjectName)
			}
			if exp.ClassDefaultObject != nil {
				decl.DefaultsName = RefName(exp.ClassDefaultObject.ObjectName)
			}
			pkg.Classes = append(pkg.Classes, decl)
			continue
		}
		if exp.Properties != nil {
			pkg.objects[strings.ToLower(exp.Name)] = exp.Properties
		}
	}

	// Classes exported without a ClassDefaultObject reference still own the
	// conventional Default__ object when it is present.
	for i := range pkg.Classes {
		decl := &pkg.Classes[i]
		if decl.DefaultsName != "" {
			continue
		}
		name := defaultPrefix + decl.Name
		if _, ok := pkg.objects[strings.ToLower(name)]; ok {
			decl.DefaultsName = name
		}
	}

	return pkg, nil
}

// Object decodes the named object's properties, keeping their order.
func (p *Package) Object(name string) (*Object, error) {
	raw, ok := p.objects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrObjectNotFound)
	}
	props, err := decodeProperties(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &Object{Name: name, Properties: props}, nil
}

// RefName extracts the bare object name from references such as
// "BlueprintGeneratedClass'BP_Base_C'" or "Class'/Script/Engine.Actor'".
func RefName(ref string) string {
	name := strings.TrimSpace(ref)
	if open := strings.Index(name, "'"); open != -1 {
		name = strings.TrimSuffix(name[open+1:], "'")
	}
	if dot := strings.LastIndexAny(name, ".:"); dot != -1 {
		name = name[dot+1:]
	}
	return name
}

func isClassExport(exportType string) bool {
	return exportType == "Class" || strings.HasSuffix(exportType, "GeneratedClass")
}

func decodeProperties(raw json.RawMessage) ([]Property, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("properties must be an object")
	}

	var props []Property
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected property key %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}
		props = append(props, Property{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return props, nil
}
