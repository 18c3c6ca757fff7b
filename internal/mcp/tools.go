package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"soulminer/internal/asset"
	"soulminer/internal/config"
	"soulminer/internal/extract"
	"soulminer/internal/resolve"
)

const defaultLimit = 200

type DerivedClassesInput struct {
	Base            string `json:"base" jsonschema:"base class name"`
	ExcludeAbstract bool   `json:"exclude_abstract,omitempty" jsonschema:"drop abstract and _Base classes"`
	Limit           int    `json:"limit,omitempty" jsonschema:"maximum number of classes returned"`
}

type IsDerivedFromInput struct {
	Class    string `json:"class" jsonschema:"class name"`
	Ancestor string `json:"ancestor" jsonschema:"candidate ancestor class name"`
}

type AncestorsInput struct {
	Class string `json:"class" jsonschema:"class name"`
}

type SlotInput struct {
	Name     string `json:"name" jsonschema:"slot name"`
	Property string `json:"property" jsonschema:"default-object property to read"`
	Kind     string `json:"kind,omitempty" jsonschema:"text, image or property"`
	Required bool   `json:"required,omitempty"`
}

type ResolveClassInput struct {
	Class  string      `json:"class" jsonschema:"class to resolve"`
	Domain string      `json:"domain,omitempty" jsonschema:"schema domain whose slots to resolve"`
	Slots  []SlotInput `json:"slots,omitempty" jsonschema:"explicit slots; display name, description and icon when empty"`
}

type GetSchemaInput struct{}

type ClassOutput struct {
	Name     string `json:"name"`
	Super    string `json:"super,omitempty"`
	Package  string `json:"package,omitempty"`
	Abstract bool   `json:"abstract,omitempty"`
}

type DerivedClassesOutput struct {
	Classes   []ClassOutput `json:"classes"`
	Total     int           `json:"total"`
	Truncated bool          `json:"truncated,omitempty"`
}

type IsDerivedFromOutput struct {
	Derived bool `json:"derived"`
}

type AncestorsOutput struct {
	Chain []ClassOutput `json:"chain"`
}

type SlotValueOutput struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
	From  string `json:"from"`
}

type ResolveClassOutput struct {
	Class   string            `json:"class"`
	Values  []SlotValueOutput `json:"values"`
	Missing []string          `json:"missing,omitempty"`
}

type SchemaOutput struct {
	Version int            `json:"version"`
	Domains []DomainOutput `json:"domains"`
}

type DomainOutput struct {
	Name        string       `json:"name"`
	Table       string       `json:"table"`
	BaseClasses []string     `json:"base_classes"`
	Slots       []SlotInput  `json:"slots"`
	Combine     *CombineInfo `json:"combine,omitempty"`
}

type CombineInfo struct {
	Key      string   `json:"key"`
	Variant  string   `json:"variant"`
	Variants []string `json:"variants"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "derived_classes",
		Description: "List every class transitively derived from a base class",
	}, s.handleDerivedClasses)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "is_derived_from",
		Description: "Check whether a class has another class on its ancestor chain",
	}, s.handleIsDerivedFrom)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "ancestors",
		Description: "Return a class's ancestor chain up to its root",
	}, s.handleAncestors)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_class",
		Description: "Resolve a class's attributes, inheriting unset values from ancestors",
	}, s.handleResolveClass)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_schema",
		Description: "Return the extraction schema",
	}, s.handleGetSchema)
}

func (s *Server) handleDerivedClasses(ctx context.Context, req *sdk.CallToolRequest, input DerivedClassesInput) (*sdk.CallToolResult, DerivedClassesOutput, error) {
	if input.Base == "" {
		return nil, DerivedClassesOutput{}, fmt.Errorf("base is required")
	}
	if _, ok := s.index.Class(input.Base); !ok {
		return nil, DerivedClassesOutput{}, fmt.Errorf("class not found: %s", input.Base)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	output := DerivedClassesOutput{Classes: make([]ClassOutput, 0)}
	for _, class := range s.index.DerivedClasses(input.Base) {
		if input.ExcludeAbstract && extract.IsAbstract(class) {
			continue
		}
		output.Total++
		if len(output.Classes) >= limit {
			output.Truncated = true
			continue
		}
		output.Classes = append(output.Classes, s.classOutput(class))
	}
	return nil, output, nil
}

func (s *Server) handleIsDerivedFrom(ctx context.Context, req *sdk.CallToolRequest, input IsDerivedFromInput) (*sdk.CallToolResult, IsDerivedFromOutput, error) {
	if input.Class == "" || input.Ancestor == "" {
		return nil, IsDerivedFromOutput{}, fmt.Errorf("class and ancestor are required")
	}
	return nil, IsDerivedFromOutput{Derived: s.index.IsDerivedFrom(input.Class, input.Ancestor)}, nil
}

func (s *Server) handleAncestors(ctx context.Context, req *sdk.CallToolRequest, input AncestorsInput) (*sdk.CallToolResult, AncestorsOutput, error) {
	if input.Class == "" {
		return nil, AncestorsOutput{}, fmt.Errorf("class is required")
	}
	chain, err := s.index.Ancestors(input.Class)
	if err != nil {
		return nil, AncestorsOutput{}, err
	}
	if len(chain) == 0 {
		return nil, AncestorsOutput{}, fmt.Errorf("class not found: %s", input.Class)
	}
	output := AncestorsOutput{Chain: make([]ClassOutput, 0, len(chain))}
	for _, class := range chain {
		output.Chain = append(output.Chain, s.classOutput(class))
	}
	return nil, output, nil
}

func (s *Server) handleResolveClass(ctx context.Context, req *sdk.CallToolRequest, input ResolveClassInput) (*sdk.CallToolResult, ResolveClassOutput, error) {
	if input.Class == "" {
		return nil, ResolveClassOutput{}, fmt.Errorf("class is required")
	}
	class, ok := s.index.Class(input.Class)
	if !ok {
		return nil, ResolveClassOutput{}, fmt.Errorf("class not found: %s", input.Class)
	}

	query, err := s.query(input)
	if err != nil {
		return nil, ResolveClassOutput{}, err
	}
	result, err := s.resolver.Resolve(class, query)
	if err != nil {
		return nil, ResolveClassOutput{}, err
	}

	output := ResolveClassOutput{Class: class.Name, Values: make([]SlotValueOutput, 0, len(query.Slots))}
	for _, slot := range query.Slots {
		value, ok := result.Value(slot.Name)
		if !ok {
			continue
		}
		output.Values = append(output.Values, SlotValueOutput{Slot: slot.Name, Value: value.Text, From: value.Class})
	}
	output.Missing = result.Missing()
	return nil, output, nil
}

func (s *Server) query(input ResolveClassInput) (resolve.Query, error) {
	switch {
	case input.Domain != "":
		domain, ok := s.schema.DomainByName(input.Domain)
		if !ok {
			return resolve.Query{}, fmt.Errorf("unknown domain: %s", input.Domain)
		}
		return extract.Query(domain), nil
	case len(input.Slots) > 0:
		slots := make([]resolve.Slot, 0, len(input.Slots))
		required := false
		for _, slot := range input.Slots {
			kind := resolve.Kind(slot.Kind)
			if kind == "" {
				kind = resolve.KindText
			}
			slots = append(slots, resolve.Slot{Name: slot.Name, Property: slot.Property, Kind: kind, Required: slot.Required})
			required = required || slot.Required
		}
		if !required {
			slots[0].Required = true
		}
		return resolve.Query{Slots: slots}, nil
	default:
		return resolve.DisplayQuery(), nil
	}
}

func (s *Server) handleGetSchema(ctx context.Context, req *sdk.CallToolRequest, input GetSchemaInput) (*sdk.CallToolResult, SchemaOutput, error) {
	return nil, schemaOutputFromConfig(s.schema), nil
}

func (s *Server) classOutput(class *asset.Class) ClassOutput {
	out := ClassOutput{Name: class.Name, Package: class.Package, Abstract: class.Abstract}
	if super, ok := s.index.Super(class.Name); ok {
		out.Super = super.Name
	} else {
		out.Super = class.SuperName
	}
	return out
}

func schemaOutputFromConfig(schema *config.Schema) SchemaOutput {
	if schema == nil {
		return SchemaOutput{}
	}

	out := SchemaOutput{
		Version: schema.Version,
		Domains: make([]DomainOutput, 0, len(schema.Domains)),
	}
	for _, domain := range schema.Domains {
		domainOut := DomainOutput{
			Name:        domain.Name,
			Table:       domain.Table,
			BaseClasses: append([]string{}, domain.BaseClasses...),
			Slots:       make([]SlotInput, 0, len(domain.Slots)),
		}
		for _, slot := range domain.Slots {
			domainOut.Slots = append(domainOut.Slots, SlotInput{
				Name:     slot.Name,
				Property: slot.Property,
				Kind:     slot.Kind,
				Required: slot.Required,
			})
		}
		if domain.Combine != nil {
			domainOut.Combine = &CombineInfo{
				Key:      domain.Combine.Key,
				Variant:  domain.Combine.Variant,
				Variants: append([]string{}, domain.Combine.Variants...),
			}
		}
		out.Domains = append(out.Domains, domainOut)
	}
	return out
}
