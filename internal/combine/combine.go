// Package combine groups per-variant records that describe one logical entity
// and merges each group into a single combined record.
package combine

import (
	"errors"
	"fmt"
	"strings"

	"soulminer/internal/logger"
)

var ErrEmptyGroup = errors.New("merge called on an empty group")

// Groups partitions records by identity key. Keys keep first-seen order and
// each group keeps arrival order.
type Groups[T any] struct {
	keys  []string
	byKey map[string][]T
}

func GroupByIdentity[T any](records []T, key func(T) string) *Groups[T] {
	g := &Groups[T]{byKey: make(map[string][]T)}
	for _, record := range records {
		k := key(record)
		if _, ok := g.byKey[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.byKey[k] = append(g.byKey[k], record)
	}
	return g
}

func (g *Groups[T]) Keys() []string {
	return append([]string(nil), g.keys...)
}

func (g *Groups[T]) Get(key string) []T {
	return g.byKey[key]
}

func (g *Groups[T]) Len() int {
	return len(g.keys)
}

// Combined is one logical entity built from its variants. Slots holds one
// record per discriminator, in first-arrival order.
type Combined[T any] struct {
	Key   string
	slots map[string]T
	order []string
}

func (c *Combined[T]) Slot(variant string) (T, bool) {
	v, ok := c.slots[variant]
	return v, ok
}

// Variants lists the filled discriminators in arrival order.
func (c *Combined[T]) Variants() []string {
	return append([]string(nil), c.order...)
}

// Records returns the slotted records in arrival order.
func (c *Combined[T]) Records() []T {
	out := make([]T, 0, len(c.order))
	for _, variant := range c.order {
		out = append(out, c.slots[variant])
	}
	return out
}

func (c *Combined[T]) Len() int {
	return len(c.order)
}

// Spec carries the per-domain functions that read a raw record.
type Spec[T any] struct {
	ID      func(T) int
	Key     func(T) string
	Variant func(T) string
	// Name, when set, labels records in warnings alongside their id.
	Name func(T) string
	// Slots, when set, lists the discriminators the domain expects. Records
	// naming any other discriminator are dropped with a warning.
	Slots []string
}

type Engine[T any] struct {
	spec Spec[T]
	log  *logger.Logger
}

func New[T any](spec Spec[T], log *logger.Logger) (*Engine[T], error) {
	if spec.Key == nil || spec.Variant == nil {
		return nil, fmt.Errorf("combine spec requires key and variant functions")
	}
	if spec.ID == nil {
		spec.ID = func(T) int { return 0 }
	}
	return &Engine[T]{spec: spec, log: logger.OrNop(log)}, nil
}

func (e *Engine[T]) GroupByIdentity(records []T) *Groups[T] {
	return GroupByIdentity(records, e.spec.Key)
}

// Merge slots every record of the group by its discriminator. A second record
// claiming an occupied slot is dropped with a warning naming both records.
func (e *Engine[T]) Merge(key string, group []T) (*Combined[T], error) {
	if len(group) == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrEmptyGroup)
	}

	combined := &Combined[T]{Key: key, slots: make(map[string]T, len(group))}
	for _, record := range group {
		variant := e.spec.Variant(record)
		if !e.expected(variant) {
			e.log.Warn("unexpected variant, ignoring record",
				e.fields(key, variant, "record", record)...,
			)
			continue
		}
		if kept, taken := combined.slots[variant]; taken {
			fields := e.fields(key, variant, "kept", kept)
			fields = append(fields, e.label("dropped", record)...)
			e.log.Warn("variant slot already filled, keeping first", fields...)
			continue
		}
		combined.slots[variant] = record
		combined.order = append(combined.order, variant)
	}
	return combined, nil
}

func (e *Engine[T]) fields(key, variant, role string, record T) []any {
	return append([]any{"key", key, "variant", variant}, e.label(role, record)...)
}

// label logs a record as <role>_id and, when Name is set, <role>_name.
func (e *Engine[T]) label(role string, record T) []any {
	out := []any{role + "_id", e.spec.ID(record)}
	if e.spec.Name != nil {
		out = append(out, role+"_name", e.spec.Name(record))
	}
	return out
}

// Combine groups records and merges every group, in first-seen key order.
// Groups left with no slotted record are omitted.
func (e *Engine[T]) Combine(records []T) ([]*Combined[T], error) {
	groups := e.GroupByIdentity(records)
	out := make([]*Combined[T], 0, groups.Len())
	for _, key := range groups.keys {
		combined, err := e.Merge(key, groups.byKey[key])
		if err != nil {
			return nil, err
		}
		if combined.Len() == 0 {
			continue
		}
		out = append(out, combined)
	}
	return out, nil
}

func (e *Engine[T]) expected(variant string) bool {
	if len(e.spec.Slots) == 0 {
		return true
	}
	for _, slot := range e.spec.Slots {
		if strings.EqualFold(slot, variant) {
			return true
		}
	}
	return false
}
