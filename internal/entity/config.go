package entity

import (
	"maps"
	"slices"

	"github.com/nightcaste/nightcaste/internal/component"
)

// Config stages the components and attribute values of an entity before
// it is built. It is mutable and meant to be discarded after use.
type Config struct {
	attrs map[component.Kind]map[string]component.Value
}

func NewConfig() *Config {
	return &Config{attrs: make(map[component.Kind]map[string]component.Value)}
}

// AddComponent declares kind k without attributes.
func (c *Config) AddComponent(k component.Kind) *Config {
	if _, ok := c.attrs[k]; !ok {
		c.attrs[k] = make(map[string]component.Value)
	}
	return c
}

// AddAttribute sets one attribute, declaring its component if needed.
func (c *Config) AddAttribute(k component.Kind, name string, v component.Value) *Config {
	c.AddComponent(k)
	c.attrs[k][name] = v
	return c
}

// Has reports whether k is declared.
func (c *Config) Has(k component.Kind) bool {
	_, ok := c.attrs[k]
	return ok
}

// Attribute returns one staged value.
func (c *Config) Attribute(k component.Kind, name string) (component.Value, bool) {
	v, ok := c.attrs[k][name]
	return v, ok
}

// Attributes returns the staged attributes of k.
func (c *Config) Attributes(k component.Kind) map[string]component.Value {
	return c.attrs[k]
}

// Kinds returns the declared kinds in ascending order.
func (c *Config) Kinds() []component.Kind {
	return slices.Sorted(maps.Keys(c.attrs))
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := NewConfig()
	for k, a := range c.attrs {
		out.attrs[k] = maps.Clone(a)
	}
	return out
}

// Merge returns a copy of c with override applied on top: override values
// replace existing ones and components declared without attributes are
// kept.
func (c *Config) Merge(override *Config) *Config {
	out := c.Clone()
	if override == nil {
		return out
	}
	for k, a := range override.attrs {
		out.AddComponent(k)
		for name, v := range a {
			out.attrs[k][name] = v
		}
	}
	return out
}
