package component

import (
	"fmt"
	"slices"
	"time"
)

type setter func(c Component, v Value) error

func intField[T Component](field func(T) *int) setter {
	return func(c Component, v Value) error {
		n, err := v.AsInt()
		if err != nil {
			return err
		}
		*field(c.(T)) = n
		return nil
	}
}

func boolField[T Component](field func(T) *bool) setter {
	return func(c Component, v Value) error {
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		*field(c.(T)) = b
		return nil
	}
}

func stringField[T Component](field func(T) *string) setter {
	return func(c Component, v Value) error {
		s, err := v.AsString()
		if err != nil {
			return err
		}
		*field(c.(T)) = s
		return nil
	}
}

func stringsField[T Component](field func(T) *[]string) setter {
	return func(c Component, v Value) error {
		ss, err := v.AsStrings()
		if err != nil {
			return err
		}
		*field(c.(T)) = ss
		return nil
	}
}

func durationField[T Component](field func(T) *time.Duration) setter {
	return func(c Component, v Value) error {
		d, err := v.AsDuration()
		if err != nil {
			return err
		}
		*field(c.(T)) = d
		return nil
	}
}

// attributes maps each kind to its settable attribute names. Names follow
// the blueprint files (snake_case).
var attributes = map[Kind]map[string]setter{
	KindPosition: {
		"x": intField(func(c *Position) *int { return &c.X }),
		"y": intField(func(c *Position) *int { return &c.Y }),
	},
	KindRenderable: {
		"name":      stringField(func(c *Renderable) *string { return &c.Name }),
		"character": stringField(func(c *Renderable) *string { return &c.Character }),
		"z_index":   intField(func(c *Renderable) *int { return &c.ZIndex }),
		"visible":   boolField(func(c *Renderable) *bool { return &c.Visible }),
	},
	KindColliding: {
		"blocking": boolField(func(c *Colliding) *bool { return &c.Blocking }),
	},
	KindMap: {
		"name":      stringField(func(c *Map) *string { return &c.Name }),
		"level":     intField(func(c *Map) *int { return &c.Level }),
		"tile_size": intField(func(c *Map) *int { return &c.TileSize }),
		"entry_x":   intField(func(c *Map) *int { return &c.Entry.X }),
		"entry_y":   intField(func(c *Map) *int { return &c.Entry.Y }),
	},
	KindTurn: {
		"ticks":         intField(func(c *Turn) *int { return &c.Ticks }),
		"locking":       boolField(func(c *Turn) *bool { return &c.Locking }),
		"min_turn_time": durationField(func(c *Turn) *time.Duration { return &c.MinTurnTime }),
		"delta":         durationField(func(c *Turn) *time.Duration { return &c.Delta }),
	},
	KindUseable: {
		"use_event": stringField(func(c *Useable) *string { return &c.UseEvent }),
		"script":    stringField(func(c *Useable) *string { return &c.Script }),
	},
	KindMapTransition: {
		"target_map":   stringField(func(c *MapTransition) *string { return &c.TargetMap }),
		"target_level": intField(func(c *MapTransition) *int { return &c.TargetLevel }),
		"generator":    stringField(func(c *MapTransition) *string { return &c.Generator }),
	},
	KindTile: {
		"name":     stringField(func(c *Tile) *string { return &c.Name }),
		"variants": stringsField(func(c *Tile) *[]string { return &c.Variants }),
	},
	KindInput: {},
	KindBody: {
		"width":  intField(func(c *Body) *int { return &c.Width }),
		"height": intField(func(c *Body) *int { return &c.Height }),
	},
}

// Set assigns attribute name of c. Unknown names and mistyped values are
// rejected without modifying c.
func Set(c Component, name string, v Value) error {
	set, ok := attributes[c.Kind()][name]
	if !ok {
		return fmt.Errorf("%s: %w %q", c.Kind(), ErrUnknownAttribute, name)
	}
	if err := set(c, v); err != nil {
		return fmt.Errorf("%s.%s: %w", c.Kind(), name, err)
	}
	return nil
}

// Validate checks that name is an attribute of k that accepts v.
func Validate(k Kind, name string, v Value) error {
	c, err := New(k)
	if err != nil {
		return err
	}
	return Set(c, name, v)
}

// Attributes lists the attribute names of k in sorted order.
func Attributes(k Kind) []string {
	names := make([]string, 0, len(attributes[k]))
	for n := range attributes[k] {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
