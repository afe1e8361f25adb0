package component

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Kind enumerates every component type the engine knows.
type Kind int

const (
	KindPosition Kind = iota
	KindRenderable
	KindColliding
	KindMap
	KindTurn
	KindUseable
	KindMapTransition
	KindTile
	KindInput
	KindBody

	kindCount
)

var (
	ErrUnknownKind      = errors.New("unknown component")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrValueType        = errors.New("attribute value has wrong type")
)

var kindNames = [kindCount]string{
	KindPosition:      "Position",
	KindRenderable:    "Renderable",
	KindColliding:     "Colliding",
	KindMap:           "Map",
	KindTurn:          "Turn",
	KindUseable:       "Useable",
	KindMapTransition: "MapTransition",
	KindTile:          "Tile",
	KindInput:         "Input",
	KindBody:          "Body",
}

var (
	fold        = cases.Fold()
	kindsByName = func() map[string]Kind {
		m := make(map[string]Kind, kindCount)
		for k, n := range kindNames {
			m[fold.String(n)] = Kind(k)
		}
		return m
	}()
)

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, kindCount)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// ParseKind resolves a component name. Matching ignores case, so
// "position" and "Position" name the same kind.
func ParseKind(name string) (Kind, error) {
	k, ok := kindsByName[fold.String(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownKind, name)
	}
	return k, nil
}

// ParseAttributeKey splits "Component.attribute" into its kind and
// attribute name.
func ParseAttributeKey(key string) (Kind, string, error) {
	comp, attr, ok := strings.Cut(key, ".")
	if !ok || attr == "" {
		return 0, "", fmt.Errorf("attribute key %q: want Component.attribute", key)
	}
	k, err := ParseKind(comp)
	if err != nil {
		return 0, "", err
	}
	return k, attr, nil
}
