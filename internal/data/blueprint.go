package data

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/entity"
)

var (
	ErrUnknownBlueprint = errors.New("unknown blueprint")
	ErrBlueprintCycle   = errors.New("blueprint inheritance cycle")
)

//go:embed blueprints/*.yaml
var embedded embed.FS

// Embedded returns the blueprint files shipped with the engine.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "blueprints")
	if err != nil {
		panic(err)
	}
	return sub
}

// Dir returns the blueprints in dir, or the embedded ones when dir is empty.
func Dir(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// Blueprint is a named entity template as declared in a namespace file.
type Blueprint struct {
	Name       string
	Extends    string
	Components []component.Kind
	Attributes map[component.Kind]map[string]component.Value
}

type rawBlueprint struct {
	Extends    string         `yaml:"extends"`
	Components []string       `yaml:"components"`
	Attributes map[string]any `yaml:"attributes"`
}

// BlueprintRegistry loads blueprint namespaces on first use. A namespace
// is the file <namespace>.yaml; blueprints are addressed as
// "namespace.name". Every blueprint of a namespace is validated and
// resolved when the file is loaded.
// Accessed only from the game loop goroutine, no locks.
type BlueprintRegistry struct {
	fsys       fs.FS
	log        *zap.Logger
	namespaces map[string]map[string]*Blueprint
	resolved   map[string]*entity.Config
}

func NewBlueprintRegistry(fsys fs.FS, log *zap.Logger) *BlueprintRegistry {
	return &BlueprintRegistry{
		fsys:       fsys,
		log:        log,
		namespaces: make(map[string]map[string]*Blueprint),
		resolved:   make(map[string]*entity.Config),
	}
}

// LoadAll loads every namespace file in the registry's file system.
func (r *BlueprintRegistry) LoadAll() error {
	files, err := fs.Glob(r.fsys, "*.yaml")
	if err != nil {
		return fmt.Errorf("list blueprint files: %w", err)
	}
	for _, f := range files {
		if err := r.Load(strings.TrimSuffix(f, ".yaml")); err != nil {
			return err
		}
	}
	return nil
}

// Load reads and validates one namespace. Loading twice is a no-op.
func (r *BlueprintRegistry) Load(namespace string) error {
	if _, ok := r.namespaces[namespace]; ok {
		return nil
	}
	file := namespace + ".yaml"
	raw, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return fmt.Errorf("read blueprints %s: %w", file, err)
	}
	var entries map[string]rawBlueprint
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse blueprints %s: %w", file, err)
	}

	table := make(map[string]*Blueprint, len(entries))
	for name, e := range entries {
		bp, err := parseBlueprint(namespace, name, e)
		if err != nil {
			return fmt.Errorf("blueprints %s: %w", file, err)
		}
		table[name] = bp
	}
	r.namespaces[namespace] = table

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, namespace+"."+name)
	}
	slices.Sort(names)
	for _, full := range names {
		if _, err := r.resolve(full, nil); err != nil {
			r.forget(namespace)
			return fmt.Errorf("blueprints %s: %w", file, err)
		}
	}
	r.log.Debug("loaded blueprints", zap.String("namespace", namespace), zap.Int("count", len(table)))
	return nil
}

func parseBlueprint(namespace, name string, e rawBlueprint) (*Blueprint, error) {
	bp := &Blueprint{
		Name:       namespace + "." + name,
		Extends:    e.Extends,
		Attributes: make(map[component.Kind]map[string]component.Value),
	}
	if bp.Extends != "" && !strings.Contains(bp.Extends, ".") {
		bp.Extends = namespace + "." + bp.Extends
	}
	for _, c := range e.Components {
		k, err := component.ParseKind(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", bp.Name, err)
		}
		bp.Components = append(bp.Components, k)
	}
	for key, raw := range e.Attributes {
		k, attr, err := component.ParseAttributeKey(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", bp.Name, err)
		}
		v, err := component.ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", bp.Name, key, err)
		}
		if err := component.Validate(k, attr, v); err != nil {
			return nil, fmt.Errorf("%s: %w", bp.Name, err)
		}
		if bp.Attributes[k] == nil {
			bp.Attributes[k] = make(map[string]component.Value)
		}
		bp.Attributes[k][attr] = v
	}
	return bp, nil
}

func (r *BlueprintRegistry) forget(namespace string) {
	delete(r.namespaces, namespace)
	for name := range r.resolved {
		if strings.HasPrefix(name, namespace+".") {
			delete(r.resolved, name)
		}
	}
}

// Get returns the blueprint as declared, without inherited values.
func (r *BlueprintRegistry) Get(name string) (*Blueprint, error) {
	namespace, short, ok := strings.Cut(name, ".")
	if !ok {
		return nil, fmt.Errorf("%w %q: want namespace.name", ErrUnknownBlueprint, name)
	}
	if err := r.Load(namespace); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %q: %v", ErrUnknownBlueprint, name, err)
		}
		return nil, err
	}
	bp, ok := r.namespaces[namespace][short]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBlueprint, name)
	}
	return bp, nil
}

// Resolve returns a fresh configuration for the blueprint with all parent
// components and attributes merged in, child values winning.
func (r *BlueprintRegistry) Resolve(name string) (*entity.Config, error) {
	cfg, err := r.resolve(name, nil)
	if err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

func (r *BlueprintRegistry) resolve(name string, chain []string) (*entity.Config, error) {
	if cfg, ok := r.resolved[name]; ok {
		return cfg, nil
	}
	if slices.Contains(chain, name) {
		return nil, fmt.Errorf("%w: %s", ErrBlueprintCycle, strings.Join(append(chain, name), " -> "))
	}
	bp, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	cfg := entity.NewConfig()
	if bp.Extends != "" {
		parent, err := r.resolve(bp.Extends, append(chain, name))
		if err != nil {
			return nil, fmt.Errorf("%s extends %s: %w", name, bp.Extends, err)
		}
		cfg = parent.Clone()
	}
	for _, k := range bp.Components {
		cfg.AddComponent(k)
	}
	for k, attrs := range bp.Attributes {
		for attr, v := range attrs {
			cfg.AddAttribute(k, attr, v)
		}
	}
	r.resolved[name] = cfg
	return cfg, nil
}

// Count returns the number of loaded blueprints.
func (r *BlueprintRegistry) Count() int {
	n := 0
	for _, t := range r.namespaces {
		n += len(t)
	}
	return n
}
