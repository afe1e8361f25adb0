package mapgen

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/world"
)

// DefaultGenerator is used when a request names no generator.
const DefaultGenerator = "dungeon"

// Recorder is notified about every generated level.
type Recorder interface {
	MapGenerated(generator string)
}

// Manager owns every generated map. Maps are grouped by name into levels;
// a level is generated the first time it is requested and reused after.
// Level seeds derive from the base seed, the map name and the level, so a
// map name always yields the same layout for one base seed.
type Manager struct {
	em         *entity.Manager
	atlas      *world.Atlas
	generators map[string]Generator
	rooms      map[ecs.EntityID][]Room
	seed       uint64
	recorder   Recorder
	log        *zap.Logger
}

func NewManager(em *entity.Manager, atlas *world.Atlas, seed int64, log *zap.Logger) *Manager {
	return &Manager{
		em:         em,
		atlas:      atlas,
		generators: make(map[string]Generator),
		rooms:      make(map[ecs.EntityID][]Room),
		seed:       uint64(seed),
		log:        log,
	}
}

// Register installs a generator under name, replacing any previous one.
func (m *Manager) Register(name string, g Generator) {
	m.generators[name] = g
}

// SetRecorder installs a generation observer.
func (m *Manager) SetRecorder(r Recorder) { m.recorder = r }

func (m *Manager) Atlas() *world.Atlas { return m.atlas }

// Get returns the map entity of level of name, generating it with the
// named generator when missing. An empty name picks a fresh random name.
func (m *Manager) Get(name string, level int, generator string) (ecs.EntityID, error) {
	if level < 0 {
		return 0, fmt.Errorf("map %s: negative level %d", name, level)
	}
	if generator == "" {
		generator = DefaultGenerator
	}
	if name == "" {
		name = m.RandomName(generator)
	}
	if ref, ok := m.atlas.Lookup(name, level); ok {
		rec, _ := m.atlas.Get(ref)
		return rec.Entity, nil
	}

	g, ok := m.generators[generator]
	if !ok {
		return 0, fmt.Errorf("map %s: unknown generator %q", name, generator)
	}
	res, err := g.Generate(name, level, rand.New(rand.NewSource(m.levelSeed(name, level))))
	if err != nil {
		return 0, err
	}
	ref, err := m.atlas.Add(name, level, res.Map)
	if err != nil {
		return 0, err
	}
	if mc, ok := entity.Lookup[component.Map](m.em, res.Map); ok {
		mc.Ref = ref
	}
	if above, ok := m.atlas.Lookup(name, level-1); ok {
		if err := m.atlas.Link(above, ref); err != nil {
			return 0, err
		}
	}
	m.rooms[res.Map] = res.Rooms
	if m.recorder != nil {
		m.recorder.MapGenerated(generator)
	}
	m.log.Info("map generated",
		zap.String("name", name),
		zap.Int("level", level),
		zap.String("generator", generator),
		zap.Uint64("entity", uint64(res.Map)),
	)
	return res.Map, nil
}

// Collection returns the generated levels of name in level order.
func (m *Manager) Collection(name string) []ecs.EntityID {
	n := m.atlas.Levels(name)
	out := make([]ecs.EntityID, 0, n)
	for level := 0; level < n; level++ {
		ref, _ := m.atlas.Lookup(name, level)
		rec, _ := m.atlas.Get(ref)
		out = append(out, rec.Entity)
	}
	return out
}

// Rooms returns the rooms recorded for a generated map.
func (m *Manager) Rooms(mapID ecs.EntityID) []Room { return m.rooms[mapID] }

// RandomName returns an unused map name.
func (m *Manager) RandomName(generator string) string {
	for {
		name := generator + "-" + uuid.NewString()[:8]
		if m.atlas.Levels(name) == 0 {
			return name
		}
	}
}

func (m *Manager) levelSeed(name string, level int) int64 {
	d := xxhash.New()
	d.WriteString(name)
	d.WriteString("#")
	d.WriteString(strconv.Itoa(level))
	return int64(d.Sum64() ^ m.seed)
}
