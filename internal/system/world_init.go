package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
)

// WorldInitializer creates the player on WorldEnter and sends it to the
// start map.
type WorldInitializer struct {
	listeners
	em        *entity.Manager
	player    string
	startMap  string
	generator string
	log       *zap.Logger
}

func NewWorldInitializer(bus *event.Bus, em *entity.Manager, player, startMap, generator string, log *zap.Logger) *WorldInitializer {
	p := &WorldInitializer{
		listeners: newListeners(bus),
		em:        em,
		player:    player,
		startMap:  startMap,
		generator: generator,
		log:       log,
	}
	p.listen(event.WorldEnter, p.onWorldEnter)
	return p
}

// onWorldEnter is ignored while a player is alive.
func (p *WorldInitializer) onWorldEnter(event.Event) error {
	if id := p.em.Player(); id != 0 && p.em.Alive(id) {
		return nil
	}
	id, err := p.em.NewFromBlueprint(p.player)
	if err != nil {
		return fmt.Errorf("world enter: %w", err)
	}
	p.em.SetPlayer(id)
	p.log.Info("player created", zap.Uint64("entity", uint64(id)), zap.String("blueprint", p.player))
	p.bus.Throw(event.MapChange, event.ChangeMap{Entity: id, Map: p.startMap, Generator: p.generator})
	return nil
}
