package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/engine"
	"github.com/nightcaste/nightcaste/internal/entity"
)

var styles = map[string]tcell.Style{
	"player":      tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	"stone_wall":  tcell.StyleDefault.Foreground(tcell.ColorGray),
	"stone_floor": tcell.StyleDefault.Foreground(tcell.ColorDarkGray),
	"grass":       tcell.StyleDefault.Foreground(tcell.ColorGreen),
	"water":       tcell.StyleDefault.Foreground(tcell.ColorBlue),
	"stairs":      tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	"shrine":      tcell.StyleDefault.Foreground(tcell.ColorPurple),
}

type terminal struct {
	screen tcell.Screen
}

func newTerminal() (*terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	return &terminal{screen: screen}, nil
}

func (t *terminal) Close() { t.screen.Fini() }

// Poll forwards key presses until the screen is finalized or the player
// quits. Keys are dropped while the engine is behind.
func (t *terminal) Poll(keys chan<- event.Key, quit chan<- struct{}) {
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				close(quit)
				return
			}
			k, ok := keyFor(ev.Key(), ev.Rune())
			if !ok {
				continue
			}
			select {
			case keys <- k:
			default:
			}
		}
	}
}

func keyFor(k tcell.Key, r rune) (event.Key, bool) {
	switch k {
	case tcell.KeyUp:
		return event.KeyUp, true
	case tcell.KeyDown:
		return event.KeyDown, true
	case tcell.KeyLeft:
		return event.KeyLeft, true
	case tcell.KeyRight:
		return event.KeyRight, true
	case tcell.KeyEnter:
		return event.KeyUse, true
	case tcell.KeyRune:
		switch r {
		case 'k':
			return event.KeyUp, true
		case 'j':
			return event.KeyDown, true
		case 'h':
			return event.KeyLeft, true
		case 'l':
			return event.KeyRight, true
		case 'e', ' ':
			return event.KeyUse, true
		case 'p':
			return event.KeyPause, true
		}
	}
	return "", false
}

// Draw renders the current map centred on the player and a status line.
func (t *terminal) Draw(eng *engine.Engine) {
	t.screen.Clear()
	w, h := t.screen.Size()
	em := eng.Entities()

	m, ok := entity.Lookup[component.Map](em, em.CurrentMap())
	if ok && m.Tiles != nil {
		cx, cy := m.Entry.X, m.Entry.Y
		if p, ok := entity.Lookup[component.Position](em, em.Player()); ok {
			cx, cy = p.X, p.Y
		}
		ox, oy := cx-w/2, cy-(h-1)/2
		for sy := 0; sy < h-1; sy++ {
			for sx := 0; sx < w; sx++ {
				ch, style, ok := glyph(em, m.Tiles.At(ox+sx, oy+sy))
				if ok {
					t.screen.SetContent(sx, sy, ch, nil, style)
				}
			}
		}
	}

	status := fmt.Sprintf(" %s  round %d  %s", eng.Clock().Now(), eng.State().Round, eng.State().Status)
	if ok {
		status = fmt.Sprintf(" %s (%d) |%s", m.Name, m.Level, status)
	}
	for i, r := range []rune(status) {
		if i >= w {
			break
		}
		t.screen.SetContent(i, h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	t.screen.Show()
}

// glyph picks the renderable with the highest z-index in a cell.
func glyph(em *entity.Manager, ids []ecs.EntityID) (rune, tcell.Style, bool) {
	var top *component.Renderable
	for _, id := range ids {
		r, ok := entity.Lookup[component.Renderable](em, id)
		if !ok || r.Character == "" {
			continue
		}
		if top == nil || r.ZIndex > top.ZIndex {
			top = r
		}
	}
	if top == nil {
		return 0, tcell.StyleDefault, false
	}
	style, ok := styles[top.Name]
	if !ok {
		style = tcell.StyleDefault
	}
	return []rune(top.Character)[0], style, true
}
