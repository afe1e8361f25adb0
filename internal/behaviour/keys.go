package behaviour

import "github.com/nightcaste/nightcaste/internal/core/event"

// KeyState holds the keys pressed since the last behaviour update.
type KeyState struct {
	pressed map[event.Key]bool
}

func NewKeyState() *KeyState {
	return &KeyState{pressed: make(map[event.Key]bool)}
}

func (k *KeyState) Press(key event.Key) { k.pressed[key] = true }

func (k *KeyState) Pressed(key event.Key) bool { return k.pressed[key] }

// Any reports whether any key is held.
func (k *KeyState) Any() bool { return len(k.pressed) > 0 }

func (k *KeyState) Clear() { clear(k.pressed) }
