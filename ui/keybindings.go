package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// KeyAction represents an action that can be triggered by keybindings
type KeyAction struct {
	name        string
	description string
	handler     func()
}

// binding remembers how an action was registered, for the help view
type binding struct {
	action KeyAction
	keys   []string
}

// KeyBindingManager manages all keybindings and dispatches events
type KeyBindingManager struct {
	bindings  map[tcell.Key]KeyAction // special key -> action mapping
	runeMap   map[rune]KeyAction      // rune -> action mapping
	sequences map[string]KeyAction    // two-rune sequences like "gg"
	pending   string                  // pending first rune of a sequence
	order     []binding
}

// NewKeyBindingManager creates a new key binding manager
func NewKeyBindingManager() *KeyBindingManager {
	return &KeyBindingManager{
		bindings:  make(map[tcell.Key]KeyAction),
		runeMap:   make(map[rune]KeyAction),
		sequences: make(map[string]KeyAction),
	}
}

// RegisterKeyBinding registers a single key binding
func (km *KeyBindingManager) RegisterKeyBinding(action KeyAction, keys []tcell.Key, runes []rune) {
	var names []string
	for _, key := range keys {
		km.bindings[key] = action
		names = append(names, keyName(key))
	}
	for _, r := range runes {
		km.runeMap[r] = action
		names = append(names, runeName(r))
	}
	km.order = append(km.order, binding{action: action, keys: names})
}

// RegisterSequence binds a two-rune sequence such as "gg". The first rune
// becomes a prefix and is no longer dispatched on its own.
func (km *KeyBindingManager) RegisterSequence(action KeyAction, seq string) {
	if len([]rune(seq)) != 2 {
		panic(fmt.Sprintf("key sequence %q must be two runes", seq))
	}
	km.sequences[seq] = action
	km.order = append(km.order, binding{action: action, keys: []string{seq}})
}

func (km *KeyBindingManager) isPrefix(r rune) bool {
	for seq := range km.sequences {
		if []rune(seq)[0] == r {
			return true
		}
	}
	return false
}

// HandleKey handles a keyboard event and returns true if it was consumed
func (km *KeyBindingManager) HandleKey(event *tcell.EventKey) bool {
	// Check for special keys first
	if event.Key() != tcell.KeyRune {
		km.pending = "" // reset pending sequence on non-rune key
		if action, ok := km.bindings[event.Key()]; ok {
			action.handler()
			return true
		}
		return false
	}

	r := event.Rune()

	if km.pending != "" {
		seq := km.pending + string(r)
		km.pending = ""
		if action, ok := km.sequences[seq]; ok {
			action.handler()
			return true
		}
		// Not a complete sequence, try current rune as standalone
		if action, ok := km.runeMap[r]; ok {
			action.handler()
			return true
		}
		return false
	}

	if km.isPrefix(r) {
		km.pending = string(r)
		return true
	}

	// Single character binding
	if action, ok := km.runeMap[r]; ok {
		action.handler()
		return true
	}
	return false
}

// ResetPending resets the pending key sequence
func (km *KeyBindingManager) ResetPending() {
	km.pending = ""
}

// Describe lists every described binding in registration order, one
// "[white]keys[-]  description" line each.
func (km *KeyBindingManager) Describe() []string {
	var lines []string
	for _, b := range km.order {
		if b.action.description == "" {
			continue
		}
		keys := strings.Join(b.keys, " / ")
		lines = append(lines, fmt.Sprintf("  [white]%-12s[-] %s", keys, b.action.description))
	}
	return lines
}

func keyName(key tcell.Key) string {
	switch key {
	case tcell.KeyLeft:
		return "←"
	case tcell.KeyRight:
		return "→"
	case tcell.KeyEscape:
		return "ESC"
	case tcell.KeyEnter:
		return "Enter"
	}
	if name, ok := tcell.KeyNames[key]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", key)
}

func runeName(r rune) string {
	if r == ' ' {
		return "Space"
	}
	return string(r)
}
