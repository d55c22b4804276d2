package appstate

import (
	"unicode"

	"golang.org/x/mobile/event/key"
)

// KeyShortcut describes a keyboard combination that triggers an action.
// Printable keys are matched by Rune, everything else by Code.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// Action names bound to keys.
const (
	actionToggleMask = "mask"
	actionBrushDown  = "brush-"
	actionBrushUp    = "brush+"
	actionUndo       = "undo"
	actionRedo       = "redo"
	actionClear      = "clear"
	actionExport     = "export"
	actionCopy       = "copy"
	actionQuit       = "quit"
)

var defaultBindings = []struct {
	action string
	keys   shortcutList
}{
	{actionToggleMask, shortcutList{{Rune: 'm'}}},
	{actionBrushDown, shortcutList{{Rune: '['}}},
	{actionBrushUp, shortcutList{{Rune: ']'}}},
	{actionUndo, shortcutList{{Rune: 'z', Modifiers: key.ModControl}}},
	{actionRedo, shortcutList{
		{Rune: 'y', Modifiers: key.ModControl},
		{Rune: 'z', Modifiers: key.ModControl | key.ModShift},
	}},
	{actionClear, shortcutList{{Code: key.CodeDeleteBackspace, Modifiers: key.ModControl}}},
	{actionExport, shortcutList{{Rune: 's', Modifiers: key.ModControl}}},
	{actionCopy, shortcutList{{Rune: 'c', Modifiers: key.ModControl}}},
	{actionQuit, shortcutList{{Rune: 'q'}, {Code: key.CodeEscape}}},
}

// keymap maps shortcuts to action names.
type keymap map[KeyShortcut]string

func newKeymap() keymap {
	km := keymap{}
	for _, b := range defaultBindings {
		km.bind(b.action, b.keys)
	}
	return km
}

func (km keymap) bind(action string, keys KeyboardShortcuts) {
	for _, sc := range keys.KeyboardShortcuts() {
		km[sc] = action
	}
}

// lookup returns the action for a key press.
func (km keymap) lookup(e key.Event) (string, bool) {
	if e.Direction != key.DirPress {
		return "", false
	}
	action, ok := km[shortcutOf(e)]
	return action, ok
}

// shortcutOf normalises a key event. Editing keys match by code. Letters
// are folded to lower case so that Shift only counts as a modifier, and
// the control characters some drivers report alongside Ctrl map back to
// their letter.
func shortcutOf(e key.Event) KeyShortcut {
	mods := e.Modifiers & (key.ModControl | key.ModShift | key.ModAlt | key.ModMeta)
	switch e.Code {
	case key.CodeDeleteBackspace, key.CodeDeleteForward, key.CodeEscape, key.CodeReturnEnter, key.CodeTab:
		return KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	r := e.Rune
	if r >= 1 && r <= 26 && mods&key.ModControl != 0 {
		r = 'a' + r - 1
	}
	if r <= ' ' || r == 0x7f {
		return KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	if !unicode.IsLetter(r) {
		mods &^= key.ModShift
	}
	return KeyShortcut{Rune: unicode.ToLower(r), Modifiers: mods}
}
