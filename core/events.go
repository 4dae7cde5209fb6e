package core

// EventHandler is the contract between the host event loop and the
// application. The host calls Init once, then Frame once per displayed
// frame. Resize and the input callbacks are delivered synchronously between
// frames on the same goroutine.
//
// Errors returned from Init, Frame or Resize are fatal to the host loop.
type EventHandler interface {
	Init() error
	Frame() error
	Resize(width, height int) error

	MouseMotion(x, y float32)
	MouseWheel(dx, dy float32)
	MouseButtonDown(button MouseButton, x, y float32)
	MouseButtonUp(button MouseButton, x, y float32)
	KeyDown(key Key, mods KeyMods, repeat bool)
	KeyUp(key Key, mods KeyMods)
	Char(r rune, mods KeyMods, repeat bool)
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseUnknown
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	}
	return "unknown"
}

// KeyMods is a bit set of held modifier keys.
type KeyMods uint8

const (
	ModShift KeyMods = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m KeyMods) Has(mod KeyMods) bool { return m&mod != 0 }

// Key identifies a physical key. Values match the GLFW key codes so the
// platform layer can convert without a lookup table.
type Key int

const (
	KeyUnknown      Key = -1
	KeySpace        Key = 32
	KeyApostrophe   Key = 39
	KeyComma        Key = 44
	KeyMinus        Key = 45
	KeyPeriod       Key = 46
	KeySlash        Key = 47
	Key0            Key = 48
	Key1            Key = 49
	Key2            Key = 50
	Key3            Key = 51
	Key4            Key = 52
	Key5            Key = 53
	Key6            Key = 54
	Key7            Key = 55
	Key8            Key = 56
	Key9            Key = 57
	KeySemicolon    Key = 59
	KeyEqual        Key = 61
	KeyA            Key = 65
	KeyC            Key = 67
	KeyQ            Key = 81
	KeyV            Key = 86
	KeyX            Key = 88
	KeyZ            Key = 90
	KeyEscape       Key = 256
	KeyEnter        Key = 257
	KeyTab          Key = 258
	KeyBackspace    Key = 259
	KeyInsert       Key = 260
	KeyDelete       Key = 261
	KeyRight        Key = 262
	KeyLeft         Key = 263
	KeyDown         Key = 264
	KeyUp           Key = 265
	KeyPageUp       Key = 266
	KeyPageDown     Key = 267
	KeyHome         Key = 268
	KeyEnd          Key = 269
	KeyF1           Key = 290
	KeyLeftShift    Key = 340
	KeyLeftControl  Key = 341
	KeyLeftAlt      Key = 342
	KeyLeftSuper    Key = 343
	KeyRightShift   Key = 344
	KeyRightControl Key = 345
	KeyRightAlt     Key = 346
	KeyRightSuper   Key = 347
)
