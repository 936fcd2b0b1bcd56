package app

// Key identifies a physical key by its host key code, e.g. "KeyW" or
// "ArrowUp". The engine treats codes as opaque strings; the host event
// layer defines the vocabulary.
type Key string

// MouseButton identifies a mouse button.
type MouseButton int

// Mouse buttons.
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// ButtonState is the pressed/released state of a key or button.
type ButtonState int

// Button states. The zero value is released, which is what queries for
// never-seen keys report.
const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

// Input tracks keyboard, mouse button, and cursor state from host events.
// It is a plain state mirror: the host calls the Handle methods from its
// event loop, the game reads the Is queries during update. Single-
// threaded like the rest of the frame loop, so no locking.
type Input struct {
	keys         map[Key]ButtonState
	mouseButtons map[MouseButton]ButtonState
	mouseX       float64
	mouseY       float64
}

// NewInput creates an empty input tracker; every key and button starts
// released.
func NewInput() *Input {
	return &Input{
		keys:         make(map[Key]ButtonState),
		mouseButtons: make(map[MouseButton]ButtonState),
	}
}

// HandleKey records a key press or release event.
func (in *Input) HandleKey(code Key, pressed bool) {
	if pressed {
		in.keys[code] = ButtonPressed
	} else {
		in.keys[code] = ButtonReleased
	}
}

// HandleMouseButton records a mouse button press or release event.
func (in *Input) HandleMouseButton(b MouseButton, pressed bool) {
	if pressed {
		in.mouseButtons[b] = ButtonPressed
	} else {
		in.mouseButtons[b] = ButtonReleased
	}
}

// HandleMouseMove records the cursor position in surface pixels.
func (in *Input) HandleMouseMove(x, y float64) {
	in.mouseX = x
	in.mouseY = y
}

// IsKeyDown reports whether the key is currently pressed. Keys never seen
// in an event read as released.
func (in *Input) IsKeyDown(code Key) bool {
	return in.keys[code] == ButtonPressed
}

// IsKeyUp reports whether the key is currently released.
func (in *Input) IsKeyUp(code Key) bool {
	return !in.IsKeyDown(code)
}

// IsMouseButtonDown reports whether the button is currently pressed.
func (in *Input) IsMouseButtonDown(b MouseButton) bool {
	return in.mouseButtons[b] == ButtonPressed
}

// IsMouseButtonUp reports whether the button is currently released.
func (in *Input) IsMouseButtonUp(b MouseButton) bool {
	return !in.IsMouseButtonDown(b)
}

// MousePosition returns the last reported cursor position.
func (in *Input) MousePosition() (x, y float64) {
	return in.mouseX, in.mouseY
}
