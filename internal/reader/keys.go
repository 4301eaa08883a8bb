package reader

// Key is a keyboard command understood by the reader.
type Key int

// Bound keys.
const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	default:
		return "none"
	}
}

// ParseKey decodes an ANSI arrow-key escape sequence (ESC [ C / ESC [ D).
// Anything else maps to KeyNone.
func ParseKey(seq []byte) Key {
	if len(seq) != 3 || seq[0] != 0x1b || (seq[1] != '[' && seq[1] != 'O') {
		return KeyNone
	}
	switch seq[2] {
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	default:
		return KeyNone
	}
}
