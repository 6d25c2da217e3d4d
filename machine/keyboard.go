package machine

// Host is the set of downward callbacks a Machine invokes to reach
// its embedder (spec.md §6). Overriding Host lets a host redefine
// keyboard sampling, tape-in sampling on the EAR bit, or port
// side-effects entirely. NewMachine installs a Keyboard as the Host;
// with Host set to nil, every port read returns 0xBF.
type Host interface {
	// OnInput answers a port read. ok=false signals the host refused
	// to produce a value, which stops the machine (spec.md §7).
	OnInput(addr uint16) (value uint8, ok bool)
	OnOutput(addr uint16, value uint8)
}

// Keyboard is the ULA's keyboard matrix: eight half-rows of five keys
// each, addressed by the high byte of the port address during a
// port-0xFE-style read. A key bit is 1 when released, 0 when pressed
// (spec.md §6).
type Keyboard struct {
	rows [8]uint8
}

// NewKeyboard creates a keyboard with every key released.
func NewKeyboard() *Keyboard {
	k := &Keyboard{}
	k.Reset()
	return k
}

// Reset releases every key.
func (k *Keyboard) Reset() {
	for i := range k.rows {
		k.rows[i] = 0xFF
	}
}

// SetRow overwrites half-row n (0-7) with the given bitmask.
func (k *Keyboard) SetRow(n int, value uint8) {
	k.rows[n] = value
}

// Row returns the current bitmask for half-row n (0-7).
func (k *Keyboard) Row(n int) uint8 {
	return k.rows[n]
}

// OnInput implements the default keyboard-read behaviour of port
// 0xFE: for every high-address bit that is zero, AND in that
// half-row's byte. The result's default top bits are 0xBF (bit 6 is
// the EAR line, always high with no tape connected) (spec.md §6).
func (k *Keyboard) OnInput(addr uint16) (uint8, bool) {
	result := uint8(0xBF)
	if addr&1 != 0 {
		return result, true
	}
	for bit := 0; bit < 8; bit++ {
		if addr&(1<<(8+bit)) == 0 {
			result &= k.rows[bit]
		}
	}
	return result, true
}

// OnOutput is a no-op: the keyboard has no side effect on port
// writes.
func (k *Keyboard) OnOutput(addr uint16, value uint8) {}

var _ Host = (*Keyboard)(nil)
