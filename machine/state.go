package machine

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// ProcessorState is the packed structure an embedder installs before
// Run and retrieves after it: CPU registers/flags plus the handful of
// Machine fields that make sense to snapshot alongside them
// (spec.md §6). The layout is stable across releases; add fields only
// at the end and bump stateVersion (spec.md §9).
type ProcessorState struct {
	BC, DE, HL, AF             uint16
	AltBC, AltDE, AltHL, AltAF uint16
	PC, SP, IR, WZ             uint16
	IX, IY                     uint16

	IFF1, IFF2 bool
	IntMode    int
	IRegPKind  IRegPKind

	TicksSinceInt     int
	FetchesToStop     int
	IntSuppressed     bool
	IntAfterEIAllowed bool
	BorderColor       uint8
	TraceEnabled      bool
}

// InstallState pushes s into the Decoder's registers and this
// Machine's own snapshot-eligible fields. Decoder must already be
// set.
func (m *Machine) InstallState(s ProcessorState) {
	m.Decoder.SetBC(s.BC)
	m.Decoder.SetDE(s.DE)
	m.Decoder.SetHL(s.HL)
	m.Decoder.SetAF(s.AF)
	m.Decoder.SetAltBC(s.AltBC)
	m.Decoder.SetAltDE(s.AltDE)
	m.Decoder.SetAltHL(s.AltHL)
	m.Decoder.SetAltAF(s.AltAF)
	m.Decoder.SetPC(s.PC)
	m.Decoder.SetSP(s.SP)
	m.Decoder.SetIR(s.IR)
	m.Decoder.SetWZ(s.WZ)
	m.Decoder.SetIX(s.IX)
	m.Decoder.SetIY(s.IY)
	m.Decoder.SetIFF1(s.IFF1)
	m.Decoder.SetIFF2(s.IFF2)
	m.Decoder.SetIntMode(s.IntMode)
	m.Decoder.SetIRegPKind(s.IRegPKind)

	m.ticksSinceInt = s.TicksSinceInt
	m.FetchesToStop = s.FetchesToStop
	m.IntSuppressed = s.IntSuppressed
	m.IntAfterEIAllowed = s.IntAfterEIAllowed
	m.BorderColor = s.BorderColor
	m.TraceEnabled = s.TraceEnabled
}

// RetrieveState reads the Decoder's registers and this Machine's
// snapshot-eligible fields back into a ProcessorState.
func (m *Machine) RetrieveState() ProcessorState {
	return ProcessorState{
		BC:    m.Decoder.BC(),
		DE:    m.Decoder.DE(),
		HL:    m.Decoder.HL(),
		AF:    m.Decoder.AF(),
		AltBC: m.Decoder.AltBC(),
		AltDE: m.Decoder.AltDE(),
		AltHL: m.Decoder.AltHL(),
		AltAF: m.Decoder.AltAF(),
		PC:    m.Decoder.PC(),
		SP:    m.Decoder.SP(),
		IR:    m.Decoder.IR(),
		WZ:    m.Decoder.WZ(),
		IX:    m.Decoder.IX(),
		IY:    m.Decoder.IY(),

		IFF1:      m.Decoder.IFF1(),
		IFF2:      m.Decoder.IFF2(),
		IntMode:   m.Decoder.IntMode(),
		IRegPKind: m.Decoder.IRegPKind(),

		TicksSinceInt:     m.ticksSinceInt,
		FetchesToStop:     m.FetchesToStop,
		IntSuppressed:     m.IntSuppressed,
		IntAfterEIAllowed: m.IntAfterEIAllowed,
		BorderColor:       m.BorderColor,
		TraceEnabled:      m.TraceEnabled,
	}
}

// Save-state wire format constants, grounded on the teacher's
// Emulator.Serialize (emulator.go): a fixed magic/version header
// followed by a CRC32 of the payload.
const (
	stateMagic      = "ZXULAState01"
	stateVersion    = 1
	stateHeaderSize = 12 + 2 + 4 // magic + version + payload CRC

	// statePayloadSize: 14 uint16 registers (BC, DE, HL, AF, AltBC,
	// AltDE, AltHL, AltAF, PC, SP, IR, WZ, IX, IY), 4 single-byte
	// fields (IFF1, IFF2, IntMode, IRegPKind), one uint64
	// (TicksSinceInt), and 5 more single-byte fields (FetchesToStop,
	// IntSuppressed, IntAfterEIAllowed, BorderColor, TraceEnabled).
	statePayloadSize = 14*2 + 4 + 8 + 5
)

// SerializeSize returns the number of bytes SerializeState produces.
func SerializeSize() int { return stateHeaderSize + statePayloadSize }

// SerializeState packs s into a byte-exact snapshot, headered with a
// magic value and a CRC32 over the payload (spec.md §9).
func SerializeState(s ProcessorState) []byte {
	data := make([]byte, SerializeSize())
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)

	p := data[stateHeaderSize:]
	off := 0
	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(p[off:], v)
		off += 2
	}
	putBool := func(v bool) {
		if v {
			p[off] = 1
		} else {
			p[off] = 0
		}
		off++
	}

	putU16(s.BC)
	putU16(s.DE)
	putU16(s.HL)
	putU16(s.AF)
	putU16(s.AltBC)
	putU16(s.AltDE)
	putU16(s.AltHL)
	putU16(s.AltAF)
	putU16(s.PC)
	putU16(s.SP)
	putU16(s.IR)
	putU16(s.WZ)
	putU16(s.IX)
	putU16(s.IY)

	putBool(s.IFF1)
	putBool(s.IFF2)
	p[off] = uint8(s.IntMode)
	off++
	p[off] = uint8(s.IRegPKind)
	off++

	binary.LittleEndian.PutUint64(p[off:], uint64(s.TicksSinceInt))
	off += 8
	p[off] = uint8(s.FetchesToStop)
	off++
	putBool(s.IntSuppressed)
	putBool(s.IntAfterEIAllowed)
	p[off] = s.BorderColor
	off++
	putBool(s.TraceEnabled)

	crc := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[14:18], crc)
	return data
}

// DeserializeState validates and unpacks a snapshot produced by
// SerializeState.
func DeserializeState(data []byte) (ProcessorState, error) {
	var s ProcessorState
	if err := VerifyStateData(data); err != nil {
		return s, err
	}

	p := data[stateHeaderSize:]
	off := 0
	getU16 := func() uint16 {
		v := binary.LittleEndian.Uint16(p[off:])
		off += 2
		return v
	}
	getBool := func() bool {
		v := p[off] != 0
		off++
		return v
	}

	s.BC = getU16()
	s.DE = getU16()
	s.HL = getU16()
	s.AF = getU16()
	s.AltBC = getU16()
	s.AltDE = getU16()
	s.AltHL = getU16()
	s.AltAF = getU16()
	s.PC = getU16()
	s.SP = getU16()
	s.IR = getU16()
	s.WZ = getU16()
	s.IX = getU16()
	s.IY = getU16()

	s.IFF1 = getBool()
	s.IFF2 = getBool()
	s.IntMode = int(p[off])
	off++
	s.IRegPKind = IRegPKind(p[off])
	off++

	s.TicksSinceInt = int(binary.LittleEndian.Uint64(p[off:]))
	off += 8
	s.FetchesToStop = int(p[off])
	off++
	s.IntSuppressed = getBool()
	s.IntAfterEIAllowed = getBool()
	s.BorderColor = p[off]
	off++
	s.TraceEnabled = getBool()

	return s, nil
}

// VerifyStateData checks a snapshot's length, magic, version and CRC
// without unpacking it.
func VerifyStateData(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("machine: save state too short")
	}
	if string(data[0:12]) != stateMagic {
		return errors.New("machine: invalid save state magic")
	}
	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("machine: unsupported save state version")
	}
	expected := binary.LittleEndian.Uint32(data[14:18])
	actual := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expected != actual {
		return errors.New("machine: save state data is corrupted")
	}
	return nil
}
