package machine

import (
	"fmt"
	"io"
)

// EventMask is the set of reasons Run can return (spec.md §3, §4.5).
type EventMask uint8

const (
	EventEndOfFrame EventMask = 1 << iota
	EventTicksLimitHit
	EventFetchesLimitHit
	EventBreakpointHit
	EventMachineStopped
	EventCustomEvent
)

// Machine ties together the memory image, contention model, beam
// renderer, port-write journal and address marks into the tick-driven
// ULA/CPU coupling described in spec.md. It supplies the Environment
// a Decoder drives, and exposes the inspection surface an embedder
// uses between Run calls (spec.md §5, §6).
type Machine struct {
	model  Model
	timing FrameTiming

	Image   *Image
	Beam    *Beam
	Journal *Journal
	Marks   *Marks
	Decoder Decoder
	Host    Host

	ticksSinceInt int
	events        EventMask
	lastAddrBus   uint16

	BorderColor uint8

	FetchesToStop     int
	TicksToStop       int
	IntSuppressed     bool
	IntAfterEIAllowed bool

	TraceEnabled bool
	TraceSink    io.Writer
}

// NewMachine creates a Machine for the given model with a fresh
// memory image, an empty beam renderer, a capacity-bounded journal, a
// clear marks table, and the default keyboard as its Host. Decoder
// must be assigned by the caller before Run is invoked, per spec.md
// §1: the instruction decoder is an external collaborator.
func NewMachine(model Model) *Machine {
	timing := TimingFor(model)
	kbd := NewKeyboard()
	return &Machine{
		model:   model,
		timing:  timing,
		Image:   NewImage(model),
		Beam:    NewBeam(timing),
		Journal: NewJournal(timing.TicksPerFrame),
		Marks:   &Marks{},
		Host:    kbd,
	}
}

// Model returns the hardware model this Machine emulates.
func (m *Machine) Model() Model { return m.model }

// Timing returns the frame geometry driving this Machine.
func (m *Machine) Timing() FrameTiming { return m.timing }

// Reset randomizes memory, restores default paging, and clears the
// events, journal and border colour the way a real power-on cycle
// would. Address marks persist across a reset (spec.md §3).
func (m *Machine) Reset() {
	m.Image.Reset()
	m.ticksSinceInt = 0
	m.events = 0
	m.BorderColor = 0
	m.Journal.Clear()
	m.Beam = NewBeam(m.timing)
}

// Ticks returns the number of T-states elapsed since the last
// interrupt (spec.md §6: get_ticks).
func (m *Machine) Ticks() int { return m.ticksSinceInt }

// Events returns the event mask latched by the most recent Run call.
func (m *Machine) Events() EventMask { return m.events }

// Stop requests termination after the current instruction completes
// (spec.md §5).
func (m *Machine) Stop() { m.events |= EventMachineStopped }

// ReadByte reads a byte through the paging model, for use by a
// disassembler or other read-only inspection tool (spec.md §6).
func (m *Machine) ReadByte(addr uint16) uint8 { return m.Image.Read(addr) }

// IsBreakpointAddr reports whether addr carries the breakpoint mark.
func (m *Machine) IsBreakpointAddr(addr uint16) bool {
	return m.Marks.IsMarked(addr, MarkBreakpoint)
}

// GetScreenChunks returns the current chunk buffer
// (spec.md §6: get_screen_chunks).
func (m *Machine) GetScreenChunks() [][]uint32 { return m.Beam.Chunks() }

// GetFramePixels expands the current chunk buffer into one 32-bit RGB
// word per pixel (spec.md §6: get_frame_pixels).
func (m *Machine) GetFramePixels(buf []uint32) {
	m.Beam.RenderToTick(m.Image, m.BorderColor, m.ticksSinceInt)
	m.Beam.FramePixels(buf)
}

// GetPortWrites and GetNumPortWrites expose the current frame's
// journal (spec.md §6).
func (m *Machine) GetPortWrites() []PortWrite { return m.Journal.Entries() }
func (m *Machine) GetNumPortWrites() int      { return m.Journal.Count() }

// tick advances the frame clock by n T-states, driving the ticks-to-
// stop deadline one tick at a time (spec.md §4.5, §5).
func (m *Machine) tick(n int) {
	for i := 0; i < n; i++ {
		m.ticksSinceInt++
		if m.TicksToStop != 0 {
			m.TicksToStop--
			if m.TicksToStop == 0 {
				m.events |= EventTicksLimitHit
			}
		}
	}
}

// startNewFrame folds any tick overrun into the next frame, resets
// the beam and journal, and lets the beam's own frame counter drive
// the flash toggle (spec.md §4.5).
func (m *Machine) startNewFrame() {
	m.ticksSinceInt %= m.timing.TicksPerFrame
	m.Beam.StartFrame()
	m.Journal.Clear()
}

// Run executes instructions until one of the documented events
// occurs, or the frame completes (spec.md §4.5). Decoder must be set.
func (m *Machine) Run() EventMask {
	if m.ticksSinceInt >= m.timing.TicksPerFrame {
		m.startNewFrame()
	}

	m.events = 0
	for m.events == 0 && m.ticksSinceInt < m.timing.TicksPerFrame {
		if !m.IntSuppressed && m.ticksSinceInt-1 < m.timing.TicksPerActiveInt {
			m.Decoder.HandleActiveInt()
		}

		if m.TraceEnabled && m.TraceSink != nil {
			m.writeTraceLine()
			m.Marks.Mark(m.Decoder.PC(), MarkVisitedInstruction)
		}

		m.Decoder.Step()
	}

	if m.ticksSinceInt >= m.timing.TicksPerFrame {
		m.events |= EventEndOfFrame
	}
	return m.events
}

// writeTraceLine appends one line of register state to TraceSink,
// ahead of executing the instruction at the decoder's current PC.
// Redesigned per spec.md §9 from the original's process-global trace
// file into a per-machine sink the host controls.
func (m *Machine) writeTraceLine() {
	fmt.Fprintf(m.TraceSink,
		"%04X: AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X SP=%04X tick=%d\n",
		m.Decoder.PC(), m.Decoder.AF(), m.Decoder.BC(), m.Decoder.DE(),
		m.Decoder.HL(), m.Decoder.IX(), m.Decoder.IY(), m.Decoder.SP(),
		m.ticksSinceInt)
}
