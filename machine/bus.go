package machine

// IRegPKind identifies which register pair (HL, IX or IY) currently
// supplies displacement-indexed addressing inside the decoder
// (spec.md §6).
type IRegPKind int

const (
	IRegHL IRegPKind = iota
	IRegIX
	IRegIY
)

// Decoder is the interface a pluggable Z80 instruction decoder/executor
// must satisfy to drive a Machine. It is treated as an external
// collaborator (spec.md §1): this package never dispatches an opcode
// itself, it only supplies the Environment the decoder calls back into
// for every fetch/read/write/port/exec cycle, and reads/writes the
// register file the decoder owns (spec.md §6).
type Decoder interface {
	// Step executes one instruction, driving Environment callbacks for
	// every machine cycle it performs.
	Step()
	// HandleActiveInt asks the decoder to accept a pending interrupt
	// if IFF1 permits it, and reports whether it did.
	HandleActiveInt() bool

	PC() uint16
	SetPC(pc uint16)

	AF() uint16
	SetAF(v uint16)
	BC() uint16
	SetBC(v uint16)
	DE() uint16
	SetDE(v uint16)
	HL() uint16
	SetHL(v uint16)
	AltAF() uint16
	SetAltAF(v uint16)
	AltBC() uint16
	SetAltBC(v uint16)
	AltDE() uint16
	SetAltDE(v uint16)
	AltHL() uint16
	SetAltHL(v uint16)
	IX() uint16
	SetIX(v uint16)
	IY() uint16
	SetIY(v uint16)
	SP() uint16
	SetSP(v uint16)
	WZ() uint16
	SetWZ(v uint16)
	IR() uint16
	SetIR(v uint16)

	IFF1() bool
	SetIFF1(v bool)
	IFF2() bool
	SetIFF2(v bool)
	IntMode() int
	SetIntMode(v int)
	IRegPKind() IRegPKind
	SetIRegPKind(v IRegPKind)

	// IsIntDisabled reports whether the decoder is currently
	// suppressing interrupt sampling (the one-instruction EI delay).
	IsIntDisabled() bool
	// DisableIntOnEI is the decoder's raw "start suppressing
	// interrupts for one instruction" operation, invoked by
	// Machine.DisableIntOnEI after the RZX-compatibility check.
	DisableIntOnEI()
}

// Environment is the set of callbacks a Decoder invokes on the
// Machine driving it (spec.md §4.4, §6). *Machine implements this.
type Environment interface {
	OnFetchCycle() uint8
	OnM1FetchCycle() uint8
	OnReadCycle(addr uint16) uint8
	OnWriteCycle(addr uint16, val uint8)
	OnInputCycle(addr uint16) uint8
	OnOutputCycle(addr uint16, val uint8)
	OnSetAddrBus(addr uint16)
	On3tExecCycle()
	On4tExecCycle()
	On5tExecCycle()
	OnSetPC(pc uint16)
	DisableIntOnEI()
}

var _ Environment = (*Machine)(nil)

// OnFetchCycle applies memory contention for the decoder's current PC
// and performs a 4-tick opcode-byte fetch (spec.md §4.4).
func (m *Machine) OnFetchCycle() uint8 {
	pc := m.Decoder.PC()
	m.contendMemory(pc)
	m.tick(4)
	return m.Image.Read(pc)
}

// OnM1FetchCycle is the same as OnFetchCycle but also counts down the
// M1-fetch stopping budget.
func (m *Machine) OnM1FetchCycle() uint8 {
	pc := m.Decoder.PC()
	m.contendMemory(pc)
	m.tick(4)
	if m.FetchesToStop != 0 {
		m.FetchesToStop--
		if m.FetchesToStop == 0 {
			m.events |= EventFetchesLimitHit
		}
	}
	return m.Image.Read(pc)
}

// OnReadCycle applies memory contention for addr and performs a
// 3-tick memory read.
func (m *Machine) OnReadCycle(addr uint16) uint8 {
	m.contendMemory(addr)
	m.tick(3)
	return m.Image.Read(addr)
}

// OnWriteCycle advances the beam renderer to the tick immediately
// after this one — so a screen-memory write never retroactively
// changes a pixel the beam has already painted — then applies memory
// contention and performs a 3-tick memory write (spec.md §4.4, §9).
func (m *Machine) OnWriteCycle(addr uint16, val uint8) {
	m.Beam.RenderToTick(m.Image, m.BorderColor, m.ticksSinceInt+1)
	m.contendMemory(addr)
	m.tick(3)
	m.Image.Write(addr, val)
}

// OnInputCycle applies port contention and asks the Host for the
// port's value. A Host that refuses to answer stops the machine and
// yields the documented default (spec.md §6, §7).
func (m *Machine) OnInputCycle(addr uint16) uint8 {
	m.contendPort(addr)
	if m.Host == nil {
		return 0xBF
	}
	v, ok := m.Host.OnInput(addr)
	if !ok {
		m.events |= EventMachineStopped
		return 0xBF
	}
	return v
}

// OnOutputCycle notifies the Host, applies the ULA's own reactions to
// well-known ports (border colour on 0xFE, 128K memory paging on
// 0x7FFD), journals the write, then applies port contention
// (spec.md §4.4).
func (m *Machine) OnOutputCycle(addr uint16, val uint8) {
	if m.Host != nil {
		m.Host.OnOutput(addr, val)
	}

	if addr&0xFF == 0xFE {
		m.Beam.RenderToTick(m.Image, m.BorderColor, m.ticksSinceInt+1)
		m.BorderColor = val & 0x07
	}

	if m.model == Model128K && addr&0x8002 == 0 && !m.Image.PagingLocked() {
		m.Image.SetRAMPage(int(val & 7))
		m.Image.SetROMPage(int((val >> 4) & 1))
		m.Image.SetShadowScreen(val&8 != 0)
		if val&0x20 != 0 {
			m.Image.LockPaging()
		}
	}

	m.Journal.Record(addr, val, m.ticksSinceInt)
	m.contendPort(addr)
}

// OnSetAddrBus latches the address the decoder last drove onto the
// address bus, consulted by the On_Nt_exec_cycle family.
func (m *Machine) OnSetAddrBus(addr uint16) {
	m.lastAddrBus = addr
}

// On3tExecCycle, On4tExecCycle and On5tExecCycle apply N repetitions
// of (contend for the last address-bus value; tick 1), for
// instructions with extra internal execution cycles (spec.md §4.2).
func (m *Machine) On3tExecCycle() { m.execTicks(3) }
func (m *Machine) On4tExecCycle() { m.execTicks(4) }
func (m *Machine) On5tExecCycle() { m.execTicks(5) }

func (m *Machine) execTicks(n int) {
	for i := 0; i < n; i++ {
		m.contendMemory(m.lastAddrBus)
		m.tick(1)
	}
}

// OnSetPC is the entry point the decoder must call whenever it wants
// to change PC (jumps, calls, resets, host-directed sets): the
// breakpoint check has to happen here, at the boundary, rather than
// inside the decoder, since breakpoints are a Machine-owned concern
// (spec.md §4.4, §4.7).
func (m *Machine) OnSetPC(pc uint16) {
	if m.Marks.IsMarked(pc, MarkBreakpoint) {
		m.events |= EventBreakpointHit
	}
	m.Decoder.SetPC(pc)
}

// DisableIntOnEI forwards to the decoder's own EI-delay suppression
// unless IntAfterEIAllowed is set, in which case it is a no-op — this
// keeps SPIN-style RZX playback, which never wants the delay, working
// without the decoder needing to know about playback mode
// (spec.md §4.4).
func (m *Machine) DisableIntOnEI() {
	if m.IntAfterEIAllowed {
		return
	}
	m.Decoder.DisableIntOnEI()
}

// contendMemory applies the §4.2 ULA memory-contention delay for an
// access at addr, given the current absolute tick.
func (m *Machine) contendMemory(addr uint16) {
	if d := m.memoryDelay(addr); d > 0 {
		m.tick(d)
	}
}

// memoryDelay computes the §4.2 contention delay for a memory access
// at addr occurring at the current tick, without applying it.
func (m *Machine) memoryDelay(addr uint16) int {
	if addr < 0x4000 || addr >= 0x8000 {
		return 0
	}
	t := m.ticksSinceInt
	if t < m.timing.ContentionBase || t >= m.timing.ContentionBase+192*m.timing.TicksPerLine {
		return 0
	}
	u := (t - m.timing.ContentionBase) % m.timing.TicksPerLine
	if u >= 128 {
		return 0
	}
	k := u % 8
	if k == 7 {
		return 0
	}
	return 6 - k
}

// contendPort applies the §4.2 port-contention access pattern, which
// depends on the port's low address bit and whether it falls in the
// contended page window.
func (m *Machine) contendPort(addr uint16) {
	inPage := addr >= 0x4000 && addr < 0x8000
	even := addr&1 == 0

	switch {
	case !inPage && even:
		m.tick(1)
		m.contendMemory(addr)
		m.tick(3)
	case !inPage && !even:
		m.tick(4)
	case inPage && even:
		m.contendMemory(addr)
		m.tick(1)
		m.contendMemory(addr)
		m.tick(3)
	default: // inPage && odd
		for i := 0; i < 4; i++ {
			m.contendMemory(addr)
			m.tick(1)
		}
	}
}
