package machine

// fakeDecoder is a minimal, deterministic stand-in for the pluggable
// Z80 decoder spec.md §1 places out of scope. It exercises the
// Environment callbacks a real decoder would drive: each Step call
// either runs the next entry of a scripted program or, once the
// program is exhausted, performs a single 4-tick fetch at PC and
// advances PC by one.
type fakeDecoder struct {
	env Environment

	pc                             uint16
	af, bc, de, hl                 uint16
	altAF, altBC, altDE, altHL     uint16
	ix, iy, sp, wz, ir             uint16
	iff1, iff2                     bool
	intMode                        int
	iregKind                       IRegPKind
	intDisabled                    bool
	activeIntAccepted              bool

	program []func(d *fakeDecoder)
	pos     int
}

func newFakeDecoder(env Environment) *fakeDecoder {
	return &fakeDecoder{env: env}
}

func (d *fakeDecoder) Step() {
	if d.pos < len(d.program) {
		step := d.program[d.pos]
		d.pos++
		step(d)
		return
	}
	d.env.OnFetchCycle()
	d.env.OnSetPC(d.pc + 1)
}

func (d *fakeDecoder) HandleActiveInt() bool {
	if d.iff1 && !d.intDisabled {
		d.activeIntAccepted = true
		return true
	}
	return false
}

func (d *fakeDecoder) PC() uint16      { return d.pc }
func (d *fakeDecoder) SetPC(pc uint16) { d.pc = pc }

func (d *fakeDecoder) AF() uint16       { return d.af }
func (d *fakeDecoder) SetAF(v uint16)   { d.af = v }
func (d *fakeDecoder) BC() uint16       { return d.bc }
func (d *fakeDecoder) SetBC(v uint16)   { d.bc = v }
func (d *fakeDecoder) DE() uint16       { return d.de }
func (d *fakeDecoder) SetDE(v uint16)   { d.de = v }
func (d *fakeDecoder) HL() uint16       { return d.hl }
func (d *fakeDecoder) SetHL(v uint16)   { d.hl = v }
func (d *fakeDecoder) AltAF() uint16     { return d.altAF }
func (d *fakeDecoder) SetAltAF(v uint16) { d.altAF = v }
func (d *fakeDecoder) AltBC() uint16     { return d.altBC }
func (d *fakeDecoder) SetAltBC(v uint16) { d.altBC = v }
func (d *fakeDecoder) AltDE() uint16     { return d.altDE }
func (d *fakeDecoder) SetAltDE(v uint16) { d.altDE = v }
func (d *fakeDecoder) AltHL() uint16     { return d.altHL }
func (d *fakeDecoder) SetAltHL(v uint16) { d.altHL = v }
func (d *fakeDecoder) IX() uint16       { return d.ix }
func (d *fakeDecoder) SetIX(v uint16)   { d.ix = v }
func (d *fakeDecoder) IY() uint16       { return d.iy }
func (d *fakeDecoder) SetIY(v uint16)   { d.iy = v }
func (d *fakeDecoder) SP() uint16       { return d.sp }
func (d *fakeDecoder) SetSP(v uint16)   { d.sp = v }
func (d *fakeDecoder) WZ() uint16       { return d.wz }
func (d *fakeDecoder) SetWZ(v uint16)   { d.wz = v }
func (d *fakeDecoder) IR() uint16       { return d.ir }
func (d *fakeDecoder) SetIR(v uint16)   { d.ir = v }

func (d *fakeDecoder) IFF1() bool           { return d.iff1 }
func (d *fakeDecoder) SetIFF1(v bool)       { d.iff1 = v }
func (d *fakeDecoder) IFF2() bool           { return d.iff2 }
func (d *fakeDecoder) SetIFF2(v bool)       { d.iff2 = v }
func (d *fakeDecoder) IntMode() int         { return d.intMode }
func (d *fakeDecoder) SetIntMode(v int)     { d.intMode = v }
func (d *fakeDecoder) IRegPKind() IRegPKind { return d.iregKind }
func (d *fakeDecoder) SetIRegPKind(v IRegPKind) { d.iregKind = v }

func (d *fakeDecoder) IsIntDisabled() bool { return d.intDisabled }
func (d *fakeDecoder) DisableIntOnEI()     { d.intDisabled = true }

// createTestROM fills a pages*0x4000 buffer, byte i in page p equal
// to p, so a test can tell which physical page answered a read.
func createTestROM(pages int) []byte {
	rom := make([]byte, pages*0x4000)
	for p := 0; p < pages; p++ {
		for i := 0; i < 0x4000; i++ {
			rom[p*0x4000+i] = byte(p)
		}
	}
	return rom
}

// newTestMachine builds a Machine with a fakeDecoder already wired as
// its Decoder, the Machine serving as the decoder's Environment, ready
// for Run.
func newTestMachine(model Model) (*Machine, *fakeDecoder) {
	m := NewMachine(model)
	d := newFakeDecoder(m)
	m.Decoder = d
	return m, d
}
