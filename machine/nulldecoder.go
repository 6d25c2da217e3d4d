package machine

// NullDecoder is a placeholder Decoder that treats every opcode byte
// as a one-byte, four-tick instruction: fetch, advance PC, repeat. It
// exercises the full Environment/contention/beam/journal machinery
// end to end without depending on a real Z80 decoder, which spec.md
// §1 places out of scope for this package. cmd/zxtrace uses it for
// smoke-running a memory image; an embedder with a real decoder
// assigns its own Decoder to Machine instead.
type NullDecoder struct {
	env Environment

	pc                         uint16
	af, bc, de, hl             uint16
	altAF, altBC, altDE, altHL uint16
	ix, iy, sp, wz, ir         uint16
	iff1, iff2                 bool
	intMode                    int
	iregKind                   IRegPKind
	intDisabled                bool
}

// NewNullDecoder creates a NullDecoder driving env.
func NewNullDecoder(env Environment) *NullDecoder {
	return &NullDecoder{env: env}
}

// Step fetches the byte at PC and advances PC by one, applying
// whatever memory contention that fetch incurs.
func (d *NullDecoder) Step() {
	d.env.OnM1FetchCycle()
	d.env.OnSetPC(d.pc + 1)
}

// HandleActiveInt accepts a pending interrupt when IFF1 is set and
// interrupts aren't disabled, jumping to the IM 1 handler address
// 0x0038 the way a real Z80 in interrupt mode 1 would.
func (d *NullDecoder) HandleActiveInt() bool {
	if !d.iff1 || d.intDisabled {
		return false
	}
	d.iff1 = false
	d.env.OnSetPC(0x0038)
	return true
}

func (d *NullDecoder) PC() uint16      { return d.pc }
func (d *NullDecoder) SetPC(pc uint16) { d.pc = pc }

func (d *NullDecoder) AF() uint16     { return d.af }
func (d *NullDecoder) SetAF(v uint16) { d.af = v }
func (d *NullDecoder) BC() uint16     { return d.bc }
func (d *NullDecoder) SetBC(v uint16) { d.bc = v }
func (d *NullDecoder) DE() uint16     { return d.de }
func (d *NullDecoder) SetDE(v uint16) { d.de = v }
func (d *NullDecoder) HL() uint16     { return d.hl }
func (d *NullDecoder) SetHL(v uint16) { d.hl = v }
func (d *NullDecoder) AltAF() uint16     { return d.altAF }
func (d *NullDecoder) SetAltAF(v uint16) { d.altAF = v }
func (d *NullDecoder) AltBC() uint16     { return d.altBC }
func (d *NullDecoder) SetAltBC(v uint16) { d.altBC = v }
func (d *NullDecoder) AltDE() uint16     { return d.altDE }
func (d *NullDecoder) SetAltDE(v uint16) { d.altDE = v }
func (d *NullDecoder) AltHL() uint16     { return d.altHL }
func (d *NullDecoder) SetAltHL(v uint16) { d.altHL = v }
func (d *NullDecoder) IX() uint16     { return d.ix }
func (d *NullDecoder) SetIX(v uint16) { d.ix = v }
func (d *NullDecoder) IY() uint16     { return d.iy }
func (d *NullDecoder) SetIY(v uint16) { d.iy = v }
func (d *NullDecoder) SP() uint16     { return d.sp }
func (d *NullDecoder) SetSP(v uint16) { d.sp = v }
func (d *NullDecoder) WZ() uint16     { return d.wz }
func (d *NullDecoder) SetWZ(v uint16) { d.wz = v }
func (d *NullDecoder) IR() uint16     { return d.ir }
func (d *NullDecoder) SetIR(v uint16) { d.ir = v }

func (d *NullDecoder) IFF1() bool           { return d.iff1 }
func (d *NullDecoder) SetIFF1(v bool)       { d.iff1 = v }
func (d *NullDecoder) IFF2() bool           { return d.iff2 }
func (d *NullDecoder) SetIFF2(v bool)       { d.iff2 = v }
func (d *NullDecoder) IntMode() int         { return d.intMode }
func (d *NullDecoder) SetIntMode(v int)     { d.intMode = v }
func (d *NullDecoder) IRegPKind() IRegPKind { return d.iregKind }
func (d *NullDecoder) SetIRegPKind(v IRegPKind) { d.iregKind = v }

func (d *NullDecoder) IsIntDisabled() bool { return d.intDisabled }
func (d *NullDecoder) DisableIntOnEI()     { d.intDisabled = true }

var _ Decoder = (*NullDecoder)(nil)
