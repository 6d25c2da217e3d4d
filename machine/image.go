package machine

// Page identifies one of the ten fixed 16 KiB pages backing a Machine's
// memory image (spec.md §3).
type Page int

const (
	PageROM0 Page = iota
	PageRAM5
	PageRAM2
	PageRAM0
	PageROM1
	PageRAM1
	PageRAM3
	PageRAM4
	PageRAM6
	PageRAM7
	numPages
)

const pageSize = 0x4000

// pageOrder is the fixed physical layout backing Image.data: pages are
// concatenated in this order regardless of how they're currently paged
// into the CPU's address space.
var pageOrder = [numPages]Page{
	PageROM0, PageRAM5, PageRAM2, PageRAM0,
	PageROM1, PageRAM1, PageRAM3, PageRAM4,
	PageRAM6, PageRAM7,
}

// lcgSeed is the deterministic fill used to prime a fresh Image the way
// real DRAM powers up in an unpredictable but repeatable-for-testing
// pattern (spec.md §3).
const lcgSeed uint32 = 0xde347a01

// Image is the flat byte store backing a Spectrum's address space: up
// to ten 16 KiB pages (rom0/rom1, ram0..ram7), paged into the CPU's
// 64 KiB window by (romPage, ramPage, shadowScreen, pagingLocked).
type Image struct {
	data [int(numPages) * pageSize]byte

	romPage      Page // PageROM0 or PageROM1
	ramPage      Page // PageRAM0..PageRAM7
	shadowScreen bool // 128K only: video reads come from ram7 instead of ram5
	pagingLocked bool // 128K only: further writes to the paging port are ignored

	model Model
}

// NewImage creates a memory image for the given model, randomized the
// way real DRAM powers up (deterministic LCG-XOR stream, spec.md §3).
func NewImage(model Model) *Image {
	img := &Image{model: model}
	img.Reset()
	return img
}

// Reset randomizes the backing store and restores default paging.
func (img *Image) Reset() {
	s := lcgSeed
	for i := range img.data {
		s = s*0x74392cef ^ (s >> 16)
		img.data[i] = byte(s)
	}
	img.romPage = PageROM0
	img.ramPage = PageRAM0
	img.shadowScreen = false
	img.pagingLocked = false
}

// pageOffset returns the byte offset of the start of page p within the
// backing store. Page values are declared in physical layout order, so
// this is a direct index (see pageOrder).
func pageOffset(p Page) int {
	return int(p) * pageSize
}

// resolve maps a 16-bit CPU address to a physical offset into img.data,
// per the address ranges in spec.md §3.
func (img *Image) resolve(addr uint16) int {
	switch {
	case addr < 0x4000:
		if img.romPage != PageROM0 && img.romPage != PageROM1 {
			panic("machine: rom_page must be rom0 or rom1")
		}
		return pageOffset(img.romPage) + int(addr)
	case addr < 0x8000:
		return pageOffset(PageRAM5) + int(addr-0x4000)
	case addr < 0xC000:
		return pageOffset(PageRAM2) + int(addr-0x8000)
	default:
		if img.ramPage == PageROM0 || img.ramPage == PageROM1 {
			panic("machine: ram_page must not be a ROM page")
		}
		return pageOffset(img.ramPage) + int(addr-0xC000)
	}
}

// Read returns the byte visible at addr under the current paging.
func (img *Image) Read(addr uint16) uint8 {
	return img.data[img.resolve(addr)]
}

// Write stores val at addr under the current paging. Writes below
// 0x4000 land on ROM and are silently ignored (spec.md §4.1, §9 open
// question iii: ROM writes are ignored everywhere, uniformly).
func (img *Image) Write(addr uint16, val uint8) {
	if addr < 0x4000 {
		return
	}
	img.data[img.resolve(addr)] = val
}

// WriteROM pokes a byte directly into rom0 (pageNum 0) or rom1
// (pageNum 1), bypassing the read-only guard Write enforces below
// 0x4000. Used by a host to load a ROM image into a created image;
// a later Reset overwrites the ROM pages with the power-up fill.
func (img *Image) WriteROM(pageNum int, offset int, val uint8) {
	p := PageROM0
	if pageNum != 0 {
		p = PageROM1
	}
	img.data[pageOffset(p)+offset] = val
}

// ReadPage reads a byte directly from a named page at a page-relative
// offset, bypassing the current address-space paging. Used by the beam
// renderer to read screen memory from whichever RAM page currently
// holds the video buffer (ram5, or ram7 when shadowScreen is set).
func (img *Image) ReadPage(p Page, offset int) uint8 {
	return img.data[pageOffset(p)+offset]
}

// SetROMPage selects rom0 or rom1 as the ROM visible at 0x0000-0x3FFF.
func (img *Image) SetROMPage(n int) {
	if n == 0 {
		img.romPage = PageROM0
	} else {
		img.romPage = PageROM1
	}
}

// SetRAMPage selects which RAM bank (0-7) is paged into 0xC000-0xFFFF.
func (img *Image) SetRAMPage(n int) {
	img.ramPage = ramPageFor(n)
}

func ramPageFor(n int) Page {
	switch n & 7 {
	case 0:
		return PageRAM0
	case 1:
		return PageRAM1
	case 2:
		return PageRAM2
	case 3:
		return PageRAM3
	case 4:
		return PageRAM4
	case 5:
		return PageRAM5
	case 6:
		return PageRAM6
	default:
		return PageRAM7
	}
}

// SetShadowScreen selects whether the video buffer is read from ram7
// (true) instead of ram5 (false). 128K only.
func (img *Image) SetShadowScreen(v bool) { img.shadowScreen = v }

// ShadowScreen reports the current shadow-screen selection.
func (img *Image) ShadowScreen() bool { return img.shadowScreen }

// ScreenPage returns the RAM page the beam renderer should currently
// read pattern/attribute bytes from.
func (img *Image) ScreenPage() Page {
	if img.shadowScreen {
		return PageRAM7
	}
	return PageRAM5
}

// LockPaging latches the "disable further paging" bit. The setters
// above don't consult it themselves; Machine.OnOutputCycle checks
// PagingLocked before calling them, so once set, ROM/RAM/shadow-screen
// selection stops changing until the next Reset.
func (img *Image) LockPaging() { img.pagingLocked = true }

// PagingLocked reports whether the paging latch has been set.
func (img *Image) PagingLocked() bool { return img.pagingLocked }

// ROMPageNum returns 0 or 1 for the currently selected ROM page.
func (img *Image) ROMPageNum() int {
	if img.romPage == PageROM1 {
		return 1
	}
	return 0
}

// RAMPageNum returns 0-7 for the currently selected RAM page.
func (img *Image) RAMPageNum() int {
	switch img.ramPage {
	case PageRAM0:
		return 0
	case PageRAM1:
		return 1
	case PageRAM2:
		return 2
	case PageRAM3:
		return 3
	case PageRAM4:
		return 4
	case PageRAM5:
		return 5
	case PageRAM6:
		return 6
	default:
		return 7
	}
}
