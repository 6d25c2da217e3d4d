// Command zxtrace loads a ROM image into a Machine and runs it for a
// fixed number of frames, reporting tick and event counts and,
// optionally, a per-instruction register trace and the final frame's
// port-write journal. It has no GUI or audio dependency: the beam
// renderer's chunk buffer is exercised but never displayed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kosarev-zx/goz80ula/machine"
)

func main() {
	romPath := flag.String("rom", "", "path to a 16K or 32K ROM image (required)")
	model := flag.String("model", "48k", "machine model: 48k or 128k")
	frames := flag.Int("frames", 1, "number of frames to run")
	traceOut := flag.String("trace", "", "path to write a register trace, or empty to disable")
	showJournal := flag.Bool("journal", false, "print the last frame's port-write journal")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("zxtrace: -rom is required")
	}

	m, err := buildMachine(*model, *romPath)
	if err != nil {
		log.Fatalf("zxtrace: %v", err)
	}

	if *traceOut != "" {
		f, err := os.Create(*traceOut)
		if err != nil {
			log.Fatalf("zxtrace: opening trace file: %v", err)
		}
		defer f.Close()
		m.TraceEnabled = true
		m.TraceSink = f
	}

	var events machine.EventMask
	for i := 0; i < *frames; i++ {
		events = m.Run()
	}

	fmt.Printf("model=%s frames=%d ticks=%d events=0x%02X\n", *model, *frames, m.Ticks(), events)

	if *showJournal {
		for _, w := range m.GetPortWrites() {
			fmt.Printf("tick=%d port=0x%04X value=0x%02X\n", w.Tick, w.Addr, w.Value)
		}
	}
}

func buildMachine(modelFlag, romPath string) (*machine.Machine, error) {
	var mdl machine.Model
	switch modelFlag {
	case "48k":
		mdl = machine.Model48K
	case "128k":
		mdl = machine.Model128K
	default:
		return nil, fmt.Errorf("unknown model %q (want 48k or 128k)", modelFlag)
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	m := machine.NewMachine(mdl)
	if err := loadROM(m, rom); err != nil {
		return nil, err
	}
	m.Decoder = machine.NewNullDecoder(m)
	return m, nil
}

// loadROM copies rom into rom0, and into rom1 too if the image is
// large enough to be a 128K editor ROM.
func loadROM(m *machine.Machine, rom []byte) error {
	const pageSize = 0x4000
	if len(rom) == 0 || len(rom)%pageSize != 0 {
		return fmt.Errorf("ROM image must be a non-empty multiple of %d bytes, got %d", pageSize, len(rom))
	}

	m.Image.SetROMPage(0)
	for i := 0; i < pageSize && i < len(rom); i++ {
		m.Image.WriteROM(0, i, rom[i])
	}
	if len(rom) > pageSize {
		m.Image.SetROMPage(1)
		for i := 0; i < pageSize && pageSize+i < len(rom); i++ {
			m.Image.WriteROM(1, i, rom[pageSize+i])
		}
		m.Image.SetROMPage(0)
	}
	return nil
}
