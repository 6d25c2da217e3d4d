package machine

import "testing"

// TestJournal_RecordAndEntries verifies recorded writes are returned
// in order with their tick stamps intact.
func TestJournal_RecordAndEntries(t *testing.T) {
	j := NewJournal(Timing48K.TicksPerFrame)
	j.Record(0xFE, 0x07, 100)
	j.Record(0x7FFD, 0x10, 250)

	entries := j.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0] != (PortWrite{Addr: 0xFE, Value: 0x07, Tick: 100}) {
		t.Errorf("entry 0: got %+v", entries[0])
	}
	if entries[1] != (PortWrite{Addr: 0x7FFD, Value: 0x10, Tick: 250}) {
		t.Errorf("entry 1: got %+v", entries[1])
	}
}

// TestJournal_Clear verifies Clear empties the journal without
// shrinking its capacity.
func TestJournal_Clear(t *testing.T) {
	j := NewJournal(Timing48K.TicksPerFrame)
	j.Record(0xFE, 0, 0)
	j.Clear()
	if j.Count() != 0 {
		t.Errorf("Count after Clear: expected 0, got %d", j.Count())
	}
	if len(j.Entries()) != 0 {
		t.Errorf("Entries after Clear: expected empty slice, got %v", j.Entries())
	}
}

// TestJournal_CapacityBound verifies the journal never grows past the
// worst-case number of port writes a frame's minimum OUT spacing
// allows, silently dropping writes beyond that (spec.md §4.6).
func TestJournal_CapacityBound(t *testing.T) {
	j := NewJournal(Timing48K.TicksPerFrame)
	capacity := (Timing48K.TicksPerFrame + minOutTicks - 1) / minOutTicks

	for i := 0; i < capacity+10; i++ {
		j.Record(0xFE, uint8(i), i)
	}

	if j.Count() != capacity {
		t.Errorf("Count: expected to saturate at capacity %d, got %d", capacity, j.Count())
	}
	if len(j.Entries()) != capacity {
		t.Errorf("Entries length: expected %d, got %d", capacity, len(j.Entries()))
	}
}
