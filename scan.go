package main

import (
	"fmt"
	"log"
	"time"
)

// ScanReport is the outcome of a directory scan. Slots that failed are
// listed rather than aborting the scan; their metadata is simply missing.
type ScanReport struct {
	Presets     []PresetMetadata `json:"presets"`
	FailedSlots []int            `json:"failed_slots,omitempty"`
}

// Scan reads the name and category of every slot in [first, last], one
// name-only exchange per slot with the usual pacing in between. A 256-slot
// scan takes on the order of a minute; that cost is inherent to the
// one-outstanding-request channel and is not optimized away.
func (s *Session) Scan(first, last int) (*ScanReport, error) {
	if first < 0 || last >= slotCount || first > last {
		return nil, fmt.Errorf("%w: scan range %d..%d", ErrBadArgument, first, last)
	}

	report := &ScanReport{}
	for slot := first; slot <= last; slot++ {
		if slot > first {
			time.Sleep(s.pacing)
		}
		md, err := s.ReadName(slot)
		if err != nil {
			log.Printf("scan: slot %d failed: %v", slot, err)
			report.FailedSlots = append(report.FailedSlots, slot)
			continue
		}
		report.Presets = append(report.Presets, *md)
	}
	log.Printf("scan: %d slots read, %d failed", len(report.Presets), len(report.FailedSlots))
	return report, nil
}

// FindEmptySlots filters a scan down to slots the empty-slot heuristic
// accepts. Slots that failed to scan are not assumed empty.
func (s *Session) FindEmptySlots(first, last int) ([]int, error) {
	report, err := s.Scan(first, last)
	if err != nil {
		return nil, err
	}
	var empty []int
	for _, p := range report.Presets {
		if p.IsEmpty {
			empty = append(empty, p.Slot)
		}
	}
	return empty, nil
}
