package main

import (
	"errors"
	"testing"
)

func TestScanToleratesPerSlotFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.silentSlots[7] = true
	s, _ := newTestSession(dev)

	report, err := s.Scan(0, 9)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Presets) != 9 {
		t.Errorf("len(presets) = %d, want 9", len(report.Presets))
	}
	if len(report.FailedSlots) != 1 || report.FailedSlots[0] != 7 {
		t.Errorf("failed slots = %v, want [7]", report.FailedSlots)
	}
	for _, p := range report.Presets {
		if p.Slot == 7 {
			t.Error("failed slot 7 appears in the result set")
		}
	}
}

func TestScanRejectsBadRange(t *testing.T) {
	dev := newFakeDevice()
	s, _ := newTestSession(dev)

	for _, r := range [][2]int{{-1, 10}, {0, slotCount}, {9, 3}} {
		if _, err := s.Scan(r[0], r[1]); !errors.Is(err, ErrBadArgument) {
			t.Errorf("range %v: error = %v, want ErrBadArgument", r, err)
		}
	}
}

func TestScanCoversBothBanks(t *testing.T) {
	dev := newFakeDevice()
	dev.names[127] = "Last Of A"
	dev.names[128] = "First Of B"
	s, _ := newTestSession(dev)

	report, err := s.Scan(127, 128)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Presets) != 2 {
		t.Fatalf("len(presets) = %d, want 2", len(report.Presets))
	}
	if report.Presets[0].Name != "Last Of A" || report.Presets[0].Bank != 0 {
		t.Errorf("slot 127 = %+v", report.Presets[0])
	}
	if report.Presets[1].Name != "First Of B" || report.Presets[1].Bank != 1 {
		t.Errorf("slot 128 = %+v", report.Presets[1])
	}
}

func TestFindEmptySlots(t *testing.T) {
	dev := newFakeDevice()
	dev.names[3] = "Init"
	dev.names[6] = "Init"
	// A slot that fails to scan is unknown, not empty.
	dev.silentSlots[4] = true
	s, _ := newTestSession(dev)

	empty, err := s.FindEmptySlots(0, 9)
	if err != nil {
		t.Fatalf("FindEmptySlots: %v", err)
	}
	if len(empty) != 2 || empty[0] != 3 || empty[1] != 6 {
		t.Errorf("empty slots = %v, want [3 6]", empty)
	}
}
