package main

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildNameRequestBytes(t *testing.T) {
	got, err := buildNameRequest(arturiaDeviceID, 1, 5, 0)
	if err != nil {
		t.Fatalf("buildNameRequest: %v", err)
	}
	want := []byte{0xF0, 0x00, 0x20, 0x6B, 0x07, 0x01, 0x19, 0x01, 0x05, 0x00, 0xF7}
	if !bytes.Equal(got, want) {
		t.Errorf("frame = % X, want % X", got, want)
	}
}

func TestBuildDumpRequestBytes(t *testing.T) {
	got, err := buildDumpRequest(arturiaDeviceID, 0, 127)
	if err != nil {
		t.Fatalf("buildDumpRequest: %v", err)
	}
	want := []byte{0xF0, 0x00, 0x20, 0x6B, 0x07, 0x01, 0x21, 0x00, 0x7F, 0xF7}
	if !bytes.Equal(got, want) {
		t.Errorf("frame = % X, want % X", got, want)
	}
}

func TestBuildChunkRequestSplitsIndex(t *testing.T) {
	tests := []struct {
		index  int
		hi, lo byte
	}{
		{0, 0x00, 0x00},
		{127, 0x00, 0x7F},
		{128, 0x01, 0x00},
		{145, 0x01, 0x11},
	}
	for _, tt := range tests {
		got, err := buildChunkRequest(arturiaDeviceID, tt.index)
		if err != nil {
			t.Fatalf("buildChunkRequest(%d): %v", tt.index, err)
		}
		if got[7] != tt.hi || got[8] != tt.lo {
			t.Errorf("index %d encoded as %02X %02X, want %02X %02X", tt.index, got[7], got[8], tt.hi, tt.lo)
		}
	}
}

func TestBuildDeviceInfoRequestBytes(t *testing.T) {
	got, err := buildDeviceInfoRequest(rolandDeviceID, [4]byte{0x05, 0x00, 0x00, 0x00}, 0x40)
	if err != nil {
		t.Fatalf("buildDeviceInfoRequest: %v", err)
	}
	want := []byte{0xF0, 0x41, 0x10, 0x00, 0x00, 0x00, 0x44, 0x11, 0x05, 0x00, 0x00, 0x00, 0x40, 0x3B, 0xF7}
	if !bytes.Equal(got, want) {
		t.Errorf("frame = % X, want % X", got, want)
	}
}

func TestBuildersRejectOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"negative bank", func() error { _, err := buildNameRequest(arturiaDeviceID, -1, 0, 0); return err }},
		{"bank too high", func() error { _, err := buildNameRequest(arturiaDeviceID, 2, 0, 0); return err }},
		{"preset too high", func() error { _, err := buildNameRequest(arturiaDeviceID, 0, 128, 0); return err }},
		{"tag too wide", func() error { _, err := buildNameRequest(arturiaDeviceID, 0, 0, 0x80); return err }},
		{"dump preset negative", func() error { _, err := buildDumpRequest(arturiaDeviceID, 0, -1); return err }},
		{"chunk negative", func() error { _, err := buildChunkRequest(arturiaDeviceID, -1); return err }},
		{"chunk past end", func() error { _, err := buildChunkRequest(arturiaDeviceID, fullChunkCount); return err }},
		{"address byte too wide", func() error {
			_, err := buildDeviceInfoRequest(rolandDeviceID, [4]byte{0x80, 0, 0, 0}, 0x40)
			return err
		}},
		{"size too wide", func() error {
			_, err := buildDeviceInfoRequest(rolandDeviceID, [4]byte{0x05, 0, 0, 0}, 0x80)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build(); !errors.Is(err, ErrBadArgument) {
				t.Errorf("error = %v, want ErrBadArgument", err)
			}
		})
	}
}

func TestSplitSlot(t *testing.T) {
	tests := []struct {
		slot, bank, preset int
	}{
		{0, 0, 0},
		{127, 0, 127},
		{128, 1, 0},
		{255, 1, 127},
	}
	for _, tt := range tests {
		bank, preset, err := splitSlot(tt.slot)
		if err != nil {
			t.Fatalf("splitSlot(%d): %v", tt.slot, err)
		}
		if bank != tt.bank || preset != tt.preset {
			t.Errorf("splitSlot(%d) = (%d, %d), want (%d, %d)", tt.slot, bank, preset, tt.bank, tt.preset)
		}
	}

	for _, slot := range []int{-1, 256, 1000} {
		if _, _, err := splitSlot(slot); !errors.Is(err, ErrBadArgument) {
			t.Errorf("splitSlot(%d) error = %v, want ErrBadArgument", slot, err)
		}
	}
}
