package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testChunks(n int) [][]byte {
	chunks := make([][]byte, n)
	for i := range chunks {
		chunks[i] = make([]byte, chunkSize)
		chunks[i][0] = byte(i % 128)
	}
	return chunks
}

func TestFirmwareVersionHeuristic(t *testing.T) {
	chunks := testChunks(metadataChunkCount)
	chunks[fwMarkerChunk][fwMarkerOffset] = fwMarkerValue
	chunks[fwMarkerChunk][fwMarkerOffset+1] = 5
	chunks[fwMarkerChunk][fwMarkerOffset+2] = 0
	chunks[fwMarkerChunk][fwMarkerOffset+3] = 1

	if got := firmwareVersion(chunks); got != "5.0.1" {
		t.Errorf("firmwareVersion = %q, want %q", got, "5.0.1")
	}

	chunks[fwMarkerChunk][fwMarkerOffset] = 0x00
	if got := firmwareVersion(chunks); got != "" {
		t.Errorf("firmwareVersion without marker = %q, want empty", got)
	}
	if got := firmwareVersion(nil); got != "" {
		t.Errorf("firmwareVersion(nil) = %q, want empty", got)
	}
}

func TestFormatSupportedHeuristic(t *testing.T) {
	chunks := testChunks(metadataChunkCount)
	chunks[formatMarkerChunk][formatMarkerOffset] = formatMarkerValue
	if !formatSupported(chunks) {
		t.Error("formatSupported = false with the marker present")
	}
	chunks[formatMarkerChunk][formatMarkerOffset] = 0x00
	if formatSupported(chunks) {
		t.Error("formatSupported = true without the marker")
	}
	if formatSupported(nil) {
		t.Error("formatSupported(nil) = true")
	}
}

func TestIsEmptyPreset(t *testing.T) {
	tests := []struct {
		name     string
		category byte
		want     bool
	}{
		{"Init", 0, true},
		{"", 0, true},
		{"Plasma Drift", emptyCategoryByte, true},
		{"Plasma Drift", 0, false},
		{"Initial", 0, false},
	}
	for _, tt := range tests {
		if got := isEmptyPreset(tt.name, tt.category); got != tt.want {
			t.Errorf("isEmptyPreset(%q, 0x%02X) = %v, want %v", tt.name, tt.category, got, tt.want)
		}
	}
}

func TestSaveAndLoadDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot12.syx")
	dump := &RawDump{Slot: 12, Chunks: testChunks(fullChunkCount)}

	if err := SaveDump(path, dump); err != nil {
		t.Fatalf("SaveDump: %v", err)
	}
	chunks, err := LoadChunks(path)
	if err != nil {
		t.Fatalf("LoadChunks: %v", err)
	}
	if len(chunks) != fullChunkCount {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), fullChunkCount)
	}
	for i := range chunks {
		if !bytes.Equal(chunks[i], dump.Chunks[i]) {
			t.Fatalf("chunk %d differs after reload", i)
		}
	}
}

func TestLoadChunksRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	ragged := filepath.Join(dir, "ragged.syx")
	if err := os.WriteFile(ragged, make([]byte, chunkSize+1), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChunks(ragged); !errors.Is(err, ErrParse) {
		t.Errorf("ragged file: error = %v, want ErrParse", err)
	}

	wrongCount := filepath.Join(dir, "short.syx")
	if err := os.WriteFile(wrongCount, make([]byte, chunkSize*10), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChunks(wrongCount); !errors.Is(err, ErrParse) {
		t.Errorf("wrong chunk count: error = %v, want ErrParse", err)
	}
}

func TestSequenceStepsNeedsFullDump(t *testing.T) {
	dump := &RawDump{Chunks: testChunks(metadataChunkCount)}
	if _, err := dump.SequenceSteps(); !errors.Is(err, ErrBadArgument) {
		t.Errorf("error = %v, want ErrBadArgument", err)
	}
}
