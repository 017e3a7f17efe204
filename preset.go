package main

import (
	"bytes"
	"fmt"
	"os"
)

// Read depths in chunks. Metadata covers the preset header, preset adds the
// engine parameters, full adds the sequence region.
const (
	metadataChunkCount = 40
	presetChunkCount   = 106
	fullChunkCount     = 146
)

// Empty-slot heuristic: factory-initialized slots report the placeholder
// name and an out-of-table category byte. Neither is protocol-guaranteed.
const (
	emptyPresetName   = "Init"
	emptyCategoryByte = 0x7F
)

// Firmware-version and format markers, observed at fixed offsets of the
// first two chunks on firmware 5.x dumps. Best effort only.
const (
	fwMarkerChunk  = 0
	fwMarkerOffset = 24
	fwMarkerValue  = 0x06

	formatMarkerChunk  = 1
	formatMarkerOffset = 0
	formatMarkerValue  = 0x01
)

// PresetMetadata is the lightweight projection produced by scans. It never
// carries chunk data.
type PresetMetadata struct {
	Slot     int    `json:"slot"`
	Bank     int    `json:"bank"`
	Preset   int    `json:"preset"`
	Name     string `json:"name"`
	Category string `json:"category"`
	IsEmpty  bool   `json:"is_empty"`
}

// RawDump is an assembled chunked read of one slot. Firmware and FormatOK
// are derived by pattern inspection, not by the protocol.
type RawDump struct {
	Slot     int      `json:"slot"`
	Bank     int      `json:"bank"`
	Preset   int      `json:"preset"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Chunks   [][]byte `json:"-"`
	Firmware string   `json:"firmware,omitempty"`
	FormatOK bool     `json:"format_supported"`
}

// SequenceSteps decodes the step region. Only a full read carries it.
func (d *RawDump) SequenceSteps() ([]SequenceStep, error) {
	if len(d.Chunks) != fullChunkCount {
		return nil, fmt.Errorf("%w: sequence region needs a full %d-chunk dump, have %d chunks",
			ErrBadArgument, fullChunkCount, len(d.Chunks))
	}
	return DecodeSequence(d.Chunks[seqStepStart : seqStepStart+seqStepCount])
}

func isEmptyPreset(name string, category byte) bool {
	return name == "" || name == emptyPresetName || category == emptyCategoryByte
}

func firmwareVersion(chunks [][]byte) string {
	if len(chunks) <= fwMarkerChunk {
		return ""
	}
	c := chunks[fwMarkerChunk]
	if len(c) != chunkSize || c[fwMarkerOffset] != fwMarkerValue {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", c[fwMarkerOffset+1], c[fwMarkerOffset+2], c[fwMarkerOffset+3])
}

func formatSupported(chunks [][]byte) bool {
	if len(chunks) <= formatMarkerChunk {
		return false
	}
	c := chunks[formatMarkerChunk]
	return len(c) == chunkSize && c[formatMarkerOffset] == formatMarkerValue
}

// SaveDump writes the assembled chunks as flat binary, 32 bytes per chunk.
func SaveDump(path string, d *RawDump) error {
	var buf bytes.Buffer
	for _, chunk := range d.Chunks {
		buf.Write(chunk)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write dump file: %w", err)
	}
	return nil
}

// LoadChunks reads a file written by SaveDump back into chunk form.
func LoadChunks(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump file: %w", err)
	}
	if len(data)%chunkSize != 0 {
		return nil, fmt.Errorf("%w: dump file length %d is not a multiple of %d", ErrParse, len(data), chunkSize)
	}
	n := len(data) / chunkSize
	if n != metadataChunkCount && n != presetChunkCount && n != fullChunkCount {
		return nil, fmt.Errorf("%w: dump file holds %d chunks (want %d, %d or %d)",
			ErrParse, n, metadataChunkCount, presetChunkCount, fullChunkCount)
	}
	chunks := make([][]byte, n)
	for i := range chunks {
		chunks[i] = append([]byte(nil), data[i*chunkSize:(i+1)*chunkSize]...)
	}
	return chunks, nil
}
