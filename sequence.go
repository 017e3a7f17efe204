package main

import "fmt"

// Per-step chunk layout, recovered by diffing dumps while editing single
// steps on the hardware. Offsets not named here never changed during that
// exercise and are carried opaquely.
const (
	offStepGate  = 9
	offStepNote  = 10
	offStepLaneA = 11
	offStepFlagA = 12
	offStepLaneC = 13
	offStepLaneD = 14
	offStepFlagB = 15
)

const (
	gateOn  byte = 0x00
	gateOff byte = 0x7F

	// Either byte marks an unused lane. Both are also representable as
	// legitimate values in principle, so decode→encode is lossy at exactly
	// these two points; the hardware has not confirmed a disambiguation.
	laneOffSentinel byte = 0x7F
	laneAltSentinel byte = 0x01

	// Notes outside this range were never produced by the sequencer even
	// though they are valid MIDI notes elsewhere.
	noteMin byte = 36
	noteMax byte = 96

	// Flag bytes observed alongside active steps.
	flagAActive byte = 0x01
	flagBActive byte = 0x00
)

// Placement of the sequence inside a full 146-chunk dump: an opaque filler
// region, then one chunk per step, then sentinel padding to the end.
const (
	seqFillerStart = 40
	seqStepStart   = 70
	seqStepCount   = 64
	seqRegionEnd   = 145

	seqFillerChunks    = seqStepStart - seqFillerStart
	sequenceChunkCount = presetChunkCount
)

// LaneAbsent marks an unused lane in a decoded step.
const LaneAbsent = -1

// SequenceStep is the decoded view of one 32-byte step chunk. Note and the
// lanes are 0..127 or LaneAbsent.
type SequenceStep struct {
	Gate  bool `json:"gate"`
	Note  int  `json:"note"`
	LaneA int  `json:"lane_a"`
	LaneC int  `json:"lane_c"`
	LaneD int  `json:"lane_d"`
}

// DecodeStep decodes one step chunk. The input must be exactly one chunk;
// partial chunks are a caller error, not a protocol condition.
func DecodeStep(chunk []byte) (SequenceStep, error) {
	if len(chunk) != chunkSize {
		return SequenceStep{}, fmt.Errorf("%w: step chunk is %d bytes, want %d", ErrBadArgument, len(chunk), chunkSize)
	}
	step := SequenceStep{
		Gate:  chunk[offStepGate] == gateOn,
		Note:  LaneAbsent,
		LaneA: laneValue(chunk[offStepLaneA]),
		LaneC: laneValue(chunk[offStepLaneC]),
		LaneD: laneValue(chunk[offStepLaneD]),
	}
	if v := chunk[offStepNote]; v >= noteMin && v <= noteMax {
		step.Note = int(v)
	}
	return step, nil
}

// EncodeStep is the inverse of DecodeStep. A gateless step writes the off
// sentinel into every lane; an active step gets the observed flag defaults.
func EncodeStep(step SequenceStep) ([]byte, error) {
	for _, lane := range []struct {
		name  string
		value int
	}{
		{"note", step.Note},
		{"lane A", step.LaneA},
		{"lane C", step.LaneC},
		{"lane D", step.LaneD},
	} {
		if lane.value != LaneAbsent && (lane.value < 0 || lane.value > 127) {
			return nil, fmt.Errorf("%w: %s value %d not in 0..127", ErrBadArgument, lane.name, lane.value)
		}
	}

	chunk := make([]byte, chunkSize)
	if !step.Gate {
		chunk[offStepGate] = gateOff
		chunk[offStepNote] = laneOffSentinel
		chunk[offStepLaneA] = laneOffSentinel
		chunk[offStepLaneC] = laneOffSentinel
		chunk[offStepLaneD] = laneOffSentinel
		return chunk, nil
	}

	chunk[offStepGate] = gateOn
	chunk[offStepFlagA] = flagAActive
	chunk[offStepFlagB] = flagBActive
	chunk[offStepNote] = laneByte(step.Note)
	chunk[offStepLaneA] = laneByte(step.LaneA)
	chunk[offStepLaneC] = laneByte(step.LaneC)
	chunk[offStepLaneD] = laneByte(step.LaneD)
	return chunk, nil
}

// DecodeSequence decodes a run of step chunks in order.
func DecodeSequence(stepChunks [][]byte) ([]SequenceStep, error) {
	steps := make([]SequenceStep, 0, len(stepChunks))
	for i, chunk := range stepChunks {
		step, err := DecodeStep(chunk)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// EncodeSequence produces the 106 chunks that follow the metadata region of
// a full dump: the opaque filler block, up to 64 step chunks, then sentinel
// padding. Steps at or past activeCount are written gateless.
func EncodeSequence(steps []SequenceStep, activeCount int) ([][]byte, error) {
	if len(steps) > seqStepCount {
		return nil, fmt.Errorf("%w: %d steps exceed the %d-step sequence", ErrBadArgument, len(steps), seqStepCount)
	}
	if activeCount < 0 || activeCount > len(steps) {
		return nil, fmt.Errorf("%w: active count %d not in 0..%d", ErrBadArgument, activeCount, len(steps))
	}

	chunks := make([][]byte, 0, sequenceChunkCount)
	for i := 0; i < seqFillerChunks; i++ {
		chunks = append(chunks, fillerChunk())
	}
	for i, step := range steps {
		if i >= activeCount {
			step.Gate = false
		}
		chunk, err := EncodeStep(step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		chunks = append(chunks, chunk)
	}
	for len(chunks) < sequenceChunkCount {
		chunks = append(chunks, fillerChunk())
	}
	return chunks, nil
}

func laneValue(b byte) int {
	if b == laneOffSentinel || b == laneAltSentinel {
		return LaneAbsent
	}
	return int(b)
}

func laneByte(v int) byte {
	if v == LaneAbsent {
		return laneOffSentinel
	}
	return byte(v)
}

// fillerChunk reproduces the inert sentinel-filled chunks that surround the
// step region. Their purpose is unknown; they are preserved, not decoded.
func fillerChunk() []byte {
	chunk := make([]byte, chunkSize)
	for i := range chunk {
		chunk[i] = laneOffSentinel
	}
	return chunk
}
