package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Failure taxonomy. Arguments are rejected before any I/O; everything else
// terminates the current transfer and is reported, never left pending.
var (
	ErrBadArgument = errors.New("argument out of range")
	ErrTimeout     = errors.New("timed out waiting for response")
	ErrTransport   = errors.New("transport send failed")
	ErrParse       = errors.New("malformed response")
)

const (
	defaultDataTimeout = 1000 * time.Millisecond
	defaultNameTimeout = 2000 * time.Millisecond

	// The hardware needs settling time between exchanges. Fixed delay,
	// not a backoff.
	defaultPacing = 15 * time.Millisecond

	// Pacing observed for sequence-chunk writes. The write path is
	// undocumented and nothing here issues it; the constant records the
	// observation.
	sequenceWritePacing = 2 * time.Millisecond
)

type phase int

const (
	phaseIdle phase = iota
	phaseAwaitingName
	phaseAwaitingDumpAck
	phaseAwaitingChunk
	phaseComplete
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseAwaitingName:
		return "awaiting name"
	case phaseAwaitingDumpAck:
		return "awaiting dump ack"
	case phaseAwaitingChunk:
		return "awaiting chunk"
	case phaseComplete:
		return "complete"
	case phaseFailed:
		return "failed"
	}
	return "unknown"
}

// Session drives request/response exchanges against one MIDI endpoint. The
// endpoint is half duplex and single channel, so the mutex keeps at most one
// exchange outstanding; callers may share a Session freely.
type Session struct {
	mu        sync.Mutex
	transport Transport
	deviceID  byte
	rolandID  byte

	dataTimeout time.Duration
	nameTimeout time.Duration
	pacing      time.Duration
}

func NewSession(t Transport) *Session {
	return &Session{
		transport:   t,
		deviceID:    arturiaDeviceID,
		rolandID:    rolandDeviceID,
		dataTimeout: defaultDataTimeout,
		nameTimeout: defaultNameTimeout,
		pacing:      defaultPacing,
	}
}

// transfer tracks one dump in flight. It is mutated only while the session
// mutex is held and discarded once a terminal phase is reported.
type transfer struct {
	slot, bank, preset int
	chunkCount         int
	phase              phase
	name               string
	category           byte
	chunks             [][]byte
}

func (t *transfer) fail(err error) error {
	log.Printf("transfer: slot %d failed while %s: %v", t.slot, t.phase, err)
	t.phase = phaseFailed
	return err
}

// listen funnels inbound frames into a channel the exchange loop can select
// on. The driver callback must never block, so overflow is dropped; the
// channel is far deeper than the single response any exchange waits for.
func (s *Session) listen() (<-chan []byte, func(), error) {
	frames := make(chan []byte, 32)
	stop, err := s.transport.Listen(func(frame []byte) {
		select {
		case frames <- frame:
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on transport: %w", err)
	}
	return frames, stop, nil
}

// exchange sends one request and waits for the next frame of the wanted
// kind. Frames of any other shape are unrelated traffic on the shared
// channel and are dropped without prejudice. There is no retry.
func (s *Session) exchange(frames <-chan []byte, req []byte, want responseKind, timeout time.Duration) ([]byte, error) {
	if err := s.transport.Send(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case frame := <-frames:
			if classifyResponse(frame) == want {
				return frame, nil
			}
		case <-deadline.C:
			return nil, ErrTimeout
		}
	}
}

// ReadName fetches the metadata projection of one slot without staging a
// dump.
func (s *Session) ReadName(slot int) (*PresetMetadata, error) {
	bank, preset, err := splitSlot(slot)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frames, stop, err := s.listen()
	if err != nil {
		return nil, err
	}
	defer stop()

	info, err := s.readName(frames, bank, preset)
	if err != nil {
		return nil, err
	}
	return &PresetMetadata{
		Slot:     slot,
		Bank:     bank,
		Preset:   preset,
		Name:     info.Name,
		Category: categoryName(info.Category),
		IsEmpty:  isEmptyPreset(info.Name, info.Category),
	}, nil
}

func (s *Session) readName(frames <-chan []byte, bank, preset int) (*nameInfo, error) {
	req, err := buildNameRequest(s.deviceID, bank, preset, 0)
	if err != nil {
		return nil, err
	}
	frame, err := s.exchange(frames, req, kindName, s.nameTimeout)
	if err != nil {
		return nil, err
	}
	info, err := parseNameResponse(frame)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: name response did not decode", ErrParse)
	}
	return info, nil
}

// ReadPreset assembles one slot chunk by chunk. chunkCount selects the read
// depth: 40 for metadata, 106 for the full preset, 146 to include the
// sequence region.
func (s *Session) ReadPreset(slot, chunkCount int) (*RawDump, error) {
	bank, preset, err := splitSlot(slot)
	if err != nil {
		return nil, err
	}
	if chunkCount != metadataChunkCount && chunkCount != presetChunkCount && chunkCount != fullChunkCount {
		return nil, fmt.Errorf("%w: chunk count %d (want %d, %d or %d)",
			ErrBadArgument, chunkCount, metadataChunkCount, presetChunkCount, fullChunkCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frames, stop, err := s.listen()
	if err != nil {
		return nil, err
	}
	defer stop()

	t := &transfer{slot: slot, bank: bank, preset: preset, chunkCount: chunkCount}
	if err := s.run(frames, t); err != nil {
		return nil, err
	}

	return &RawDump{
		Slot:     slot,
		Bank:     bank,
		Preset:   preset,
		Name:     t.name,
		Category: categoryName(t.category),
		Chunks:   t.chunks,
		Firmware: firmwareVersion(t.chunks),
		FormatOK: formatSupported(t.chunks),
	}, nil
}

// run walks the transfer through its phases. Each transition is triggered by
// exactly one matching inbound frame or by the per-exchange timeout.
func (s *Session) run(frames <-chan []byte, t *transfer) error {
	log.Printf("transfer: slot %d (bank %d preset %d), %d chunks", t.slot, t.bank, t.preset, t.chunkCount)

	t.phase = phaseAwaitingName
	info, err := s.readName(frames, t.bank, t.preset)
	if err != nil {
		return t.fail(err)
	}
	t.name, t.category = info.Name, info.Category

	time.Sleep(s.pacing)
	t.phase = phaseAwaitingDumpAck
	req, err := buildDumpRequest(s.deviceID, t.bank, t.preset)
	if err != nil {
		return t.fail(err)
	}
	frame, err := s.exchange(frames, req, kindDumpAck, s.dataTimeout)
	if err != nil {
		return t.fail(err)
	}
	if err := parseDumpAck(frame); err != nil {
		return t.fail(err)
	}

	t.phase = phaseAwaitingChunk
	for i := 0; i < t.chunkCount; i++ {
		time.Sleep(s.pacing)
		req, err := buildChunkRequest(s.deviceID, i)
		if err != nil {
			return t.fail(err)
		}
		frame, err := s.exchange(frames, req, kindChunk, s.dataTimeout)
		if err != nil {
			return t.fail(err)
		}
		chunk, err := parseChunkResponse(frame)
		if err != nil {
			return t.fail(err)
		}
		if chunk == nil {
			return t.fail(fmt.Errorf("%w: chunk response did not decode", ErrParse))
		}
		if chunk.Index != i {
			return t.fail(fmt.Errorf("%w: chunk %d answered with index %d", ErrParse, i, chunk.Index))
		}
		t.chunks = append(t.chunks, chunk.Data)
	}

	t.phase = phaseComplete
	log.Printf("transfer: slot %d complete, %q (%s)", t.slot, t.name, categoryName(t.category))
	return nil
}

// ReadDeviceInfo queries one register span through the Roland-style dialect.
// A failing checksum comes back in the record, not as an error.
func (s *Session) ReadDeviceInfo(addr [4]byte, size byte) (*DeviceInfo, error) {
	req, err := buildDeviceInfoRequest(s.rolandID, addr, size)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frames, stop, err := s.listen()
	if err != nil {
		return nil, err
	}
	defer stop()

	frame, err := s.exchange(frames, req, kindDeviceInfo, s.dataTimeout)
	if err != nil {
		return nil, err
	}
	info, err := parseDeviceInfoResponse(frame)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: device info response did not decode", ErrParse)
	}
	return info, nil
}
