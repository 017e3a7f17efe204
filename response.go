package main

import (
	"bytes"
	"fmt"
)

// Name response layout:
//
//	F0 00 20 6B <dev> 01 52 <name[14]> <category> F7
//
// The name field is a NUL-padded ASCII run of fixed width.
const (
	nameFieldOffset = 7
	nameFieldWidth  = 14
	categoryOffset  = nameFieldOffset + nameFieldWidth
	nameResponseLen = categoryOffset + 2
)

// Chunk response layout (two interchangeable discriminators 0x16/0x17):
//
//	F0 00 20 6B <dev> 01 <16|17> <idxHi> <idxLo> <data[32]> F7
const (
	chunkSize        = 32
	chunkIndexOffset = 7
	chunkDataOffset  = 9
	chunkResponseLen = chunkDataOffset + chunkSize + 1
)

const dumpAckLen = 10

// responseKind tags a validated inbound frame with the response shape it
// carries, so the orchestrator dispatches on a tag instead of re-probing
// the frame in every phase.
type responseKind int

const (
	kindUnknown responseKind = iota
	kindName
	kindDumpAck
	kindChunk
	kindDeviceInfo
)

func classifyResponse(frame []byte) responseKind {
	if env, ok := parseArturiaFrame(frame); ok {
		switch env.Command {
		case respNameDump:
			return kindName
		case respDumpAck:
			return kindDumpAck
		case respChunkA, respChunkB:
			return kindChunk
		}
		return kindUnknown
	}
	if env, ok := parseRolandFrame(frame); ok && env.Command == cmdDataSet {
		return kindDeviceInfo
	}
	return kindUnknown
}

type nameInfo struct {
	Name     string
	Category byte
}

// parseNameResponse returns (nil, nil) when the frame is not a name response
// at all; callers treat that as "not my message". A frame that carries the
// name discriminator but is structurally broken is an error.
func parseNameResponse(frame []byte) (*nameInfo, error) {
	env, ok := parseArturiaFrame(frame)
	if !ok || env.Command != respNameDump {
		return nil, nil
	}
	if len(frame) != nameResponseLen {
		return nil, fmt.Errorf("%w: name response is %d bytes, want %d", ErrParse, len(frame), nameResponseLen)
	}
	return &nameInfo{
		Name:     decodeNameField(frame[nameFieldOffset:categoryOffset]),
		Category: frame[categoryOffset],
	}, nil
}

type chunkResponse struct {
	Index int
	Data  []byte
}

// parseChunkResponse accepts either chunk discriminator and insists on the
// exact wire length; anything else with a chunk discriminator is malformed.
func parseChunkResponse(frame []byte) (*chunkResponse, error) {
	env, ok := parseArturiaFrame(frame)
	if !ok || (env.Command != respChunkA && env.Command != respChunkB) {
		return nil, nil
	}
	if len(frame) != chunkResponseLen {
		return nil, fmt.Errorf("%w: chunk response is %d bytes, want %d", ErrParse, len(frame), chunkResponseLen)
	}
	data := make([]byte, chunkSize)
	copy(data, frame[chunkDataOffset:chunkDataOffset+chunkSize])
	return &chunkResponse{
		Index: int(frame[chunkIndexOffset])<<7 | int(frame[chunkIndexOffset+1]),
		Data:  data,
	}, nil
}

func parseDumpAck(frame []byte) error {
	env, ok := parseArturiaFrame(frame)
	if !ok || env.Command != respDumpAck {
		return fmt.Errorf("%w: not a dump acknowledgement", ErrParse)
	}
	if len(frame) != dumpAckLen {
		return fmt.Errorf("%w: dump ack is %d bytes, want %d", ErrParse, len(frame), dumpAckLen)
	}
	return nil
}

// DeviceInfo is a decoded Roland-style DT1 reply. A failed checksum does not
// reject the record; Valid reports it and callers decide what to keep.
type DeviceInfo struct {
	DeviceID byte    `json:"device_id"`
	Command  byte    `json:"command"`
	Address  [4]byte `json:"address"`
	Data     []byte  `json:"data"`
	Valid    bool    `json:"checksum_valid"`
}

func parseDeviceInfoResponse(frame []byte) (*DeviceInfo, error) {
	env, ok := parseRolandFrame(frame)
	if !ok || env.Command != cmdDataSet {
		return nil, nil
	}
	if len(env.Payload) < rolandAddressLen+1 {
		return nil, fmt.Errorf("%w: device info payload is %d bytes", ErrParse, len(env.Payload))
	}
	body := env.Payload[:len(env.Payload)-1]
	claimed := env.Payload[len(env.Payload)-1]
	info := &DeviceInfo{
		DeviceID: env.Device,
		Command:  env.Command,
		Data:     append([]byte(nil), body[rolandAddressLen:]...),
		Valid:    verifyChecksum(body, claimed),
	}
	copy(info.Address[:], body[:rolandAddressLen])
	return info, nil
}

// decodeNameField cuts the ASCII run at the first NUL.
func decodeNameField(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// encodeNameField pads or truncates a name to the fixed wire width.
func encodeNameField(name string) []byte {
	field := make([]byte, nameFieldWidth)
	copy(field, name)
	return field
}

// Device-side frame constructors. The hardware is the only real producer of
// these frames; they exist for offline fixtures and the protocol tests.

func buildNameResponse(device byte, name string, category byte) []byte {
	payload := append(encodeNameField(name), category)
	return buildArturiaFrame(device, respNameDump, payload)
}

func buildDumpAckResponse(device byte, bank, preset int) []byte {
	return buildArturiaFrame(device, respDumpAck, []byte{byte(bank), byte(preset)})
}

func buildChunkResponseFrame(device byte, index int, data []byte) []byte {
	payload := make([]byte, 0, 2+chunkSize)
	payload = append(payload, byte(index>>7), byte(index&0x7F))
	payload = append(payload, data...)
	return buildArturiaFrame(device, respChunkA, payload)
}

func buildDeviceInfoResponse(device byte, addr [4]byte, data []byte) []byte {
	body := append(append([]byte(nil), addr[:]...), data...)
	payload := append(body, checksum(body))
	return buildRolandFrame(device, cmdDataSet, payload)
}

// The MicroFreak's closed category list. Indices past the end are reported
// as Unknown, never as an error.
var categoryNames = []string{
	"Bass",
	"Brass",
	"Keys",
	"Lead",
	"Organ",
	"Pad",
	"Percussion",
	"Sequence",
	"SFX",
	"Strings",
	"Template",
}

func categoryName(index byte) string {
	if int(index) < len(categoryNames) {
		return categoryNames[index]
	}
	return "Unknown"
}
