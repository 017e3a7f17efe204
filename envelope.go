package main

import "bytes"

const (
	sysExStart byte = 0xF0
	sysExEnd   byte = 0xF7
)

// Arturia dialect, as spoken by the MicroFreak:
//
//	F0 00 20 6B <device> 01 <command> <payload...> F7
//
// The extended vendor ID is followed by a single device byte (0x07 for the
// MicroFreak family) and a fixed sub-header byte. No trailing checksum.
var arturiaVendorID = []byte{0x00, 0x20, 0x6B}

const (
	arturiaDeviceID  byte = 0x07
	arturiaSubHeader byte = 0x01

	arturiaHeaderLen = 7 // F0, vendor[3], device, sub-header, command
	arturiaMinLen    = arturiaHeaderLen + 1
)

// Roland dialect, used for the device-info address space:
//
//	F0 41 <device> 00 00 00 44 <command> <addr[4]> <data...> <sum> F7
//
// The single-byte vendor ID is followed by the device byte and a fixed
// 4-byte model identifier. The checksum covers address plus data.
const (
	rolandVendorID byte = 0x41
	rolandDeviceID byte = 0x10

	rolandHeaderLen = 8 // F0, vendor, device, model[4], command
	rolandMinLen    = rolandHeaderLen + rolandAddressLen + 1 + 1

	rolandAddressLen = 4
)

var rolandModelID = []byte{0x00, 0x00, 0x00, 0x44}

// envelope is the decoded outer frame of either dialect. Payload holds the
// bytes between the command byte and the trailing F7 (for the Roland dialect
// that includes address, data and checksum).
type envelope struct {
	Device  byte
	Command byte
	Payload []byte
}

func buildArturiaFrame(device, command byte, payload []byte) []byte {
	frame := make([]byte, 0, arturiaHeaderLen+len(payload)+1)
	frame = append(frame, sysExStart)
	frame = append(frame, arturiaVendorID...)
	frame = append(frame, device, arturiaSubHeader, command)
	frame = append(frame, payload...)
	return append(frame, sysExEnd)
}

func buildRolandFrame(device, command byte, payload []byte) []byte {
	frame := make([]byte, 0, rolandHeaderLen+len(payload)+1)
	frame = append(frame, sysExStart, rolandVendorID, device)
	frame = append(frame, rolandModelID...)
	frame = append(frame, command)
	frame = append(frame, payload...)
	return append(frame, sysExEnd)
}

// parseArturiaFrame is the single choke point for inbound Arturia frames.
// It never panics; a frame that is too short, not F0/F7 delimited, or not
// carrying the expected vendor bytes reports ok=false.
func parseArturiaFrame(frame []byte) (envelope, bool) {
	if len(frame) < arturiaMinLen {
		return envelope{}, false
	}
	if frame[0] != sysExStart || frame[len(frame)-1] != sysExEnd {
		return envelope{}, false
	}
	if !bytes.Equal(frame[1:4], arturiaVendorID) || frame[5] != arturiaSubHeader {
		return envelope{}, false
	}
	return envelope{
		Device:  frame[4],
		Command: frame[6],
		Payload: frame[7 : len(frame)-1],
	}, true
}

func parseRolandFrame(frame []byte) (envelope, bool) {
	if len(frame) < rolandMinLen {
		return envelope{}, false
	}
	if frame[0] != sysExStart || frame[len(frame)-1] != sysExEnd {
		return envelope{}, false
	}
	if frame[1] != rolandVendorID || !bytes.Equal(frame[3:7], rolandModelID) {
		return envelope{}, false
	}
	return envelope{
		Device:  frame[2],
		Command: frame[7],
		Payload: frame[8 : len(frame)-1],
	}, true
}
