package main

import "fmt"

// Command bytes of the Arturia dialect. Discovered by watching the official
// editor talk to the hardware; the write-path commands are known but the
// firmware's acceptance rules for them are not, so nothing here issues them.
const (
	cmdNameRequest  byte = 0x19
	cmdDumpRequest  byte = 0x21
	cmdChunkRequest byte = 0x18

	respNameDump byte = 0x52
	respDumpAck  byte = 0x23
	respChunkA   byte = 0x16
	respChunkB   byte = 0x17
)

// Roland dialect commands (RQ1 requests a span, DT1 carries one).
const (
	cmdDataRequest byte = 0x11
	cmdDataSet     byte = 0x12
)

const (
	slotCount = 256
	bankSize  = 128

	maxChunkIndex = fullChunkCount - 1
)

// splitSlot derives bank and preset number from a flat slot index.
func splitSlot(slot int) (bank, preset int, err error) {
	if slot < 0 || slot >= slotCount {
		return 0, 0, fmt.Errorf("%w: slot %d not in 0..%d", ErrBadArgument, slot, slotCount-1)
	}
	return slot / bankSize, slot % bankSize, nil
}

func checkBankPreset(bank, preset int) error {
	if bank != 0 && bank != 1 {
		return fmt.Errorf("%w: bank %d not in 0..1", ErrBadArgument, bank)
	}
	if preset < 0 || preset >= bankSize {
		return fmt.Errorf("%w: preset %d not in 0..%d", ErrBadArgument, preset, bankSize-1)
	}
	return nil
}

// buildNameRequest asks for the name and category of one slot. seqTag selects
// the name table (0 = preset, 1 = sequence) and must stay 7-bit clean.
func buildNameRequest(device byte, bank, preset int, seqTag byte) ([]byte, error) {
	if err := checkBankPreset(bank, preset); err != nil {
		return nil, err
	}
	if seqTag > 0x7F {
		return nil, fmt.Errorf("%w: sequence tag 0x%02X exceeds 7 bits", ErrBadArgument, seqTag)
	}
	return buildArturiaFrame(device, cmdNameRequest, []byte{byte(bank), byte(preset), seqTag}), nil
}

// buildDumpRequest tells the device to stage one slot for chunked readout.
func buildDumpRequest(device byte, bank, preset int) ([]byte, error) {
	if err := checkBankPreset(bank, preset); err != nil {
		return nil, err
	}
	return buildArturiaFrame(device, cmdDumpRequest, []byte{byte(bank), byte(preset)}), nil
}

// buildChunkRequest asks for one 32-byte chunk of the staged slot. The index
// is split across two 7-bit bytes because valid indices exceed 127.
func buildChunkRequest(device byte, index int) ([]byte, error) {
	if index < 0 || index > maxChunkIndex {
		return nil, fmt.Errorf("%w: chunk index %d not in 0..%d", ErrBadArgument, index, maxChunkIndex)
	}
	return buildArturiaFrame(device, cmdChunkRequest, []byte{byte(index >> 7), byte(index & 0x7F)}), nil
}

// buildDeviceInfoRequest builds a Roland-style RQ1 for a register span.
// This dialect carries a trailing checksum over address plus size.
func buildDeviceInfoRequest(device byte, addr [4]byte, size byte) ([]byte, error) {
	for i, b := range addr {
		if b > 0x7F {
			return nil, fmt.Errorf("%w: address byte %d is 0x%02X, exceeds 7 bits", ErrBadArgument, i, b)
		}
	}
	if size > 0x7F {
		return nil, fmt.Errorf("%w: size 0x%02X exceeds 7 bits", ErrBadArgument, size)
	}
	body := append(append([]byte(nil), addr[:]...), size)
	payload := append(body, checksum(body))
	return buildRolandFrame(device, cmdDataRequest, payload), nil
}
