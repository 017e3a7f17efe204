package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const (
	// The MicroFreak receives on channel 1 out of the box.
	microFreakChannel uint8 = 0
	nameHint                = "microfreak"
)

func main() {
	if len(os.Args) < 2 {
		log.Println("exiting: no command specified (mcp | scan | get | empty | info | play | decode)")
		return
	}

	// Offline commands need no ports at all.
	if os.Args[1] == "decode" {
		decodeFile(os.Args[2:])
		return
	}

	log.Println("Available MIDI outputs:")
	log.Print(midi.GetOutPorts().String())

	transport, closer, err := openMicroFreak(nameHint)
	if err != nil {
		log.Fatalf("could not open MicroFreak MIDI ports: %v", err)
	}
	defer closer()

	session := NewSession(transport)

	switch os.Args[1] {
	case "mcp":
		runMCP(session, transport, microFreakChannel)
	case "scan":
		scanPresets(session)
	case "get":
		getPreset(session, os.Args[2:])
	case "empty":
		findEmpty(session)
	case "info":
		readInfo(session, os.Args[2:])
	case "play":
		if err := playTestNotes(transport, microFreakChannel); err != nil {
			log.Fatalf("failed to play test notes: %v", err)
		}
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func scanPresets(session *Session) {
	report, err := session.Scan(0, slotCount-1)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}
	printJSON(report)
}

// getPreset reads one slot at full depth and prints it; an optional second
// argument saves the raw chunks to a file for offline decoding.
func getPreset(session *Session, args []string) {
	if len(args) < 1 {
		log.Fatal("usage: get <slot> [dump-file]")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatalf("invalid slot %q: %v", args[0], err)
	}

	dump, err := session.ReadPreset(slot, fullChunkCount)
	if err != nil {
		log.Fatalf("failed to read preset: %v", err)
	}
	log.Println("Preset name", dump.Name)

	if len(args) > 1 {
		if err := SaveDump(args[1], dump); err != nil {
			log.Fatalf("failed to save dump: %v", err)
		}
		log.Printf("Saved %d chunks to %s", len(dump.Chunks), args[1])
	}

	steps, err := dump.SequenceSteps()
	if err != nil {
		log.Fatalf("failed to decode sequence: %v", err)
	}
	printJSON(struct {
		*RawDump
		Steps []SequenceStep `json:"steps"`
	}{dump, steps})
}

func findEmpty(session *Session) {
	empty, err := session.FindEmptySlots(0, slotCount-1)
	if err != nil {
		log.Fatalf("failed to find empty slots: %v", err)
	}
	printJSON(empty)
}

func readInfo(session *Session, args []string) {
	// The identity span answers on every unit seen so far.
	addr := [4]byte{0x05, 0x00, 0x00, 0x00}
	size := byte(0x40)
	if len(args) >= 1 {
		parsed, err := parseAddress(args[0])
		if err != nil {
			log.Fatalf("invalid address: %v", err)
		}
		addr = parsed
	}

	info, err := session.ReadDeviceInfo(addr, size)
	if err != nil {
		log.Fatalf("failed to read device info: %v", err)
	}
	printJSON(info)
}

// decodeFile decodes a dump saved by the get command, without hardware.
func decodeFile(args []string) {
	if len(args) < 1 {
		log.Fatal("usage: decode <dump-file>")
	}
	chunks, err := LoadChunks(args[0])
	if err != nil {
		log.Fatalf("failed to load dump: %v", err)
	}
	if len(chunks) != fullChunkCount {
		log.Fatalf("dump holds %d chunks; only full %d-chunk dumps carry a sequence", len(chunks), fullChunkCount)
	}
	steps, err := DecodeSequence(chunks[seqStepStart : seqStepStart+seqStepCount])
	if err != nil {
		log.Fatalf("failed to decode sequence: %v", err)
	}
	log.Printf("Firmware %q, format supported: %v", firmwareVersion(chunks), formatSupported(chunks))
	printJSON(steps)
}

func printJSON(v any) {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal to JSON: %v", err)
	}
	fmt.Println(string(asJson))
}
