package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed microfreak_sysex_notes.txt
var sysexNotes string

func runMCP(session *Session, transport *midiTransport, channel uint8) {

	s := server.NewMCPServer(
		"MicroFreak MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("microfreak_describe-sysex",
		mcp.WithDescription("Returns the reverse-engineered SysEx protocol notes for the MicroFreak."),
	)
	s.AddTool(docTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling SysEx documentation request.")
		return mcp.NewToolResultText(sysexNotes), nil
	})

	getPresetTool := mcp.NewTool("microfreak_get-preset",
		mcp.WithDescription("Reads one preset slot from the MicroFreak. Depth 'metadata' reads the preset header, 'preset' the engine parameters, 'full' also the sequence."),
		mcp.WithNumber("slot", mcp.Required(), mcp.Description("The slot number (0-255).")),
		mcp.WithString("depth", mcp.Description("Read depth: metadata, preset or full. Defaults to metadata.")),
	)
	s.AddTool(getPresetTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling get preset request.")

		slot, err := request.RequireInt("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		chunkCount, err := chunkCountForDepth(request.GetString("depth", "metadata"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dump, err := session.ReadPreset(slot, chunkCount)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset: %v", err)
		}

		result := struct {
			*RawDump
			ChunkCount int            `json:"chunk_count"`
			Steps      []SequenceStep `json:"steps,omitempty"`
		}{RawDump: dump, ChunkCount: len(dump.Chunks)}
		if chunkCount == fullChunkCount {
			steps, err := dump.SequenceSteps()
			if err != nil {
				return nil, fmt.Errorf("failed to decode sequence: %v", err)
			}
			result.Steps = steps
		}

		asJson, err := json.MarshalIndent(&result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal preset to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	scanTool := mcp.NewTool("microfreak_scan-presets",
		mcp.WithDescription("Scans a slot range for preset names and categories. One exchange per slot; a full 256-slot scan takes about a minute."),
		mcp.WithNumber("from", mcp.Description("First slot (default 0).")),
		mcp.WithNumber("to", mcp.Description("Last slot (default 255).")),
	)
	s.AddTool(scanTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling scan request.")

		first := request.GetInt("from", 0)
		last := request.GetInt("to", slotCount-1)

		report, err := session.Scan(first, last)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		asJson, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal scan report to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	emptyTool := mcp.NewTool("microfreak_find-empty-slots",
		mcp.WithDescription("Scans a slot range and returns the slots that look empty. Same per-slot cost as a scan."),
		mcp.WithNumber("from", mcp.Description("First slot (default 0).")),
		mcp.WithNumber("to", mcp.Description("Last slot (default 255).")),
	)
	s.AddTool(emptyTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling find empty slots request.")

		first := request.GetInt("from", 0)
		last := request.GetInt("to", slotCount-1)

		empty, err := session.FindEmptySlots(first, last)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		asJson, err := json.Marshal(empty)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal slot list to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	decodeTool := mcp.NewTool("microfreak_decode-sequence",
		mcp.WithDescription("Performs a full read of one slot and returns the decoded sequencer steps."),
		mcp.WithNumber("slot", mcp.Required(), mcp.Description("The slot number (0-255).")),
	)
	s.AddTool(decodeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling decode sequence request.")

		slot, err := request.RequireInt("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dump, err := session.ReadPreset(slot, fullChunkCount)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset: %v", err)
		}
		steps, err := dump.SequenceSteps()
		if err != nil {
			return nil, fmt.Errorf("failed to decode sequence: %v", err)
		}
		asJson, err := json.MarshalIndent(steps, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal steps to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	infoTool := mcp.NewTool("microfreak_read-device-info",
		mcp.WithDescription("Reads a register span through the Roland-style device-info dialect."),
		mcp.WithString("address", mcp.Required(), mcp.Description("Four space-separated hex bytes, e.g. '05 00 00 00'.")),
		mcp.WithNumber("size", mcp.Required(), mcp.Description("Expected span size in bytes (0-127).")),
	)
	s.AddTool(infoTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling device info request.")

		addrText, err := request.RequireString("address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		size, err := request.RequireInt("size")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		addr, err := parseAddress(addrText)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if size < 0 || size > 0x7F {
			return mcp.NewToolResultError(fmt.Sprintf("size %d not in 0..127", size)), nil
		}

		info, err := session.ReadDeviceInfo(addr, byte(size))
		if err != nil {
			return nil, fmt.Errorf("failed to read device info: %v", err)
		}
		asJson, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal device info to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	playNotesTool := mcp.NewTool("microfreak_play-test-notes",
		mcp.WithDescription("Plays a short arpeggio on the MicroFreak so a listener can confirm the connection."),
	)
	s.AddTool(playNotesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := playTestNotes(transport, channel); err != nil {
			return nil, fmt.Errorf("failed to play test notes: %v", err)
		}
		return mcp.NewToolResultText("Test notes played successfully."), nil
	})

	playTextTool := mcp.NewTool("microfreak_play-notes",
		mcp.WithDescription("Plays a note sequence on the MicroFreak, e.g. 'C4 E4 G4 r Bb3'."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Whitespace-separated note names; 'r' is a rest.")),
	)
	s.AddTool(playTextTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		notes, err := request.RequireString("notes")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := playNotesFromText(transport, channel, notes); err != nil {
			return nil, fmt.Errorf("failed to play notes: %v", err)
		}
		return mcp.NewToolResultText("Notes played successfully."), nil
	})

	log.Println("Starting MicroFreak MCP server...")

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}
}

func chunkCountForDepth(depth string) (int, error) {
	switch strings.ToLower(depth) {
	case "metadata":
		return metadataChunkCount, nil
	case "preset":
		return presetChunkCount, nil
	case "full":
		return fullChunkCount, nil
	}
	return 0, fmt.Errorf("unknown depth %q (want metadata, preset or full)", depth)
}

func parseAddress(text string) ([4]byte, error) {
	var addr [4]byte
	fields := strings.Fields(text)
	if len(fields) != len(addr) {
		return addr, fmt.Errorf("address needs %d hex bytes, got %d", len(addr), len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return addr, fmt.Errorf("invalid address byte %q: %w", f, err)
		}
		addr[i] = byte(v)
	}
	return addr, nil
}
