package main

import (
	"fmt"
	"log"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Transport is the narrow contract the orchestrator needs from a MIDI
// endpoint. The transport delivers whole frames already delimited by the
// SysEx start/end markers; no reassembly happens above it.
type Transport interface {
	Open() error
	Close() error
	Send(data []byte) error
	Listen(fn func(frame []byte)) (stop func(), err error)
}

type midiTransport struct {
	in  drivers.In
	out drivers.Out
}

// openMicroFreak locates the in/out ports whose names contain nameHint and
// opens the output. The returned closer tears both down.
func openMicroFreak(nameHint string) (*midiTransport, func(), error) {
	outIdx, err := findOutPort(nameHint)
	if err != nil {
		return nil, nil, err
	}
	inIdx, err := findInPort(nameHint)
	if err != nil {
		return nil, nil, err
	}

	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, err
	}
	if outIdx < 0 || outIdx >= len(outs) {
		return nil, nil, fmt.Errorf("output port index %d out of range", outIdx)
	}
	out := outs[outIdx]
	if err := out.Open(); err != nil {
		return nil, nil, err
	}

	closer := func() {
		_ = out.Close()
		drivers.Close()
	}
	log.Println("Opened MicroFreak MIDI ports:", out.String())
	return &midiTransport{
		in:  midi.GetInPorts()[inIdx],
		out: out,
	}, closer, nil
}

func (t *midiTransport) Open() error {
	if t.out.IsOpen() {
		return nil
	}
	return t.out.Open()
}

func (t *midiTransport) Close() error {
	return t.out.Close()
}

func (t *midiTransport) Send(data []byte) error {
	if !t.out.IsOpen() {
		if err := t.out.Open(); err != nil {
			return err
		}
	}
	return t.out.Send(data)
}

// Listen registers a SysEx frame callback on the input port. Non-SysEx
// traffic never reaches the orchestrator.
func (t *midiTransport) Listen(fn func(frame []byte)) (func(), error) {
	return midi.ListenTo(t.in, func(msg midi.Message, _ int32) {
		if len(msg) > 0 && msg[0] == sysExStart {
			fn(append([]byte(nil), msg...))
		}
	}, midi.UseSysEx(), midi.SysExBufferSize(4096))
}

func findOutPort(nameFragment string) (int, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return -1, fmt.Errorf("no MIDI outputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out.Number(), nil
		}
	}

	return -1, fmt.Errorf("no MIDI output contains %q", nameFragment)
}

func findInPort(nameFragment string) (int, error) {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		return -1, fmt.Errorf("no MIDI inputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), lower) {
			return in.Number(), nil
		}
	}

	return -1, fmt.Errorf("no MIDI input contains %q", nameFragment)
}
