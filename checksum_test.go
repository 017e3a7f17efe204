package main

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestChecksumKnownVector(t *testing.T) {
	got := checksum([]byte{0x05, 0x00, 0x00, 0x00, 0x40})
	if got != 0x3B {
		t.Errorf("checksum = 0x%02X, want 0x3B", got)
	}
}

func TestChecksumEmpty(t *testing.T) {
	if got := checksum(nil); got != 0 {
		t.Errorf("checksum(nil) = 0x%02X, want 0", got)
	}
	if got := checksum([]byte{}); got != 0 {
		t.Errorf("checksum(empty) = 0x%02X, want 0", got)
	}
}

func TestChecksumProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("verify accepts the computed checksum", prop.ForAll(
		func(data []byte) bool {
			return verifyChecksum(data, checksum(data))
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("data plus checksum sums to zero mod 128", prop.ForAll(
		func(data []byte) bool {
			sum := int(checksum(data))
			for _, b := range data {
				sum += int(b)
			}
			return sum%128 == 0
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
