package main

// checksum computes the 7-bit additive checksum used by the Roland-style
// dialect: the sum of the covered span plus the checksum byte must be zero
// mod 128. An empty span checksums to 0.
func checksum(data []byte) byte {
	sum := 0
	for _, b := range data {
		sum += int(b)
	}
	return byte((128 - sum%128) % 128)
}

func verifyChecksum(data []byte, claimed byte) bool {
	return checksum(data) == claimed
}
