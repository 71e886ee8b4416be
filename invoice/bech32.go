package invoice

import (
	"fmt"
	"strings"
)

// bech32 primitives as used by BOLT11 payment requests. Unlike
// address-style bech32 there is no 90-character ceiling: invoices
// routinely exceed it.

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

// bech32Decode splits and checksum-verifies a bech32 string, returning
// the human-readable part and the 5-bit data words (checksum stripped).
func bech32Decode(s string) (string, []byte, error) {
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("mixed case")
	}
	s = strings.ToLower(s)

	pos := strings.LastIndex(s, "1")
	if pos < 1 || pos+7 > len(s) {
		return "", nil, fmt.Errorf("missing separator")
	}
	hrp := s[:pos]
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", nil, fmt.Errorf("invalid character in human-readable part")
		}
	}

	data := make([]byte, 0, len(s)-pos-1)
	for i := pos + 1; i < len(s); i++ {
		v := strings.IndexByte(charset, s[i])
		if v < 0 {
			return "", nil, fmt.Errorf("invalid data character %q", s[i])
		}
		data = append(data, byte(v))
	}

	if polymod(append(hrpExpand(hrp), data...)) != 1 {
		return "", nil, fmt.Errorf("bad checksum")
	}
	return hrp, data[:len(data)-6], nil
}

// convertBits regroups data between bit widths, most significant bits
// first. With pad set, a final partial group is zero-filled; without
// it, leftover bits must be zero padding of at most one group.
func convertBits(data []byte, frombits, tobits uint, pad bool) ([]byte, error) {
	var acc, bits uint32
	maxv := uint32(1)<<tobits - 1
	out := make([]byte, 0, len(data)*int(frombits)/int(tobits)+1)
	for _, v := range data {
		if uint32(v)>>frombits != 0 {
			return nil, fmt.Errorf("value %d exceeds %d bits", v, frombits)
		}
		acc = acc<<frombits | uint32(v)
		bits += uint32(frombits)
		for bits >= uint32(tobits) {
			bits -= uint32(tobits)
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(uint32(tobits)-bits)&maxv))
		}
	} else if bits >= uint32(frombits) || acc<<(uint32(tobits)-bits)&maxv != 0 {
		return nil, fmt.Errorf("invalid padding")
	}
	return out, nil
}
