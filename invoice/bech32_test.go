package invoice

import (
	"bytes"
	"strings"
	"testing"
)

// bech32Encode is the test-side counterpart of bech32Decode, used to
// build synthetic invoices.
func bech32Encode(hrp string, data []byte) string {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ 1

	var b strings.Builder
	b.WriteString(hrp)
	b.WriteByte('1')
	for _, v := range data {
		b.WriteByte(charset[v])
	}
	for i := 0; i < 6; i++ {
		b.WriteByte(charset[mod>>uint(5*(5-i))&31])
	}
	return b.String()
}

func TestBech32RoundTrip(t *testing.T) {
	cases := []struct {
		hrp  string
		data []byte
	}{
		{"lnbc", []byte{0, 1, 2, 3, 4, 5, 6, 7}},
		{"lnbc2500u", []byte{31, 31, 31}},
		{"a", []byte{}},
		// Longer than the 90 chars classical bech32 allows.
		{"lntb", bytes.Repeat([]byte{7, 21}, 80)},
	}

	for _, c := range cases {
		encoded := bech32Encode(c.hrp, c.data)
		hrp, data, err := bech32Decode(encoded)
		if err != nil {
			t.Fatalf("%q: decode failed: %v", encoded, err)
		}
		if hrp != c.hrp {
			t.Errorf("hrp mismatch: %q != %q", hrp, c.hrp)
		}
		if !bytes.Equal(data, c.data) {
			t.Errorf("data mismatch for hrp %q", c.hrp)
		}
	}
}

func TestBech32DecodeRejects(t *testing.T) {
	good := bech32Encode("lnbc", []byte{1, 2, 3})

	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no_separator", "lnbcqqqqqq"},
		{"mixed_case", "lnbc1" + strings.ToUpper(good[5:])},
		{"bad_checksum", good[:len(good)-1] + "x"},
		{"invalid_data_char", "lnbc1bbbbbbb"},
		{"corrupted_payload", flipDataChar(good)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, err := bech32Decode(c.in); err == nil {
				t.Errorf("expected decode of %q to fail", c.in)
			}
		})
	}
}

// flipDataChar swaps one payload character for a different charset
// character, which must break the checksum.
func flipDataChar(s string) string {
	b := []byte(s)
	i := len(b) - 8
	if b[i] == charset[0] {
		b[i] = charset[1]
	} else {
		b[i] = charset[0]
	}
	return string(b)
}

func TestConvertBits(t *testing.T) {
	// 8→5→8 round trip.
	in := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x42}
	words, err := convertBits(in, 8, 5, true)
	if err != nil {
		t.Fatalf("8→5: %v", err)
	}
	back, err := convertBits(words, 5, 8, true)
	if err != nil {
		t.Fatalf("5→8: %v", err)
	}
	if !bytes.Equal(back[:len(in)], in) {
		t.Errorf("round trip mismatch: %x != %x", back[:len(in)], in)
	}

	// Out-of-range source value.
	if _, err := convertBits([]byte{32}, 5, 8, true); err == nil {
		t.Error("expected error for 5-bit value 32")
	}

	// Unpadded conversion with non-zero leftovers must fail.
	if _, err := convertBits([]byte{1}, 5, 8, false); err == nil {
		t.Error("expected error for non-zero padding")
	}
}
