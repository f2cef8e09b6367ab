package bitstream

import (
	"strings"
	"testing"
)

// TestUint checks that Uint extracts MSB-first bit fields that span
// byte boundaries.  The test buffer is a real RTCM3 frame leader plus
// the first two bytes of an embedded type 1005 message, so the
// expected values are an authoritative worked example: the delimiter
// byte, the six reserved bits, the 10-bit length and the 12-bit
// message type.
func TestUint(t *testing.T) {
	buffer := []byte{0xd3, 0x00, 0x13, 0x3e, 0xd4}

	var testData = []struct {
		description string
		length      uint
		want        uint64
	}{
		{"delimiter", 8, 0xd3},
		{"reserved bits", 6, 0},
		{"frame length", 10, 19},
		{"message type", 12, 1005},
	}

	reader := New(buffer)

	for _, td := range testData {
		got, err := reader.Uint(td.length)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", td.description, err)
		}
		if got != td.want {
			t.Errorf("%s: want %d got %d", td.description, td.want, got)
		}
	}

	if reader.Pos() != 36 {
		t.Errorf("want cursor at 36, got %d", reader.Pos())
	}
	if reader.Remaining() != 4 {
		t.Errorf("want 4 bits remaining, got %d", reader.Remaining())
	}
}

// TestInt checks two's-complement extraction of signed fields over the
// field's own width.
func TestInt(t *testing.T) {
	var testData = []struct {
		description string
		buffer      []byte
		skip        uint
		length      uint
		want        int64
	}{
		// 0xe6 is 1110 0110 - the top four bits are -2 in 4-bit
		// two's complement.
		{"small negative", []byte{0xe6}, 0, 4, -2},
		{"small positive", []byte{0xe6}, 4, 4, 6},
		// A 38-bit field holding -23456789, the Y coordinate of the
		// type 1005 test message.
		{"38-bit negative", []byte{0xff, 0xfa, 0x68, 0x4f, 0xac}, 0, 38, -23456789},
		{"all ones", []byte{0xff}, 0, 8, -1},
		{"most negative", []byte{0x80}, 0, 8, -128},
	}

	for _, td := range testData {
		reader := New(td.buffer)
		if td.skip > 0 {
			if err := reader.Skip(td.skip); err != nil {
				t.Fatalf("%s: unexpected error %v", td.description, err)
			}
		}
		got, err := reader.Int(td.length)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", td.description, err)
		}
		if got != td.want {
			t.Errorf("%s: want %d got %d", td.description, td.want, got)
		}
	}
}

// TestChars checks character runs, including a run that is not aligned
// on a byte boundary.
func TestChars(t *testing.T) {
	// Aligned - "AB".
	reader := New([]byte{0x41, 0x42})
	got, err := reader.Chars(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AB" {
		t.Errorf("want AB got %s", got)
	}

	// "AB" again, but shifted four bits into the buffer.
	reader = New([]byte{0x04, 0x14, 0x20})
	if err := reader.Skip(4); err != nil {
		t.Fatal(err)
	}
	got, err = reader.Chars(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AB" {
		t.Errorf("want AB got %s", got)
	}
	if reader.Pos() != 20 {
		t.Errorf("want cursor at 20, got %d", reader.Pos())
	}
}

// TestOutOfRange checks that a read past the end of the buffer fails
// and leaves the cursor untouched.
func TestOutOfRange(t *testing.T) {
	reader := New([]byte{0x01, 0x02})

	if _, err := reader.Uint(10); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	// Only 6 bits are left.
	_, err := reader.Uint(7)
	if err == nil {
		t.Fatal("expected an out of range error")
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("want an out of range error, got %v", err)
	}
	if reader.Pos() != 10 {
		t.Errorf("want cursor still at 10, got %d", reader.Pos())
	}

	if _, err := reader.Int(65); err == nil {
		t.Error("expected an error for a 65-bit signed read")
	}
	if _, err := reader.Chars(1); err == nil {
		t.Error("expected an error - only six bits left")
	}

	// The remaining six bits are still readable.
	got, err := reader.Uint(6)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != 2 {
		t.Errorf("want 2 got %d", got)
	}
}

// TestEmptyBuffer checks that a reader over an empty buffer fails on
// the first read rather than panicking.
func TestEmptyBuffer(t *testing.T) {
	reader := New(nil)
	if reader.Remaining() != 0 {
		t.Errorf("want 0 bits remaining, got %d", reader.Remaining())
	}
	if _, err := reader.Uint(1); err == nil {
		t.Error("expected an out of range error")
	}
}
