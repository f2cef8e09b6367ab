// The bitstream package extracts bit fields from RTCM3 message frames.
// RTCM3 fields are packed MSB-first and may span byte boundaries
// arbitrarily, so the fields have to be assembled bit by bit.  The
// extraction logic follows RTKLIB's getbitu and getbits functions,
// which are the de-facto reference for the RTCM bit order.
package bitstream

import (
	"errors"
	"fmt"
)

// Reader extracts unsigned integers, signed integers and character
// runs from a byte buffer.  It owns a bit cursor which starts at zero
// and only ever moves forward.  A read that would run past the end of
// the buffer returns an error and leaves the cursor where it was.
type Reader struct {
	// buffer is the data being read.  The Reader does not copy or
	// modify it.
	buffer []byte

	// pos is the bit cursor - the position of the next bit to be read.
	pos uint
}

// New creates a Reader over the given buffer with the cursor at the
// first bit.
func New(buffer []byte) *Reader {
	reader := Reader{buffer: buffer}
	return &reader
}

// Pos returns the current bit position.
func (reader *Reader) Pos() uint {
	return reader.pos
}

// Remaining returns the number of unread bits.
func (reader *Reader) Remaining() uint {
	total := uint(len(reader.buffer)) * 8
	if reader.pos >= total {
		return 0
	}
	return total - reader.pos
}

// Skip advances the cursor over length bits without interpreting them.
func (reader *Reader) Skip(length uint) error {
	if err := reader.checkRange(length); err != nil {
		return err
	}
	reader.pos += length
	return nil
}

// Uint reads the next length bits (up to 64) as an unsigned integer
// and advances the cursor.
func (reader *Reader) Uint(length uint) (uint64, error) {
	if length > 64 {
		em := fmt.Sprintf("requested %d bits, maximum is 64", length)
		return 0, errors.New(em)
	}
	if err := reader.checkRange(length); err != nil {
		return 0, err
	}

	result := GetBitsAsUint64(reader.buffer, reader.pos, length)
	reader.pos += length
	return result, nil
}

// Int reads the next length bits as a two's-complement signed integer
// and advances the cursor.  The top bit of the field is the sign bit
// and a negative value is recovered over the field's own width, not
// the width of the host word.
func (reader *Reader) Int(length uint) (int64, error) {
	if length < 2 || length > 64 {
		em := fmt.Sprintf("requested %d bits, signed fields must be 2 to 64 bits", length)
		return 0, errors.New(em)
	}
	if err := reader.checkRange(length); err != nil {
		return 0, err
	}

	result := GetBitsAsInt64(reader.buffer, reader.pos, length)
	reader.pos += length
	return result, nil
}

// Chars reads the next byteCount bytes as a string and advances the
// cursor by 8*byteCount bits.  The characters need not be aligned on
// a byte boundary in the buffer.
func (reader *Reader) Chars(byteCount uint) (string, error) {
	if err := reader.checkRange(byteCount * 8); err != nil {
		return "", err
	}

	chars := make([]byte, 0, byteCount)
	for i := uint(0); i < byteCount; i++ {
		b := GetBitsAsUint64(reader.buffer, reader.pos, 8)
		reader.pos += 8
		chars = append(chars, byte(b))
	}
	return string(chars), nil
}

// checkRange returns an out of range error if a read of length bits
// would run past the end of the buffer.
func (reader *Reader) checkRange(length uint) error {
	end := reader.pos + length
	if end > uint(len(reader.buffer))*8 {
		em := fmt.Sprintf("out of range - reading %d bits at position %d exceeds the %d-bit buffer",
			length, reader.pos, len(reader.buffer)*8)
		return errors.New(em)
	}
	return nil
}

// GetBitsAsUint64 extracts length bits from a slice of bytes, starting
// at bit position pos and returns them as a uint64.  See RTKLIB's getbitu.
func GetBitsAsUint64(buff []byte, pos uint, length uint) uint64 {
	// The C version in RTKLIB is:
	//
	// extern unsigned int getbitu(const unsigned char *buff, int pos, int len)
	// {
	//     unsigned int bits=0;
	//     int i;
	//     for (i=pos;i<pos+len;i++) bits=(bits<<1)+((buff[i/8]>>(7-i%8))&1u);
	//     return bits;
	// }
	//
	const u64One uint64 = 1
	var result uint64 = 0
	for i := pos; i < pos+length; i++ {
		byteNumber := i / 8
		// Work on a 64-bit copy of the byte contents.
		var byteContents uint64 = uint64(buff[byteNumber])
		var shiftBy uint = 7 - i%8
		// Shift the contents down to put the desired bit at the bottom.
		b := byteContents >> shiftBy
		// Extract the bottom bit.
		bit := b & u64One
		// Shift the result up one bit and glue in the extracted bit.
		result = (result << 1) | uint64(bit)
	}
	return result
}

// GetBitsAsInt64 extracts length bits from a slice of bytes, starting at
// bit position pos, interprets the bits as a two's-complement integer and
// returns the result as a 64-bit signed int.  See RTKLIB's getbits.
func GetBitsAsInt64(buff []byte, pos uint, length uint) int64 {
	// This algorithm is a version of the Python code in
	//  https://en.wikipedia.org/wiki/Two%27s_complement,
	//
	// def twos_complement(input_value: int, num_bits: int) -> int:
	//     """Calculates a two's complement integer from the given input value's bits."""
	//     mask = 2 ** (num_bits - 1)
	//     return -(input_value & mask) + (input_value & ~mask)

	// If the first bit is a 1, the result is negative.
	negative := GetBitsAsUint64(buff, pos, 1) == 1
	// Get the whole bit string
	uval := GetBitsAsUint64(buff, pos, length)
	// If it's not negative, we're done.
	if negative {
		// It's negative.  Use the algorithm from the Wiki page.
		var mask uint64 = 2 << (length - 2)
		weightOfTopBit := int64(uval & mask)
		weightOfLowerBits := int64(uval & ^mask)
		return (-1 * weightOfTopBit) + weightOfLowerBits
	}

	return int64(uval)
}
