// The testdata package contains RTCM3 message frames used by the unit
// tests of the decoder and the message type packages.  Each frame is a
// complete message frame - a 3-byte leader, the embedded message and a
// 3-byte CRC.  The CRC values were computed with an independent
// CRC-24Q implementation, so the frames double as golden vectors for
// the MSB-first bit packing and for the CRC check.
package testdata

// MessageFrame1005 contains a message type 1005: station 1234, ITRF
// year 7, flag bits 1010, ECEF coordinates (12345678, -23456789,
// 34567890) in tenth-millimetre units, flag fields 1 and 10.
var MessageFrame1005 = []byte{
	0xd3, 0x00, 0x13, 0x3e, 0xd4, 0xd2, 0x1e, 0x80, 0x00, 0xbc, 0x61, 0x4e,
	0x7f, 0xfe, 0x9a, 0x13, 0xeb, 0x80, 0x02, 0x0f, 0x76, 0xd2, 0x69, 0x77,
	0xcc,
}

// MessageFrame1006 contains a message type 1006 - the same values as
// MessageFrame1005 plus an antenna height of 1537 (0.1537 m).
var MessageFrame1006 = []byte{
	0xd3, 0x00, 0x15, 0x3e, 0xe4, 0xd2, 0x1e, 0x80, 0x00, 0xbc, 0x61, 0x4e,
	0x7f, 0xfe, 0x9a, 0x13, 0xeb, 0x80, 0x02, 0x0f, 0x76, 0xd2, 0x06, 0x01,
	0xf6, 0x1e, 0x83,
}

// MessageFrame1002 contains a message type 1002: station 1234, epoch
// time 432000000 ms, synchronous flag set, smoothing interval 3 and
// two satellite records:
//
//	id 4, code 0, pseudorange 1165432, phase range delta -98765,
//	    lock 25, ambiguity 7, CNR 180
//	id 17, code 1, pseudorange 2097151, phase range delta 45678,
//	    lock 100, ambiguity 12, CNR 200
var MessageFrame1002 = []byte{
	0xd3, 0x00, 0x1b, 0x3e, 0xa4, 0xd2, 0x66, 0xff, 0x30, 0x02, 0x23, 0x10,
	0x23, 0x90, 0xf1, 0xcf, 0xc6, 0x66, 0x41, 0xed, 0x11, 0x8f, 0xff, 0xff,
	0x85, 0x93, 0x76, 0x40, 0xcc, 0x80, 0x9a, 0x0f, 0xb9,
}

// MessageFrame1010 contains a message type 1010: station 1234, epoch
// time 72000000 ms, smoothing indicator set, smoothing interval 4 and
// two satellite records:
//
//	id 3, code 0, channel 9, pseudorange 2345678, phase range delta
//	    -54321, lock 42, ambiguity 5, CNR 160
//	id 22, code 1, channel 13, pseudorange 33554431, phase range delta
//	    98765, lock 127, ambiguity 99, CNR 210
var MessageFrame1010 = []byte{
	0xd3, 0x00, 0x1c, 0x3f, 0x24, 0xd2, 0x89, 0x54, 0x40, 0x01, 0x60, 0x64,
	0x88, 0xf2, 0xb3, 0xbc, 0xaf, 0x3d, 0x50, 0x5a, 0x05, 0xad, 0xff, 0xff,
	0xff, 0x8c, 0x0e, 0x6f, 0xfc, 0x7a, 0x40, 0x8f, 0x25, 0x33,
}

// MessageFrame1029 contains a message type 1029: station 1234,
// modified julian day 60431, second of day 55260, 10 characters in 10
// code units, text "STATION OK".
var MessageFrame1029 = []byte{
	0xd3, 0x00, 0x13, 0x40, 0x54, 0xd2, 0xec, 0x0f, 0x6b, 0xee, 0x0a, 0x0a,
	0x53, 0x54, 0x41, 0x54, 0x49, 0x4f, 0x4e, 0x20, 0x4f, 0x4b, 0x67, 0xff,
	0xba,
}

// MessageFrame1033 contains a message type 1033: station 1234, antenna
// "ADVNULLANTENNA", setup ID 3, antenna serial "123456", receiver
// "GEN RECEIVER", firmware "1.2.3", receiver serial "SN98765".
var MessageFrame1033 = []byte{
	0xd3, 0x00, 0x35, 0x40, 0x94, 0xd2, 0x0e, 0x41, 0x44, 0x56, 0x4e, 0x55,
	0x4c, 0x4c, 0x41, 0x4e, 0x54, 0x45, 0x4e, 0x4e, 0x41, 0x03, 0x06, 0x31,
	0x32, 0x33, 0x34, 0x35, 0x36, 0x0c, 0x47, 0x45, 0x4e, 0x20, 0x52, 0x45,
	0x43, 0x45, 0x49, 0x56, 0x45, 0x52, 0x05, 0x31, 0x2e, 0x32, 0x2e, 0x33,
	0x07, 0x53, 0x4e, 0x39, 0x38, 0x37, 0x36, 0x35, 0x6d, 0x31, 0x3e,
}

// MessageFrame1029BadCount is MessageFrame1029 with the code unit
// count field set to 200 and the CRC recomputed to match, so the frame
// passes the CRC check but the counted text runs past the end of the
// message.
var MessageFrame1029BadCount = []byte{
	0xd3, 0x00, 0x13, 0x40, 0x54, 0xd2, 0xec, 0x0f, 0x6b, 0xee, 0x0a, 0xc8,
	0x53, 0x54, 0x41, 0x54, 0x49, 0x4f, 0x4e, 0x20, 0x4f, 0x4b, 0xc2, 0x90,
	0xa9,
}

// MessageFrameUnknownType contains a valid frame whose message type
// (1019) is not in the structured catalog, so the decoder should carry
// it as an opaque payload.
var MessageFrameUnknownType = []byte{
	0xd3, 0x00, 0x07, 0x3f, 0xb5, 0xa5, 0xde, 0xad, 0xbe, 0xef, 0x0e, 0x8f,
	0x8f,
}

// Junk is a run of bytes with no frame delimiter in it.
var Junk = []byte{'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd'}

// JunkWithFalseStart is a run of bytes containing a 0xd3 byte that is
// not the start of a valid frame.
var JunkWithFalseStart = []byte{0x01, 0xd3, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
