package handler

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gnss/bitstream"
	"github.com/goblimey/go-gnss/rtcm/pushback"
	"github.com/goblimey/go-gnss/rtcm/type1002"
	"github.com/goblimey/go-gnss/rtcm/type1005"
	"github.com/goblimey/go-gnss/rtcm/type1006"
	"github.com/goblimey/go-gnss/rtcm/type1010"
	"github.com/goblimey/go-gnss/rtcm/type1029"
	"github.com/goblimey/go-gnss/rtcm/type1033"
	"github.com/goblimey/go-gnss/rtcm/utils"

	"github.com/goblimey/go-crc24q/crc24q"
)

// The handler package decodes a stream of bytes containing RTCM3
// message frames, possibly interspersed with data in other formats
// (NMEA, UBX, line noise).  A valid RTCM3 message frame is a leader
// containing the start of message byte 0xd3 followed by six reserved
// bits which must be zero and a 10-bit message length, for example
// 0xd3, 0x00, 0x8a.  The variable-length message comes next and always
// starts with a 12-bit message type.  The message may be padded with
// zero bytes at the end.  The message frame then ends with a 3-byte
// Cyclic Redundancy Check value in CRC-24Q form.
//
// Encountering a 0xd3 byte doesn't guarantee the start of a message
// frame - we may just have blundered across one in the middle of some
// other binary data.  We only know that we have a frame when we have
// scanned and checked the CRC.  When a candidate frame fails any
// check, scanning resumes one byte further on, so a corrupted frame
// costs at most the data up to the next genuine frame.  Failures are
// recoverable and counted; they never stop the decode.
//
// Message types in the structured catalog (1002, 1005, 1006, 1010,
// 1029, 1033) are broken out into a readable form by the packages
// named after them.  A frame of any other type is carried with its
// payload left opaque - that's not a failure.
//
//	handler := handler.New(slog.LevelInfo)
//	messages := handler.DecodeAll(data)
//
// decodes a captured buffer.  For a live stream, run HandleMessages
// with a byte channel and drain the message channel:
//
//	go handler.HandleMessages(byteChan, messageChan)

// Handler decodes RTCM3 message frames and keeps counts of the
// outcomes.  Create one per decode run - the counters are per-run.
type Handler struct {
	// Successes is the number of valid messages decoded so far.
	Successes uint

	// Failures is the number of corrupt or malformed frames (and runs
	// of non-RTCM data) encountered so far.
	Failures uint

	// logLevel is a slog-style logging level.  It controls the data
	// that the String method of each message produces.
	logLevel slog.Level
}

// New creates a Handler.
func New(logLevel slog.Level) *Handler {
	handler := Handler{logLevel: logLevel}
	return &handler
}

// DecodeAll scans the given buffer and returns the valid messages in
// it, in order.  Corrupt frames and runs of non-RTCM data are counted
// in Failures and scanning continues at the next candidate delimiter.
// An empty buffer yields no messages and no failures.
func (handler *Handler) DecodeAll(data []byte) []*Message {

	messages := make([]*Message, 0)

	i := 0
	for i < len(data) {

		if data[i] != utils.StartOfMessageFrame {
			// Some non-RTCM data.  Skip to the next delimiter (or the
			// end of the buffer) and count the run as one failure.
			i = nextDelimiter(data, i+1)
			handler.Failures++
			continue
		}

		frameLength, frameError := checkFrame(data[i:])
		if frameError != nil {
			// A delimiter byte but not a valid frame - maybe a 0xd3 in
			// the middle of binary data, maybe a corrupted frame.
			// Consume one byte and rescan.
			handler.Failures++
			i = nextDelimiter(data, i+1)
			continue
		}

		frame := data[i : i+frameLength]
		message, messageError := handler.GetMessage(frame)
		if messageError != nil {
			// The CRC check passed but the embedded message is
			// malformed, for example a satellite count that needs more
			// bits than the message contains.  The frame boundary is
			// trustworthy, so skip the whole frame.
			handler.Failures++
			i += frameLength
			continue
		}

		handler.Successes++
		messages = append(messages, message)
		i += frameLength
	}

	return messages
}

// HandleMessages reads bytes from ch_in, decodes them and writes the
// valid messages to ch_out.  It runs until ch_in is closed and
// drained, then closes ch_out.  The caller is responsible for creating
// both channels.
func (handler *Handler) HandleMessages(ch_in chan byte, ch_out chan Message) {

	// Turn the input channel into a pushback channel - resynchronising
	// after a corrupt frame means replaying bytes we have already read.
	pb := pushback.New(ch_in)

	for {
		message, err := handler.FetchNextMessage(pb)
		if err != nil {
			// There is no more input.
			close(ch_out)
			return
		}

		ch_out <- *message
	}
}

// FetchNextMessage reads the byte stream until it has assembled the
// next valid message, counting any corrupt frames and non-RTCM data
// that it scans over.  It returns an error only when the stream is
// exhausted.
func (handler *Handler) FetchNextMessage(pc *pushback.ByteChannel) (*Message, error) {

	// After a failed candidate frame the tail of the frame is replayed
	// through the pushback channel.  Those bytes are part of a failure
	// that has already been counted, so the noise-eating phase must not
	// count them again.
	resyncing := false

	for {
		// Phase 1: eat bytes until we see the start of frame byte.
		// Anything eaten before it is non-RTCM data.
		sawNoise, eatError := eatUntilStartOfFrame(pc)
		if sawNoise && !resyncing {
			handler.Failures++
		}
		resyncing = false
		if eatError != nil {
			return nil, eatError
		}

		// Phase 2: read the rest of the leader and the first two bytes
		// of the embedded message, enough to know the frame length.
		frame := []byte{utils.StartOfMessageFrame}
		if !fetchBytes(pc, &frame, utils.LeaderLengthBytes+2-1) {
			// The input ran out mid-frame.  Count the fragment.
			handler.Failures++
			return nil, errors.New("done")
		}

		frameLength, leaderError := declaredFrameLength(frame)
		if leaderError != nil {
			// Not a frame leader after all.  Push everything after the
			// delimiter back and rescan one byte further on.
			handler.Failures++
			pc.PushBackAll(frame[1:])
			resyncing = true
			continue
		}

		// Phase 3: read the rest of the frame.
		if !fetchBytes(pc, &frame, frameLength-len(frame)) {
			handler.Failures++
			return nil, errors.New("done")
		}

		// Phase 4: check the CRC and decode.
		if crcError := CheckCRC(frame); crcError != nil {
			// Corrupt.  Resynchronise one byte further on.
			handler.Failures++
			pc.PushBackAll(frame[1:])
			resyncing = true
			continue
		}

		message, messageError := handler.GetMessage(frame)
		if messageError != nil {
			// CRC-valid but malformed inside.  The frame boundary is
			// trustworthy so don't replay the contents.
			handler.Failures++
			continue
		}

		handler.Successes++
		return message, nil
	}
}

// GetMessage extracts an RTCM3 message from the given message frame,
// which must have been scanned and CRC-checked already (DecodeAll and
// FetchNextMessage do this).  A message type outside the structured
// catalog yields a message with an opaque payload, not an error.
func (handler *Handler) GetMessage(frame []byte) (*Message, error) {

	if len(frame) == 0 {
		return nil, errors.New("zero length message frame")
	}

	messageType := int(bitstream.GetBitsAsUint64(frame, 24, 12))

	message := &Message{
		MessageType: messageType,
		RawData:     frame,
		LogLevel:    handler.logLevel,
	}

	analyseError := analyse(message)
	if analyseError != nil {
		return nil, analyseError
	}

	return message, nil
}

// nextDelimiter returns the index of the next start of frame byte at
// or after from, or the end of the buffer if there isn't one.
func nextDelimiter(data []byte, from int) int {
	for i := from; i < len(data); i++ {
		if data[i] == utils.StartOfMessageFrame {
			return i
		}
	}
	return len(data)
}

// checkFrame checks the leader of a candidate frame starting at the
// beginning of data and, if the declared length and the CRC hold up,
// returns the whole frame length in bytes.  It never reads past the
// end of data - the declared length is checked against the real
// length before the CRC bytes are touched.
func checkFrame(data []byte) (int, error) {

	if len(data) < utils.LeaderLengthBytes+2 {
		return 0, errors.New("the data is too short to hold the leader and the message type")
	}

	// The six bits after the delimiter are reserved and must be zero.
	// If not, we've just come across a 0xd3 byte in a stream of binary
	// data.
	reserved := bitstream.GetBitsAsUint64(data, 8, 6)
	if reserved != 0 {
		em := fmt.Sprintf("bits 8-13 of the leader are %d, must be 0", reserved)
		return 0, errors.New(em)
	}

	// The bottom ten bits of the leader give the message length.
	messageLength := int(bitstream.GetBitsAsUint64(data, 14, 10))
	if messageLength == 0 {
		return 0, errors.New("zero length message")
	}

	frameLength := messageLength + utils.LeaderLengthBytes + utils.CRCLengthBytes
	if frameLength > len(data) {
		em := fmt.Sprintf("incomplete frame - declared length %d but only %d bytes remain",
			frameLength, len(data))
		return 0, errors.New(em)
	}

	if crcError := CheckCRC(data[:frameLength]); crcError != nil {
		return 0, crcError
	}

	return frameLength, nil
}

// declaredFrameLength reads the frame length from a 5-byte frame
// fragment (leader plus the first two message bytes) without any
// bounds knowledge - the caller goes on to read that many bytes.
func declaredFrameLength(fragment []byte) (int, error) {

	if len(fragment) < utils.LeaderLengthBytes+2 {
		return 0, errors.New("the fragment is too short to hold the leader and the message type")
	}

	reserved := bitstream.GetBitsAsUint64(fragment, 8, 6)
	if reserved != 0 {
		em := fmt.Sprintf("bits 8-13 of the leader are %d, must be 0", reserved)
		return 0, errors.New(em)
	}

	messageLength := int(bitstream.GetBitsAsUint64(fragment, 14, 10))
	if messageLength == 0 {
		return 0, errors.New("zero length message")
	}

	return messageLength + utils.LeaderLengthBytes + utils.CRCLengthBytes, nil
}

// eatUntilStartOfFrame reads bytes from the channel until it
// encounters the start of frame byte or the channel is closed.  It
// reports whether it ate any bytes before the delimiter.
func eatUntilStartOfFrame(pc *pushback.ByteChannel) (bool, error) {
	sawNoise := false
	for {
		b, err := pc.GetNextByte()
		if err != nil {
			return sawNoise, err
		}

		if b == utils.StartOfMessageFrame {
			return sawNoise, nil
		}

		sawNoise = true
	}
}

// fetchBytes appends want bytes from the channel to the frame,
// reporting false if the input runs out first.
func fetchBytes(pc *pushback.ByteChannel, frame *[]byte, want int) bool {
	for i := 0; i < want; i++ {
		b, err := pc.GetNextByte()
		if err != nil {
			return false
		}
		*frame = append(*frame, b)
	}
	return true
}

// CheckCRC checks the CRC of a message frame and returns an error if
// the calculated CRC does not match the CRC bytes at the end of the
// frame.  The CRC is computed over the leader and the embedded
// message.
func CheckCRC(frame []byte) error {
	if len(frame) < (utils.LeaderLengthBytes + utils.CRCLengthBytes) {
		return errors.New("cannot check CRC - frame is too short")
	}
	// The CRC is the last three bytes of the message frame.
	// The rest of the frame should produce the same CRC.
	startOfCRC := len(frame) - utils.CRCLengthBytes
	crcHiByte := frame[startOfCRC]
	crcMiByte := frame[startOfCRC+1]
	crcLoByte := frame[startOfCRC+2]

	headerAndMessage := frame[:startOfCRC]
	newCRC := crc24q.Hash(headerAndMessage)

	if crc24q.HiByte(newCRC) != crcHiByte ||
		crc24q.MiByte(newCRC) != crcMiByte ||
		crc24q.LoByte(newCRC) != crcLoByte {

		// The calculated CRC does not match the one at the end of the
		// message frame.
		em := fmt.Sprintf(
			"CRC check failed - given %02x %02x %02x, calculated %02x %02x %02x",
			crcHiByte, crcMiByte, crcLoByte,
			crc24q.HiByte(newCRC), crc24q.MiByte(newCRC), crc24q.LoByte(newCRC),
		)
		return errors.New(em)
	}

	// We have a valid frame.
	return nil
}

// analyse decodes the raw frame and fills in the broken out message.
func analyse(message *Message) error {

	switch message.MessageType {

	case utils.MessageType1002:
		readable, err := type1002.GetMessage(message.RawData, message.LogLevel)
		if err != nil {
			return err
		}
		message.Readable = readable

	case utils.MessageType1005:
		readable, err := type1005.GetMessage(message.RawData, message.LogLevel)
		if err != nil {
			return err
		}
		message.Readable = readable

	case utils.MessageType1006:
		readable, err := type1006.GetMessage(message.RawData, message.LogLevel)
		if err != nil {
			return err
		}
		message.Readable = readable

	case utils.MessageType1010:
		readable, err := type1010.GetMessage(message.RawData, message.LogLevel)
		if err != nil {
			return err
		}
		message.Readable = readable

	case utils.MessageType1029:
		readable, err := type1029.GetMessage(message.RawData, message.LogLevel)
		if err != nil {
			return err
		}
		message.Readable = readable

	case utils.MessageType1033:
		readable, err := type1033.GetMessage(message.RawData, message.LogLevel)
		if err != nil {
			return err
		}
		message.Readable = readable

	default:
		// Not in the structured catalog.  Carry the payload opaque.
		message.Readable = nil
	}

	return nil
}

// Message contains one RTCM3 message - the raw frame plus, for the
// types in the structured catalog, a broken out readable form.
type Message struct {
	// MessageType is the type of the RTCM message (the message number).
	MessageType int

	// RawData is the message frame in its original binary form
	// including the leader and the CRC.
	RawData []byte

	// Readable is a broken out version of the RTCM message.  It's nil
	// for types outside the structured catalog.
	Readable interface{}

	// LogLevel controls the data produced by String.
	LogLevel slog.Level
}

// Copy makes a copy of the message and its contents.
func (message *Message) Copy() Message {
	rawData := make([]byte, len(message.RawData))
	copy(rawData, message.RawData)
	newMessage := Message{
		MessageType: message.MessageType,
		RawData:     rawData,
		Readable:    message.Readable,
		LogLevel:    message.LogLevel,
	}
	return newMessage
}

// String takes the given Message object and returns it as a readable
// string.
func (message *Message) String() string {

	titleAndComment := utils.GetTitleAndComment(message.MessageType)

	display := fmt.Sprintf("Message type %d, %s\n",
		message.MessageType, titleAndComment.Title)

	if message.LogLevel == slog.LevelDebug {

		if len(titleAndComment.Comment) > 0 {
			display += titleAndComment.Comment + "\n"
		}

		display += fmt.Sprintf("Frame length %d bytes:\n", len(message.RawData))
		display += hex.Dump(message.RawData) + "\n"
	}

	if message.Readable == nil {
		// The payload is opaque.
		return display
	}

	s, isStringer := message.Readable.(fmt.Stringer)
	if isStringer {
		display += s.String()
	}

	return display
}
