package type1029

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gnss/bitstream"
	"github.com/goblimey/go-gnss/rtcm/utils"
)

// This package handles messages of type 1029 (unicode text string).
// The message carries a short piece of free text, for example a notice
// from the base station operator.  The text length is given by a count
// field earlier in the message.
const expectedMessageType = 1029

// Lengths of the fields in the bit stream.
const lenMessageType = 12
const lenStationID = 12
const lenModifiedJulianDay = 16
const lenSecondsOfDay = 17
const lenCharacterCount = 7
const lenCodeUnits = 8

const lengthOfFixedPartInBits = lenMessageType + lenStationID +
	lenModifiedJulianDay + lenSecondsOfDay + lenCharacterCount +
	lenCodeUnits

// Message contains a message of type 1029.
type Message struct {
	// MessageType - uint12 - always 1029.
	MessageType uint `json:"message_type,omitempty"`

	// StationID - uint12.
	StationID uint `json:"station_id,omitempty"`

	// ModifiedJulianDay is the day the message was issued - uint16.
	ModifiedJulianDay uint `json:"modified_julian_day,omitempty"`

	// SecondsOfDay is the UTC second of day - uint17.
	SecondsOfDay uint `json:"seconds_of_day,omitempty"`

	// CharacterCount is the number of characters in the text.  For
	// multi-byte UTF-8 text this is smaller than the code unit count.
	CharacterCount uint `json:"character_count,omitempty"`

	// Text is the message text, CodeUnits bytes of UTF-8.
	Text string `json:"text,omitempty"`

	// logLevel is a slog-style logging level.
	logLevel slog.Level
}

// New creates a new type 1029 message.
func New(stationID, modifiedJulianDay, secondsOfDay, characterCount uint,
	text string, logLevel slog.Level) *Message {

	message := Message{
		MessageType:       utils.MessageType1029,
		StationID:         stationID,
		ModifiedJulianDay: modifiedJulianDay,
		SecondsOfDay:      secondsOfDay,
		CharacterCount:    characterCount,
		Text:              text,
		logLevel:          logLevel,
	}

	return &message
}

// String returns a text version of a message type 1029.
func (message *Message) String() string {

	display := fmt.Sprintf("stationID %d, text %q\n",
		message.StationID, message.Text)

	if message.logLevel == slog.LevelDebug {
		display += fmt.Sprintf("modified julian day %d, seconds of day %d, %d characters in %d code units\n",
			message.ModifiedJulianDay, message.SecondsOfDay,
			message.CharacterCount, len(message.Text))
	}

	return display
}

// GetMessage extracts a message type 1029 from the given message frame.
func GetMessage(bitStream []byte, logLevel slog.Level) (*Message, error) {

	// The bit stream contains a 3-byte leader, an embedded message and a 3-byte CRC.
	// Here we are only concerned with the embedded message.
	lenBitStream := len(bitStream) * 8
	lenMessageInBits := lenBitStream - utils.LeaderLengthBits - utils.CRCLengthBits

	// Check that the bit stream can hold at least the fixed part.
	if lenMessageInBits < lengthOfFixedPartInBits {
		errorMessage := fmt.Sprintf("overrun - expected at least %d bits in a message type 1029, got %d",
			lengthOfFixedPartInBits, lenMessageInBits)
		return nil, errors.New(errorMessage)
	}

	// Jump over the leader.
	reader := bitstream.New(bitStream)
	if err := reader.Skip(utils.LeaderLengthBits); err != nil {
		return nil, err
	}

	messageType, _ := reader.Uint(lenMessageType)

	// Sanity check.
	if messageType != expectedMessageType {
		em := fmt.Sprintf("expected message type %d got %d",
			expectedMessageType, messageType)
		return nil, errors.New(em)
	}

	stationID, _ := reader.Uint(lenStationID)
	modifiedJulianDay, _ := reader.Uint(lenModifiedJulianDay)
	secondsOfDay, _ := reader.Uint(lenSecondsOfDay)
	characterCount, _ := reader.Uint(lenCharacterCount)
	codeUnits, _ := reader.Uint(lenCodeUnits)

	// The code unit count comes from the message, so check it against
	// the real length before trusting it.
	wantBits := lengthOfFixedPartInBits + int(codeUnits)*8
	if lenMessageInBits < wantBits {
		errorMessage := fmt.Sprintf("overrun - %d code units need %d bits in a message type 1029, got %d",
			codeUnits, wantBits, lenMessageInBits)
		return nil, errors.New(errorMessage)
	}

	text, charError := reader.Chars(uint(codeUnits))
	if charError != nil {
		return nil, charError
	}

	message := New(uint(stationID), uint(modifiedJulianDay), uint(secondsOfDay),
		uint(characterCount), text, logLevel)
	return message, nil
}
