package type1033

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gnss/bitstream"
	"github.com/goblimey/go-gnss/rtcm/utils"
)

// This package handles messages of type 1033 (receiver and antenna
// descriptors).  The message is five counted ASCII strings, each
// preceded by its own 8-bit length, plus an antenna setup ID.
const expectedMessageType = 1033

// Lengths of the fixed fields in the bit stream.
const lenMessageType = 12
const lenStationID = 12
const lenCounter = 8
const lenAntennaSetupID = 8

// The five counted strings can all be empty, so the shortest legal
// message is the fixed fields plus five zero counters.
const lengthOfFixedPartInBits = lenMessageType + lenStationID +
	lenAntennaSetupID + (5 * lenCounter)

// Message contains a message of type 1033.
type Message struct {
	// MessageType - uint12 - always 1033.
	MessageType uint `json:"message_type,omitempty"`

	// StationID - uint12.
	StationID uint `json:"station_id,omitempty"`

	// AntennaDescriptor names the antenna model.
	AntennaDescriptor string `json:"antenna_descriptor,omitempty"`

	// AntennaSetupID is the setup ID - uint8.
	AntennaSetupID uint `json:"antenna_setup_id,omitempty"`

	// AntennaSerialNumber is the antenna serial number.
	AntennaSerialNumber string `json:"antenna_serial_number,omitempty"`

	// ReceiverTypeDescriptor names the receiver model.
	ReceiverTypeDescriptor string `json:"receiver_type_descriptor,omitempty"`

	// ReceiverFirmwareVersion is the receiver firmware version.
	ReceiverFirmwareVersion string `json:"receiver_firmware_version,omitempty"`

	// ReceiverSerialNumber is the receiver serial number.
	ReceiverSerialNumber string `json:"receiver_serial_number,omitempty"`

	// logLevel is a slog-style logging level.
	logLevel slog.Level
}

// New creates a new type 1033 message.
func New(stationID uint, antennaDescriptor string, antennaSetupID uint,
	antennaSerialNumber, receiverTypeDescriptor, receiverFirmwareVersion,
	receiverSerialNumber string, logLevel slog.Level) *Message {

	message := Message{
		MessageType:             utils.MessageType1033,
		StationID:               stationID,
		AntennaDescriptor:       antennaDescriptor,
		AntennaSetupID:          antennaSetupID,
		AntennaSerialNumber:     antennaSerialNumber,
		ReceiverTypeDescriptor:  receiverTypeDescriptor,
		ReceiverFirmwareVersion: receiverFirmwareVersion,
		ReceiverSerialNumber:    receiverSerialNumber,
		logLevel:                logLevel,
	}

	return &message
}

// String returns a text version of a message type 1033.
func (message *Message) String() string {

	display := fmt.Sprintf("stationID %d, antenna %q, receiver %q\n",
		message.StationID, message.AntennaDescriptor,
		message.ReceiverTypeDescriptor)

	if message.logLevel == slog.LevelDebug {
		display += fmt.Sprintf("antenna setup ID %d, antenna serial %q, firmware %q, receiver serial %q\n",
			message.AntennaSetupID, message.AntennaSerialNumber,
			message.ReceiverFirmwareVersion, message.ReceiverSerialNumber)
	}

	return display
}

// GetMessage extracts a message type 1033 from the given message frame.
func GetMessage(bitStream []byte, logLevel slog.Level) (*Message, error) {

	// The bit stream contains a 3-byte leader, an embedded message and a 3-byte CRC.
	// Here we are only concerned with the embedded message.
	lenBitStream := len(bitStream) * 8
	lenMessageInBits := lenBitStream - utils.LeaderLengthBits - utils.CRCLengthBits

	// Check that the bit stream can hold at least the fixed fields.
	if lenMessageInBits < lengthOfFixedPartInBits {
		errorMessage := fmt.Sprintf("overrun - expected at least %d bits in a message type 1033, got %d",
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

	// The CRC bits at the end of the frame must never be consumed as
	// string data, so each counted string is read against the limit of
	// the embedded message, not the whole frame.
	messageEnd := uint(utils.LeaderLengthBits + lenMessageInBits)

	antennaDescriptor, descriptorError := readCountedString(reader, messageEnd)
	if descriptorError != nil {
		return nil, descriptorError
	}

	setupID, setupError := reader.Uint(lenAntennaSetupID)
	if setupError != nil {
		return nil, setupError
	}

	antennaSerialNumber, antennaSerialError := readCountedString(reader, messageEnd)
	if antennaSerialError != nil {
		return nil, antennaSerialError
	}

	receiverTypeDescriptor, receiverError := readCountedString(reader, messageEnd)
	if receiverError != nil {
		return nil, receiverError
	}

	receiverFirmwareVersion, firmwareError := readCountedString(reader, messageEnd)
	if firmwareError != nil {
		return nil, firmwareError
	}

	receiverSerialNumber, receiverSerialError := readCountedString(reader, messageEnd)
	if receiverSerialError != nil {
		return nil, receiverSerialError
	}

	message := New(uint(stationID), antennaDescriptor, uint(setupID),
		antennaSerialNumber, receiverTypeDescriptor,
		receiverFirmwareVersion, receiverSerialNumber, logLevel)
	return message, nil
}

// readCountedString reads an 8-bit length and then that many
// characters, failing if the string would run past the end of the
// embedded message.
func readCountedString(reader *bitstream.Reader, messageEnd uint) (string, error) {
	count, countError := reader.Uint(8)
	if countError != nil {
		return "", countError
	}

	if reader.Pos()+uint(count)*8 > messageEnd {
		em := fmt.Sprintf("overrun - counted string of %d characters at position %d runs past the message end %d",
			count, reader.Pos(), messageEnd)
		return "", errors.New(em)
	}

	return reader.Chars(uint(count))
}
