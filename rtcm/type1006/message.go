package type1006

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gnss/bitstream"
	"github.com/goblimey/go-gnss/rtcm/utils"
)

// This package handles messages of type 1006 (base position and
// antenna height).  The message is laid out exactly as a type 1005
// with a 16-bit antenna height on the end.
const expectedMessageType = 1006

// Lengths of the fields in the bit stream.
const lenMessageType = 12
const lenStationID = 12
const lenITRFRealisationYear = 6
const lenIgnoredBits1 = 4
const lenAntennaRefX = 38
const lenIgnoredBits2 = 2
const lenAntennaRefY = 38
const lenIgnoredBits3 = 2
const lenAntennaRefZ = 38
const lenAntennaHeight = 16

const lengthOfMessageInBits = lenMessageType + lenStationID +
	lenITRFRealisationYear + lenIgnoredBits1 +
	lenAntennaRefX + lenIgnoredBits2 + lenAntennaRefY +
	lenIgnoredBits3 + lenAntennaRefZ + lenAntennaHeight

// Message contains a message of type 1006 - antenna position and height.
type Message struct {
	// MessageType - uint12 - always 1006.
	MessageType uint `json:"message_type,omitempty"`

	// station ID - uint12.
	StationID uint `json:"station_id,omitempty"`

	// Reserved for ITRF Realisation Year - uint6.
	ITRFRealisationYear uint `json:"itrf_realisation_year,omitempty"`

	// Ignored1 represents the next four bits which are ignored.
	Ignored1 uint `json:"ignored1,omitempty"`

	// AntennaRefX is the antenna Reference Point coordinate X in ECEF - int38.
	// Scaled integer in 0.00001 m units (tenth mm).
	AntennaRefX int64 `json:"antenna_ref_x,omitempty"`

	// Ignored2 represents the next two bits which are ignored.
	Ignored2 uint `json:"ignored2,omitempty"`

	// AntennaRefY is the antenna Reference Point coordinate Y in ECEF - int38.
	AntennaRefY int64 `json:"antenna_ref_y,omitempty"`

	// Ignored3 represents the next two bits which are ignored.
	Ignored3 uint `json:"ignored3,omitempty"`

	// AntennaRefZ is the antenna Reference Point coordinate Z in ECEF - int38.
	AntennaRefZ int64 `json:"antenna_ref_z,omitempty"`

	// AntennaHeight is the height of the antenna above the reference
	// point - uint16 - in 0.00001 m units (tenth mm).
	AntennaHeight uint `json:"antenna_height,omitempty"`

	// logLevel is a slog-style logging level.
	logLevel slog.Level
}

// New creates a new type 1006 message.
func New(stationID, itrfRealisationYear, ignored1 uint,
	antennaRefX int64, ignored2 uint, antennaRefY int64,
	ignored3 uint, antennaRefZ int64, antennaHeight uint,
	logLevel slog.Level) *Message {

	message := Message{
		MessageType:         utils.MessageType1006,
		StationID:           stationID,
		ITRFRealisationYear: itrfRealisationYear,
		Ignored1:            ignored1,
		AntennaRefX:         antennaRefX,
		Ignored2:            ignored2,
		AntennaRefY:         antennaRefY,
		Ignored3:            ignored3,
		AntennaRefZ:         antennaRefZ,
		AntennaHeight:       antennaHeight,
		logLevel:            logLevel,
	}

	return &message
}

// String returns a text version of a message type 1006
func (message *Message) String() string {

	display := fmt.Sprintf("stationID %d, ITRF realisation year %d,",
		message.StationID, message.ITRFRealisationYear)

	if message.logLevel == slog.LevelDebug {
		display += fmt.Sprintf(" unknown bits %04b,\n",
			message.Ignored1)
		display += fmt.Sprintf("x %d, unknown bits %02b, y %d, unknown bits %02b, z %d,\n",
			message.AntennaRefX, message.Ignored2, message.AntennaRefY,
			message.Ignored3, message.AntennaRefZ)
	} else {
		display += "\n"
	}

	// The coordinates and the height are in units of 1/10,000 of a metre.
	const scaleFactor = 0.0001
	x := float64(message.AntennaRefX) * scaleFactor
	y := float64(message.AntennaRefY) * scaleFactor
	z := float64(message.AntennaRefZ) * scaleFactor
	height := float64(message.AntennaHeight) * scaleFactor
	display += fmt.Sprintf("ECEF coords in metres (%.4f, %.4f, %.4f), antenna height %.4f\n",
		x, y, z, height)

	return display
}

// GetMessage extracts a message type 1006 from the given message frame.
func GetMessage(bitStream []byte, logLevel slog.Level) (*Message, error) {

	// The bit stream contains a 3-byte leader, an embedded message and a 3-byte CRC.
	// Here we are only concerned with the embedded message.
	lenBitStream := len(bitStream) * 8
	lenMessageInBits := lenBitStream - utils.LeaderLengthBits - utils.CRCLengthBits

	// Check that the bit stream is long enough.
	if lenMessageInBits < lengthOfMessageInBits {
		errorMessage := fmt.Sprintf("overrun - expected %d bits in a message type 1006, got %d",
			lengthOfMessageInBits, lenMessageInBits)
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
	itrfRealisationYear, _ := reader.Uint(lenITRFRealisationYear)
	ignored1, _ := reader.Uint(lenIgnoredBits1)
	antennaRefX, _ := reader.Int(lenAntennaRefX)
	ignored2, _ := reader.Uint(lenIgnoredBits2)
	antennaRefY, _ := reader.Int(lenAntennaRefY)
	ignored3, _ := reader.Uint(lenIgnoredBits3)
	antennaRefZ, _ := reader.Int(lenAntennaRefZ)
	antennaHeight, _ := reader.Uint(lenAntennaHeight)

	message := New(uint(stationID), uint(itrfRealisationYear), uint(ignored1),
		antennaRefX, uint(ignored2), antennaRefY, uint(ignored3),
		antennaRefZ, uint(antennaHeight), logLevel)
	return message, nil
}
