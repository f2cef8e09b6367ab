package type1010

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gnss/bitstream"
	"github.com/goblimey/go-gnss/rtcm/utils"
)

// This package handles messages of type 1010 (extended L1-only GLONASS
// RTK observables).  Like a type 1002, the message is a fixed header
// followed by one satellite record per observed satellite, but the
// epoch time is within the GLONASS day and each record carries the
// satellite's FDMA frequency channel.
const expectedMessageType = 1010

// Lengths of the header fields in the bit stream.
const lenMessageType = 12
const lenStationID = 12
const lenEpochTime = 27
const lenSynchronousFlag = 1
const lenSatelliteCount = 5
const lenSmoothingIndicator = 1
const lenSmoothingInterval = 3

const lengthOfHeaderInBits = lenMessageType + lenStationID + lenEpochTime +
	lenSynchronousFlag + lenSatelliteCount + lenSmoothingIndicator +
	lenSmoothingInterval

// Lengths of the fields of each satellite record.
const lenSatelliteID = 6
const lenL1CodeIndicator = 1
const lenFrequencyChannel = 5
const lenL1Pseudorange = 25
const lenL1PhaseRangeDelta = 20
const lenL1LockTimeIndicator = 7
const lenL1PseudorangeAmbiguity = 7
const lenL1CNR = 8

const lengthOfSatelliteInBits = lenSatelliteID + lenL1CodeIndicator +
	lenFrequencyChannel + lenL1Pseudorange + lenL1PhaseRangeDelta +
	lenL1LockTimeIndicator + lenL1PseudorangeAmbiguity + lenL1CNR

// Satellite contains one satellite record from a type 1010 message.
type Satellite struct {
	// SatelliteID is the GLONASS satellite slot number - uint6.
	SatelliteID uint `json:"satellite_id"`

	// L1CodeIndicator is 0 for C/A code, 1 for P code.
	L1CodeIndicator uint `json:"l1_code_indicator"`

	// FrequencyChannel is the FDMA frequency channel number plus 7,
	// so channel -7 is 0 and channel 6 is 13 - uint5.
	FrequencyChannel uint `json:"frequency_channel"`

	// L1Pseudorange is the L1 pseudorange in 0.02 m units, modulo two
	// light milliseconds - uint25.
	L1Pseudorange uint `json:"l1_pseudorange"`

	// L1PhaseRangeDelta is the L1 phase range minus the L1 pseudorange
	// in 0.0005 m units - int20.
	L1PhaseRangeDelta int64 `json:"l1_phase_range_delta"`

	// L1LockTimeIndicator gives the time for which the receiver has
	// held phase lock - uint7.
	L1LockTimeIndicator uint `json:"l1_lock_time_indicator"`

	// L1PseudorangeAmbiguity is the integer number of light
	// milliseconds to add to the pseudorange - uint7.
	L1PseudorangeAmbiguity uint `json:"l1_pseudorange_ambiguity"`

	// L1CNR is the carrier to noise ratio in 0.25 dB-Hz units - uint8.
	L1CNR uint `json:"l1_cnr"`
}

// Message contains a message of type 1010.
type Message struct {
	// MessageType - uint12 - always 1010.
	MessageType uint `json:"message_type,omitempty"`

	// StationID - uint12.
	StationID uint `json:"station_id,omitempty"`

	// EpochTime is the GLONASS epoch time (time of day in the Moscow
	// timezone) in milliseconds - uint27.
	EpochTime uint `json:"epoch_time,omitempty"`

	// SynchronousFlag is set if more observables of the same epoch follow.
	SynchronousFlag uint `json:"synchronous_flag,omitempty"`

	// SmoothingIndicator is set if divergence-free smoothing is used.
	SmoothingIndicator uint `json:"smoothing_indicator,omitempty"`

	// SmoothingInterval is the smoothing interval code - uint3.
	SmoothingInterval uint `json:"smoothing_interval,omitempty"`

	// Satellites are the satellite records, one per observed satellite.
	Satellites []Satellite `json:"satellites,omitempty"`

	// logLevel is a slog-style logging level.
	logLevel slog.Level
}

// New creates a new type 1010 message.
func New(stationID, epochTime, synchronousFlag, smoothingIndicator, smoothingInterval uint,
	satellites []Satellite, logLevel slog.Level) *Message {

	message := Message{
		MessageType:        utils.MessageType1010,
		StationID:          stationID,
		EpochTime:          epochTime,
		SynchronousFlag:    synchronousFlag,
		SmoothingIndicator: smoothingIndicator,
		SmoothingInterval:  smoothingInterval,
		Satellites:         satellites,
		logLevel:           logLevel,
	}

	return &message
}

// String returns a text version of a message type 1010.
func (message *Message) String() string {

	display := fmt.Sprintf("stationID %d, epoch time %d ms, %d satellites\n",
		message.StationID, message.EpochTime, len(message.Satellites))

	if message.logLevel == slog.LevelDebug {
		display += fmt.Sprintf("synchronous %d, smoothing %d, interval %d\n",
			message.SynchronousFlag, message.SmoothingIndicator,
			message.SmoothingInterval)
	}

	for i := range message.Satellites {
		satellite := &message.Satellites[i]
		// The frequency channel is offset by 7 in the bit stream.
		channel := int(satellite.FrequencyChannel) - 7
		display += fmt.Sprintf("satellite %d: code %d, channel %d, pseudorange %.2f m, phase range delta %.4f m, lock %d, ambiguity %d, CNR %.2f dB-Hz\n",
			satellite.SatelliteID, satellite.L1CodeIndicator, channel,
			float64(satellite.L1Pseudorange)*0.02,
			float64(satellite.L1PhaseRangeDelta)*0.0005,
			satellite.L1LockTimeIndicator,
			satellite.L1PseudorangeAmbiguity,
			float64(satellite.L1CNR)*0.25)
	}

	return display
}

// GetMessage extracts a message type 1010 from the given message frame.
func GetMessage(bitStream []byte, logLevel slog.Level) (*Message, error) {

	// The bit stream contains a 3-byte leader, an embedded message and a 3-byte CRC.
	// Here we are only concerned with the embedded message.
	lenBitStream := len(bitStream) * 8
	lenMessageInBits := lenBitStream - utils.LeaderLengthBits - utils.CRCLengthBits

	// Check that the bit stream can hold at least the header.
	if lenMessageInBits < lengthOfHeaderInBits {
		errorMessage := fmt.Sprintf("overrun - expected at least %d bits in a message type 1010, got %d",
			lengthOfHeaderInBits, lenMessageInBits)
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
	epochTime, _ := reader.Uint(lenEpochTime)
	synchronousFlag, _ := reader.Uint(lenSynchronousFlag)
	satelliteCount, _ := reader.Uint(lenSatelliteCount)
	smoothingIndicator, _ := reader.Uint(lenSmoothingIndicator)
	smoothingInterval, _ := reader.Uint(lenSmoothingInterval)

	// The satellite count comes from the message, so check it against
	// the real length before trusting it.
	wantBits := lengthOfHeaderInBits + int(satelliteCount)*lengthOfSatelliteInBits
	if lenMessageInBits < wantBits {
		errorMessage := fmt.Sprintf("overrun - %d satellites need %d bits in a message type 1010, got %d",
			satelliteCount, wantBits, lenMessageInBits)
		return nil, errors.New(errorMessage)
	}

	satellites := make([]Satellite, 0, satelliteCount)
	for i := uint64(0); i < satelliteCount; i++ {
		satelliteID, _ := reader.Uint(lenSatelliteID)
		codeIndicator, _ := reader.Uint(lenL1CodeIndicator)
		frequencyChannel, _ := reader.Uint(lenFrequencyChannel)
		pseudorange, _ := reader.Uint(lenL1Pseudorange)
		phaseRangeDelta, _ := reader.Int(lenL1PhaseRangeDelta)
		lockTimeIndicator, _ := reader.Uint(lenL1LockTimeIndicator)
		ambiguity, _ := reader.Uint(lenL1PseudorangeAmbiguity)
		cnr, _ := reader.Uint(lenL1CNR)

		satellite := Satellite{
			SatelliteID:            uint(satelliteID),
			L1CodeIndicator:        uint(codeIndicator),
			FrequencyChannel:       uint(frequencyChannel),
			L1Pseudorange:          uint(pseudorange),
			L1PhaseRangeDelta:      phaseRangeDelta,
			L1LockTimeIndicator:    uint(lockTimeIndicator),
			L1PseudorangeAmbiguity: uint(ambiguity),
			L1CNR:                  uint(cnr),
		}
		satellites = append(satellites, satellite)
	}

	message := New(uint(stationID), uint(epochTime), uint(synchronousFlag),
		uint(smoothingIndicator), uint(smoothingInterval), satellites, logLevel)
	return message, nil
}
