// The utils package contains constants and general-purpose functions
// shared by the RTCM3 decoding software.
package utils

import (
	"log"
	"math"
	"time"

	"github.com/goblimey/go-tools/dailylogger"
)

// StartOfMessageFrame is the value of the byte that starts an RTCM3 message frame.
const StartOfMessageFrame byte = 0xd3

// The message type is 12 bits unsigned.
const MaxMessageType = 4095

// MaxMessageLength is the maximum embedded message length.  The length
// field in the frame leader is ten bits.
const MaxMessageLength = 1023

// LeaderLengthBytes is the length of the message frame leader in bytes.
const LeaderLengthBytes = 3

// LeaderLengthBits is the length of the message frame leader in bits.
const LeaderLengthBits = LeaderLengthBytes * 8

// CRCLengthBytes is the length of the Cyclic Redundancy Check value in bytes.
const CRCLengthBytes = 3

// CRCLengthBits is the length of the Cyclic Redundancy check value in bits.
const CRCLengthBits = CRCLengthBytes * 8

// RTCM3 message types that the software decodes into a structured
// form.  Anything else is carried as an opaque payload.
const MessageType1002 = 1002 // Extended L1-only GPS RTK observables.
const MessageType1005 = 1005 // Base position.
const MessageType1006 = 1006 // Base position and height.
const MessageType1010 = 1010 // Extended L1-only GLONASS RTK observables.
const MessageType1029 = 1029 // Unicode text string.
const MessageType1033 = 1033 // Receiver and antenna descriptors.

// DateLayout defines the layout of dates when they are displayed.  It
// produces "yyyy-mm-dd hh:mm:ss.ms timeshift timezone", for example
// "2023-05-12 00:00:05 +0000 UTC"
const DateLayout = "2006-01-02 15:04:05.999 -0700 MST"

// LocationUTC is the UTC timezone, set up by the init function.
var LocationUTC *time.Location

func init() {
	LocationUTC, _ = time.LoadLocation("UTC")
}

// TitleAndComment is used to derive a title and comment from a message
// type.  See GetTitleAndComment.  The data are taken mostly from
// https://www.use-snip.com/kb/knowledge-base/rtcm-3-message-list/
type TitleAndComment struct {
	// Title is the title of the message.
	Title string
	// Comment is a comment about the message type.
	Comment string
}

// titleComment maps the message types that turn up most often in real
// correction streams to a title and comment.  The decoder accepts any
// type, so an entry here is not a promise of a structured decode.
var titleComment = map[int]TitleAndComment{
	1002: {"Extended L1-Only GPS RTK Observables",
		"This GPS message type is used when only L1 data is present and bandwidth is very tight, often 1004 is used in such cases (even when no L2 data is present)."},
	1004: {"Extended L1&L2 GPS RTK Observables",
		"This GPS message type is the most common observational message type, with L1/L2/SNR content. This is the most common legacy message found."},
	1005: {"Stationary RTK Reference Station Antenna Reference Point (ARP)",
		"Commonly called the Station Description this message includes the ECEF location of the ARP of the antenna (not the phase center) and also the quarter phase alignment details.  See message types 1006 and 1032.  The 1006 message also adds a height above the ARP value."},
	1006: {"Stationary RTK Reference Station ARP with Antenna Height",
		"As message type 1005 but with the height above the ARP value as well."},
	1010: {"Extended L1-Only GLONASS RTK Observables",
		"This GLONASS message type is used when only L1 data is present and bandwidth is very tight, often 1012 is used in such cases."},
	1012: {"Extended L1&L2 GLONASS RTK Observables",
		"This GLONASS message type is the most common observational message type, with L1/L2/SNR content.  This is one of the most common legacy messages found."},
	1019: {"GPS Ephemerides",
		"Sets of these messages (one per SV) are used to send the broadcast orbits for GPS in a Kepler format."},
	1020: {"GLONASS Ephemerides",
		"Sets of these messages (one per SV) are used to send the broadcast orbits for GLONASS in a XYZ dot product format."},
	1029: {"Unicode Text String",
		"A message which provides a simple way to send short textual strings within the RTCM message set. About ~128 UTF-8 encoded characters are allowed."},
	1033: {"Receiver and Antenna Descriptors",
		"A message which provides short textual strings about the GNSS device and the Antenna device.  These strings can be used to obtain additional phase bias calibration information."},
	1074: {"GPS Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio",
		"The type 4 Multiple Signal Message format for the American GPS system."},
	1077: {"GPS Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio (high resolution)",
		"The type 7 Multiple Signal Message format for the USA’s GPS system."},
	1084: {"GLONASS Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio",
		"The type 4 Multiple Signal Message format for the Russian GLONASS system."},
	1087: {"GLONASS Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio (high resolution)",
		"The type 7 Multiple Signal Message format for the Russian GLONASS system."},
	1094: {"Galileo Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio",
		"The type 4 Multiple Signal Message format for Europe’s Galileo system."},
	1097: {"Galileo Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio (high resolution)",
		"The type 7 Multiple Signal Message format for Europe’s Galileo system."},
	1124: {"BeiDou Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio",
		"The type 4 Multiple Signal Message format for China’s BeiDou system."},
	1127: {"BeiDou Full Pseudoranges and PhaseRanges plus Carrier to Noise Ratio (high resolution)",
		"The type 7 Multiple Signal Message format for China’s BeiDou system."},
	1230: {"GLONASS L1 and L2 Code-Phase Biases",
		"This message provides corrections for the inter-frequency bias caused by the different FDMA frequencies (k, from -7 to 6) used."},
	4072: {"Assigned to: u-blox AG",
		"The content and format of this message is defined by its owner."},
}

// GetTitleAndComment returns a title and comment for the given message
// type, or a fallback title naming the type if it's not one we know.
func GetTitleAndComment(messageType int) *TitleAndComment {
	tc, ok := titleComment[messageType]
	if !ok {
		result := TitleAndComment{"message type is not known", ""}
		return &result
	}
	return &tc
}

// EqualWithin return true if the given float64 values are equal
// within (precision) decimal places after rounding.  (This can fail if
// either of the numbers or the difference between them are too large.)
func EqualWithin(precision uint, f1, f2 float64) bool {

	// see http://docs.oracle.com/cd/E19957-01/806-3568/ncg_goldberg.html

	var scaleFactor float64 = math.Pow(10, float64(precision))

	f1 = math.Round(f1 * scaleFactor)
	f2 = math.Round(f2 * scaleFactor)

	return math.Abs(f1-f2) <= 0.1
}

// GetDailyLogger gets a daily log file which can be written to as a logger
// (each line decorated with filename, date, time, etc).
func GetDailyLogger(prefix string) *log.Logger {
	dailyLog := dailylogger.New("logs", prefix+".", ".log")
	logFlags := log.LstdFlags | log.Lshortfile | log.Lmicroseconds
	return log.New(dailyLog, prefix, logFlags)
}
