package nmea

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// The nmea package decodes NMEA-0183 sentences.  A sentence is a line
// of text of the form
//
//	$GPRMC,151924.00,A,3723.454444,N,12202.269777,W,5.0,054.7,200524,020.3,E,D*26
//
// where GP is the talker (the satellite system), RMC is the sentence
// type and the two hex digits after the "*" are a checksum, the XOR of
// all the bytes strictly between the "$" and the "*".  The decoder
// validates the checksum and breaks the position sentences GGA, RMC,
// GLL and VTG out into typed values.  The types GSV, GSA, TXT, ZDA and
// GST are recognised but carried raw.  Anything else is rejected.
//
// Failures are recoverable and counted.  A receiver emits sentences
// continuously, so a corrupted line just means waiting for the next
// fix cycle.

// Sentence type codes that are recognised but carried raw.
var rawTypes = map[string]bool{
	"GSV": true,
	"GSA": true,
	"TXT": true,
	"ZDA": true,
	"GST": true,
}

// Number of data fields for each of the broken out sentence types.
// A sentence with any other field count is rejected.
const fieldCountGLL = 7
const fieldCountRMC = 12
const fieldCountGGA = 14
const fieldCountVTG = 9

// Checksum returns the NMEA checksum of the given text, the XOR of
// all its bytes.  The text is the part of the sentence strictly
// between the "$" and the "*".
func Checksum(text string) byte {
	var check byte
	for i := 0; i < len(text); i++ {
		check ^= text[i]
	}
	return check
}

// MakeSentence builds a sentence from an address ("GPGGA") and data
// fields, with a correctly computed checksum.  It's the inverse of
// ParseSentence for a legal field set.
func MakeSentence(address string, fields []string) string {
	body := address
	if len(fields) > 0 {
		body += "," + strings.Join(fields, ",")
	}
	return fmt.Sprintf("$%s*%02X", body, Checksum(body))
}

// ParseSentence decodes one sentence.  Any line terminator has been
// stripped by the caller, but a trailing CR, LF or CRLF is tolerated.
// Leading text before the "$" is ignored - some receivers emit binary
// noise between sentences.
func ParseSentence(line string) (Sentence, error) {

	line = strings.TrimRight(line, "\r\n")

	// Skip any noise before the "$".
	start := strings.IndexByte(line, '$')
	if start < 0 {
		return nil, errors.New("no $ in sentence")
	}
	line = line[start:]

	// The shortest legal sentence is $AAAAA*HH - an address and a
	// checksum with no data fields.
	if len(line) < 9 {
		em := fmt.Sprintf("sentence too short - %q", line)
		return nil, errors.New(em)
	}

	// The "*" introduces the 2-digit checksum and must be the third
	// character from the end.
	starPos := len(line) - 3
	if line[starPos] != '*' {
		em := fmt.Sprintf("no checksum marker in sentence %q", line)
		return nil, errors.New(em)
	}

	body := line[1:starPos]

	givenSum, hexError := strconv.ParseUint(line[starPos+1:], 16, 8)
	if hexError != nil {
		em := fmt.Sprintf("checksum %q is not hex in sentence %q",
			line[starPos+1:], line)
		return nil, errors.New(em)
	}

	sum := Checksum(body)
	if sum != byte(givenSum) {
		em := fmt.Sprintf("checksum mismatch - given %02X, calculated %02X in sentence %q",
			givenSum, sum, line)
		return nil, errors.New(em)
	}

	// The address is the text up to the first comma, 2 characters of
	// talker and 3 of sentence type.
	parts := strings.Split(body, ",")
	address := parts[0]
	fields := parts[1:]

	if len(address) != 5 {
		em := fmt.Sprintf("address %q should be 5 characters in sentence %q",
			address, line)
		return nil, errors.New(em)
	}

	base := Base{Talker: address[:2], Type: address[2:]}

	switch base.Type {
	case "GGA":
		return parseGGA(base, fields)
	case "RMC":
		return parseRMC(base, fields)
	case "GLL":
		return parseGLL(base, fields)
	case "VTG":
		return parseVTG(base, fields)
	default:
		if rawTypes[base.Type] {
			raw := Raw{Base: base, Fields: fields, Sentence: line}
			return &raw, nil
		}
		em := fmt.Sprintf("unknown sentence type %q", base.Type)
		return nil, errors.New(em)
	}
}

// parseGGA breaks out the fields of a GGA sentence - time, position,
// fix quality, satellite count, dilution and heights.
func parseGGA(base Base, fields []string) (*GGA, error) {

	if len(fields) != fieldCountGGA {
		em := fmt.Sprintf("a GGA should have %d fields, got %d",
			fieldCountGGA, len(fields))
		return nil, errors.New(em)
	}

	timeOfDay, timeError := parseTimeOfDay(fields[0])
	if timeError != nil {
		return nil, timeError
	}

	latitude, latError := parseCoordinate(fields[1], fields[2])
	if latError != nil {
		return nil, latError
	}
	longitude, lonError := parseCoordinate(fields[3], fields[4])
	if lonError != nil {
		return nil, lonError
	}

	quality, qualityError := parseFixQuality(fields[5])
	if qualityError != nil {
		return nil, qualityError
	}

	svCount, svError := strconv.ParseUint(fields[6], 10, 32)
	if svError != nil {
		em := fmt.Sprintf("cannot parse satellite count %q", fields[6])
		return nil, errors.New(em)
	}

	hdop, hdopError := parseFloat(fields[7], "HDOP")
	if hdopError != nil {
		return nil, hdopError
	}

	height, heightError := parseFloat(fields[8], "height")
	if heightError != nil {
		return nil, heightError
	}
	// fields[9] is the height unit, always M.

	separation, separationError := parseFloat(fields[10], "geoidal separation")
	if separationError != nil {
		return nil, separationError
	}
	// fields[11] is the separation unit, always M.

	gga := GGA{
		Base:              base,
		TimeOfDay:         timeOfDay,
		Latitude:          latitude,
		Longitude:         longitude,
		FixQuality:        quality,
		SVCount:           uint(svCount),
		HDOP:              hdop,
		Height:            height,
		GeoidalSeparation: separation,
		DGPSAge:           fields[12],
		DGPSStationID:     fields[13],
	}
	return &gga, nil
}

// parseRMC breaks out the fields of an RMC sentence - time, validity,
// position, speed, course, date, variation and mode.
func parseRMC(base Base, fields []string) (*RMC, error) {

	if len(fields) != fieldCountRMC {
		em := fmt.Sprintf("an RMC should have %d fields, got %d",
			fieldCountRMC, len(fields))
		return nil, errors.New(em)
	}

	timeOfDay, timeError := parseTimeOfDay(fields[0])
	if timeError != nil {
		return nil, timeError
	}

	valid, validError := parseStatus(fields[1])
	if validError != nil {
		return nil, validError
	}

	latitude, latError := parseCoordinate(fields[2], fields[3])
	if latError != nil {
		return nil, latError
	}
	longitude, lonError := parseCoordinate(fields[4], fields[5])
	if lonError != nil {
		return nil, lonError
	}

	speed, speedError := parseFloat(fields[6], "speed")
	if speedError != nil {
		return nil, speedError
	}

	track, trackError := parseOptionalFloat(fields[7], "track")
	if trackError != nil {
		return nil, trackError
	}

	date, dateError := parseDate(fields[8])
	if dateError != nil {
		return nil, dateError
	}

	variation, variationError := parseVariation(fields[9], fields[10])
	if variationError != nil {
		return nil, variationError
	}

	mode, modeError := parseFAAMode(fields[11])
	if modeError != nil {
		return nil, modeError
	}

	rmc := RMC{
		Base:              base,
		TimeOfDay:         timeOfDay,
		Time:              date.Add(timeOfDay),
		Valid:             valid,
		Latitude:          latitude,
		Longitude:         longitude,
		SpeedKnots:        speed,
		TrackDegreesTrue:  track,
		MagneticVariation: variation,
		Mode:              mode,
	}
	return &rmc, nil
}

// parseGLL breaks out the fields of a GLL sentence - position, time,
// validity and mode.
func parseGLL(base Base, fields []string) (*GLL, error) {

	if len(fields) != fieldCountGLL {
		em := fmt.Sprintf("a GLL should have %d fields, got %d",
			fieldCountGLL, len(fields))
		return nil, errors.New(em)
	}

	latitude, latError := parseCoordinate(fields[0], fields[1])
	if latError != nil {
		return nil, latError
	}
	longitude, lonError := parseCoordinate(fields[2], fields[3])
	if lonError != nil {
		return nil, lonError
	}

	timeOfDay, timeError := parseTimeOfDay(fields[4])
	if timeError != nil {
		return nil, timeError
	}

	valid, validError := parseStatus(fields[5])
	if validError != nil {
		return nil, validError
	}

	mode, modeError := parseFAAMode(fields[6])
	if modeError != nil {
		return nil, modeError
	}

	gll := GLL{
		Base:      base,
		Latitude:  latitude,
		Longitude: longitude,
		TimeOfDay: timeOfDay,
		Valid:     valid,
		Mode:      mode,
	}
	return &gll, nil
}

// parseVTG breaks out the fields of a VTG sentence - course, speed
// and mode.
func parseVTG(base Base, fields []string) (*VTG, error) {

	if len(fields) != fieldCountVTG {
		em := fmt.Sprintf("a VTG should have %d fields, got %d",
			fieldCountVTG, len(fields))
		return nil, errors.New(em)
	}

	track, trackError := parseOptionalFloat(fields[0], "track")
	if trackError != nil {
		return nil, trackError
	}
	// fields[1] is the unit, always T.

	trackMagnetic, magneticError := parseOptionalFloat(fields[2], "magnetic track")
	if magneticError != nil {
		return nil, magneticError
	}
	// fields[3] is the unit, always M.

	speed, speedError := parseFloat(fields[4], "speed")
	if speedError != nil {
		return nil, speedError
	}
	// fields[5] is the unit, always N.

	speedKmH, kmhError := parseOptionalFloat(fields[6], "speed in km/h")
	if kmhError != nil {
		return nil, kmhError
	}
	// fields[7] is the unit, always K.

	mode, modeError := parseFAAMode(fields[8])
	if modeError != nil {
		return nil, modeError
	}

	vtg := VTG{
		Base:                 base,
		TrackDegreesTrue:     track,
		TrackDegreesMagnetic: trackMagnetic,
		SpeedKnots:           speed,
		SpeedKmH:             speedKmH,
		Mode:                 mode,
	}
	return &vtg, nil
}

// parseCoordinate converts a DDDMM.MMMM value and a hemisphere letter
// to decimal degrees, negative in the southern or western hemisphere.
// A missing value or hemisphere gives NaN, not an error - sentences
// from a receiver with no fix have empty position fields.
func parseCoordinate(value, hemisphere string) (float64, error) {

	if len(value) == 0 || len(hemisphere) == 0 {
		return math.NaN(), nil
	}

	v, parseError := strconv.ParseFloat(value, 64)
	if parseError != nil {
		em := fmt.Sprintf("cannot parse coordinate %q", value)
		return 0, errors.New(em)
	}

	// The encoding is degrees*100 + minutes, so 3723.454444 is 37
	// degrees 23.454444 minutes.
	degrees := math.Floor(v / 100)
	minutes := v - 100*degrees
	result := degrees + minutes/60

	switch hemisphere {
	case "N", "E":
		return result, nil
	case "S", "W":
		return -result, nil
	default:
		em := fmt.Sprintf("hemisphere should be one of NSEW, got %q", hemisphere)
		return 0, errors.New(em)
	}
}

// parseTimeOfDay converts an hhmmss or hhmmss.sss value to an offset
// from midnight with millisecond resolution.
func parseTimeOfDay(value string) (time.Duration, error) {

	if len(value) < 6 {
		em := fmt.Sprintf("cannot parse time %q", value)
		return 0, errors.New(em)
	}

	hours, hourError := strconv.Atoi(value[0:2])
	minutes, minuteError := strconv.Atoi(value[2:4])
	seconds, secondError := strconv.ParseFloat(value[4:], 64)

	if hourError != nil || minuteError != nil || secondError != nil ||
		hours > 23 || minutes > 59 || seconds >= 61 {
		em := fmt.Sprintf("cannot parse time %q", value)
		return 0, errors.New(em)
	}

	milliseconds := int64(math.Round(seconds * 1000))

	timeOfDay := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(milliseconds)*time.Millisecond
	return timeOfDay, nil
}

// parseDate converts a ddmmyy value to midnight UTC on that day.  The
// two-digit year pivots at 70 - 24 is 2024, 98 is 1998.
func parseDate(value string) (time.Time, error) {

	if len(value) != 6 {
		em := fmt.Sprintf("cannot parse date %q", value)
		return time.Time{}, errors.New(em)
	}

	day, dayError := strconv.Atoi(value[0:2])
	month, monthError := strconv.Atoi(value[2:4])
	year, yearError := strconv.Atoi(value[4:6])

	if dayError != nil || monthError != nil || yearError != nil ||
		day < 1 || day > 31 || month < 1 || month > 12 {
		em := fmt.Sprintf("cannot parse date %q", value)
		return time.Time{}, errors.New(em)
	}

	if year < 70 {
		year += 2000
	} else {
		year += 1900
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// parseStatus converts the receiver status letter - A is valid
// (active), V is invalid (void).
func parseStatus(value string) (bool, error) {
	switch value {
	case "A":
		return true, nil
	case "V":
		return false, nil
	default:
		em := fmt.Sprintf("status should be A or V, got %q", value)
		return false, errors.New(em)
	}
}

// parseFAAMode checks a mode letter against the fixed table.
func parseFAAMode(value string) (FAAMode, error) {
	if len(value) == 1 {
		switch FAAMode(value[0]) {
		case ModeAutonomous, ModeDifferential, ModeEstimated,
			ModeFloatRTK, ModeManual, ModeNotValid, ModePrecise,
			ModeRealTimeKinematic, ModeSimulator:
			return FAAMode(value[0]), nil
		}
	}
	em := fmt.Sprintf("FAA mode should be one of ADEFMNPRS, got %q", value)
	return 0, errors.New(em)
}

// parseFixQuality converts a GGA fix quality digit.
func parseFixQuality(value string) (FixQuality, error) {
	quality, parseError := strconv.ParseUint(value, 10, 8)
	if parseError != nil || quality > uint64(QualitySimulator) {
		em := fmt.Sprintf("fix quality should be 0 to 8, got %q", value)
		return 0, errors.New(em)
	}
	return FixQuality(quality), nil
}

// parseFloat converts a mandatory numeric field.
func parseFloat(value, name string) (float64, error) {
	v, parseError := strconv.ParseFloat(value, 64)
	if parseError != nil {
		em := fmt.Sprintf("cannot parse %s %q", name, value)
		return 0, errors.New(em)
	}
	return v, nil
}

// parseOptionalFloat converts a numeric field that may be empty.
// Empty gives NaN.
func parseOptionalFloat(value, name string) (float64, error) {
	if len(value) == 0 {
		return math.NaN(), nil
	}
	return parseFloat(value, name)
}

// parseVariation converts a magnetic variation value and its
// east/west letter, negative west.  Both may be empty.
func parseVariation(value, direction string) (float64, error) {

	if len(value) == 0 {
		return math.NaN(), nil
	}

	v, parseError := parseFloat(value, "magnetic variation")
	if parseError != nil {
		return 0, parseError
	}

	switch direction {
	case "E":
		return v, nil
	case "W":
		return -v, nil
	default:
		em := fmt.Sprintf("variation direction should be E or W, got %q", direction)
		return 0, errors.New(em)
	}
}
