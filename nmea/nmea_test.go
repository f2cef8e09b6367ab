package nmea

import (
	"math"
	"strings"
	"testing"
	"time"
)

// EqualWithin checks that two floats are equal to within the given
// number of decimal places.
func EqualWithin(places uint, f1, f2 float64) bool {
	limit := math.Pow(0.1, float64(places))
	return math.Abs(f1-f2) < limit
}

// TestParseGGA checks a GGA sentence against known field values.
func TestParseGGA(t *testing.T) {

	const line = "$GPGGA,151924,3723.454444,N,12202.269777,W,2,09,1.9,-17.49,M,-25.67,M,,*68"

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	gga, ok := sentence.(*GGA)
	if !ok {
		t.Fatalf("want a *GGA, got %T", sentence)
	}

	if gga.Talker != "GP" {
		t.Errorf("want talker GP, got %q", gga.Talker)
	}
	if gga.Type != "GGA" {
		t.Errorf("want type GGA, got %q", gga.Type)
	}

	wantTime := 15*time.Hour + 19*time.Minute + 24*time.Second
	if gga.TimeOfDay != wantTime {
		t.Errorf("want time of day %v, got %v", wantTime, gga.TimeOfDay)
	}

	if !EqualWithin(6, 37.390907, gga.Latitude) {
		t.Errorf("want latitude 37.390907, got %f", gga.Latitude)
	}
	if !EqualWithin(6, -122.037830, gga.Longitude) {
		t.Errorf("want longitude -122.037830, got %f", gga.Longitude)
	}
	if gga.FixQuality != QualityDifferential {
		t.Errorf("want quality %d, got %d", QualityDifferential, gga.FixQuality)
	}
	if gga.SVCount != 9 {
		t.Errorf("want 9 satellites, got %d", gga.SVCount)
	}
	if gga.HDOP != 1.9 {
		t.Errorf("want HDOP 1.9, got %f", gga.HDOP)
	}
	if gga.Height != -17.49 {
		t.Errorf("want height -17.49, got %f", gga.Height)
	}
	if gga.GeoidalSeparation != -25.67 {
		t.Errorf("want geoidal separation -25.67, got %f", gga.GeoidalSeparation)
	}
}

// TestParseRMC checks an RMC sentence, including the combination of
// the date and time fields into a full UTC timestamp.
func TestParseRMC(t *testing.T) {

	const line = "$GPRMC,151924.00,A,3723.454444,N,12202.269777,W,5.0,054.7,200524,020.3,E,D*26"

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	rmc, ok := sentence.(*RMC)
	if !ok {
		t.Fatalf("want an *RMC, got %T", sentence)
	}

	if !rmc.Valid {
		t.Error("want a valid fix")
	}
	if !EqualWithin(6, 37.390907, rmc.Latitude) {
		t.Errorf("want latitude 37.390907, got %f", rmc.Latitude)
	}
	if rmc.SpeedKnots != 5.0 {
		t.Errorf("want speed 5.0, got %f", rmc.SpeedKnots)
	}
	if rmc.TrackDegreesTrue != 54.7 {
		t.Errorf("want track 54.7, got %f", rmc.TrackDegreesTrue)
	}
	if rmc.MagneticVariation != 20.3 {
		t.Errorf("want variation 20.3, got %f", rmc.MagneticVariation)
	}
	if rmc.Mode != ModeDifferential {
		t.Errorf("want mode D, got %c", rmc.Mode)
	}

	wantTime := time.Date(2024, time.May, 20, 15, 19, 24, 0, time.UTC)
	if !rmc.Time.Equal(wantTime) {
		t.Errorf("want time %v, got %v", wantTime, rmc.Time)
	}
}

// TestParseRMCLastCentury checks the two-digit year pivot - 98 is
// 1998 - and the sign flip in the southern hemisphere.
func TestParseRMCLastCentury(t *testing.T) {

	const line = "$GPRMC,081836,A,3751.65,S,14507.36,E,000.0,360.0,130998,011.3,E,A*0F"

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	rmc := sentence.(*RMC)

	if rmc.Time.Year() != 1998 {
		t.Errorf("want year 1998, got %d", rmc.Time.Year())
	}
	if !EqualWithin(6, -37.860833, rmc.Latitude) {
		t.Errorf("want latitude -37.860833, got %f", rmc.Latitude)
	}
	if !EqualWithin(6, 145.122667, rmc.Longitude) {
		t.Errorf("want longitude 145.122667, got %f", rmc.Longitude)
	}
	if rmc.Mode != ModeAutonomous {
		t.Errorf("want mode A, got %c", rmc.Mode)
	}
}

// TestParseGLL checks a GLL sentence.
func TestParseGLL(t *testing.T) {

	const line = "$GPGLL,4916.45,N,12311.12,W,225444,A,A*5C"

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	gll, ok := sentence.(*GLL)
	if !ok {
		t.Fatalf("want a *GLL, got %T", sentence)
	}

	if !EqualWithin(6, 49.274167, gll.Latitude) {
		t.Errorf("want latitude 49.274167, got %f", gll.Latitude)
	}
	if !EqualWithin(6, -123.185333, gll.Longitude) {
		t.Errorf("want longitude -123.185333, got %f", gll.Longitude)
	}

	wantTime := 22*time.Hour + 54*time.Minute + 44*time.Second
	if gll.TimeOfDay != wantTime {
		t.Errorf("want time of day %v, got %v", wantTime, gll.TimeOfDay)
	}
	if !gll.Valid {
		t.Error("want a valid fix")
	}
}

// TestParseVTG checks a VTG sentence.
func TestParseVTG(t *testing.T) {

	const line = "$GPVTG,054.7,T,034.4,M,5.0,N,9.3,K,D*2C"

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	vtg, ok := sentence.(*VTG)
	if !ok {
		t.Fatalf("want a *VTG, got %T", sentence)
	}

	if vtg.TrackDegreesTrue != 54.7 {
		t.Errorf("want track 54.7, got %f", vtg.TrackDegreesTrue)
	}
	if vtg.TrackDegreesMagnetic != 34.4 {
		t.Errorf("want magnetic track 34.4, got %f", vtg.TrackDegreesMagnetic)
	}
	if vtg.SpeedKnots != 5.0 {
		t.Errorf("want speed 5.0, got %f", vtg.SpeedKnots)
	}
	if vtg.SpeedKmH != 9.3 {
		t.Errorf("want speed 9.3 km/h, got %f", vtg.SpeedKmH)
	}
	if vtg.Mode != ModeDifferential {
		t.Errorf("want mode D, got %c", vtg.Mode)
	}
}

// TestParseRawTypes checks that the recognised but unparsed types come
// through as raw sentences with the checksum validated.
func TestParseRawTypes(t *testing.T) {

	lines := []string{
		"$GPZDA,160012.71,11,03,2004,-1,00*7D",
		"$GPTXT,01,01,02,u-blox ag - www.u-blox.com*50",
		"$GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45*75",
	}
	wantTypes := []string{"ZDA", "TXT", "GSV"}

	for i, line := range lines {
		sentence, err := ParseSentence(line)
		if err != nil {
			t.Errorf("%s: ParseSentence failed - %v", line, err)
			continue
		}
		raw, ok := sentence.(*Raw)
		if !ok {
			t.Errorf("%s: want a *Raw, got %T", line, sentence)
			continue
		}
		if raw.Type != wantTypes[i] {
			t.Errorf("want type %s, got %s", wantTypes[i], raw.Type)
		}
	}
}

// TestParseErrors checks the rejection cases - bad envelope, bad
// checksum, unknown type, wrong arity, bad enum letters.
func TestParseErrors(t *testing.T) {

	var testData = []struct {
		description string
		line        string
	}{
		{"no dollar", "GPGLL,4916.45,N,12311.12,W,225444,A,A*5C"},
		{"too short", "$GP*00"},
		{"no checksum marker", "$GPGLL,4916.45,N,12311.12,W,225444,A,A"},
		{"checksum not hex", "$GPGLL,4916.45,N,12311.12,W,225444,A,A*ZZ"},
		{"checksum mismatch", "$GPGLL,4916.45,N,12311.12,W,225444,A,A*5D"},
		{"short address", MakeSentence("GPL", []string{"4916.45", "N"})},
		{"unknown type", "$GPAAM,A,A,0.10,N,WPTNME*32"},
		{"wrong arity", MakeSentence("GPGLL", []string{"4916.45", "N", "12311.12", "W", "225444", "A"})},
		{"bad status", MakeSentence("GPGLL", []string{"4916.45", "N", "12311.12", "W", "225444", "X", "A"})},
		{"bad FAA mode", MakeSentence("GPGLL", []string{"4916.45", "N", "12311.12", "W", "225444", "A", "X"})},
		{"bad hemisphere", MakeSentence("GPGLL", []string{"4916.45", "Q", "12311.12", "W", "225444", "A", "A"})},
		{"bad fix quality", MakeSentence("GPGGA", []string{"151924", "3723.45", "N", "12202.26", "W", "9", "09", "1.9", "-17.49", "M", "-25.67", "M", "", ""})},
		{"bad date", MakeSentence("GPRMC", []string{"151924", "A", "3723.45", "N", "12202.26", "W", "5.0", "054.7", "990024", "", "", "A"})},
	}

	for _, td := range testData {
		if _, err := ParseSentence(td.line); err == nil {
			t.Errorf("%s: want an error, got nil", td.description)
		}
	}
}

// TestParseMissingPosition checks that empty position fields give the
// NaN sentinel rather than a rejection.
func TestParseMissingPosition(t *testing.T) {

	line := MakeSentence("GPGLL", []string{"", "", "", "", "225444", "V", "N"})

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	gll := sentence.(*GLL)
	if !math.IsNaN(gll.Latitude) {
		t.Errorf("want NaN latitude, got %f", gll.Latitude)
	}
	if !math.IsNaN(gll.Longitude) {
		t.Errorf("want NaN longitude, got %f", gll.Longitude)
	}
	if gll.Valid {
		t.Error("want an invalid fix")
	}
}

// TestParseLeadingNoise checks that text before the "$" is skipped.
func TestParseLeadingNoise(t *testing.T) {

	const line = "\x03\xfaxx$GPGLL,4916.45,N,12311.12,W,225444,A,A*5C\r\n"

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}
	if sentence.GetType() != "GLL" {
		t.Errorf("want type GLL, got %s", sentence.GetType())
	}
}

// TestMakeSentenceRoundTrip checks that formatting a field set and
// decoding the result gives back the same values.
func TestMakeSentenceRoundTrip(t *testing.T) {

	fields := []string{"151924.00", "3723.454444", "N", "12202.269777", "W",
		"4", "09", "1.9", "-17.49", "M", "-25.67", "M", "2.0", "0136"}

	line := MakeSentence("GNGGA", fields)
	if !strings.HasPrefix(line, "$GNGGA,") {
		t.Fatalf("malformed sentence %q", line)
	}

	sentence, err := ParseSentence(line)
	if err != nil {
		t.Fatalf("ParseSentence failed - %v", err)
	}

	gga := sentence.(*GGA)
	if gga.Talker != "GN" {
		t.Errorf("want talker GN, got %q", gga.Talker)
	}
	if gga.FixQuality != QualityRTKInteger {
		t.Errorf("want quality %d, got %d", QualityRTKInteger, gga.FixQuality)
	}
	if gga.DGPSAge != "2.0" {
		t.Errorf("want DGPS age 2.0, got %q", gga.DGPSAge)
	}
	if gga.DGPSStationID != "0136" {
		t.Errorf("want DGPS station 0136, got %q", gga.DGPSStationID)
	}
}

// TestDecodeAll checks the decoder's counters over a mixed batch.
func TestDecodeAll(t *testing.T) {

	lines := []string{
		"$GPGGA,151924,3723.454444,N,12202.269777,W,2,09,1.9,-17.49,M,-25.67,M,,*68",
		"$GPGLL,4916.45,N,12311.12,W,225444,A,A*5D", // bad checksum
		"$GPVTG,054.7,T,034.4,M,5.0,N,9.3,K,D*2C",
		"not a sentence at all",
	}

	decoder := NewDecoder(nil)
	sentences := decoder.DecodeAll(lines)

	if len(sentences) != 2 {
		t.Fatalf("want 2 sentences, got %d", len(sentences))
	}
	if sentences[0].GetType() != "GGA" {
		t.Errorf("want GGA, got %s", sentences[0].GetType())
	}
	if sentences[1].GetType() != "VTG" {
		t.Errorf("want VTG, got %s", sentences[1].GetType())
	}
	if decoder.Successes != 2 {
		t.Errorf("want 2 successes, got %d", decoder.Successes)
	}
	if decoder.Failures != 2 {
		t.Errorf("want 2 failures, got %d", decoder.Failures)
	}
}

// TestDecodeAllWithEmptyInput checks that no input gives zero counts.
func TestDecodeAllWithEmptyInput(t *testing.T) {

	decoder := NewDecoder(nil)
	sentences := decoder.DecodeAll(nil)

	if len(sentences) != 0 {
		t.Errorf("want 0 sentences, got %d", len(sentences))
	}
	if decoder.Successes != 0 || decoder.Failures != 0 {
		t.Errorf("want 0/0 counters, got %d/%d",
			decoder.Successes, decoder.Failures)
	}
}

// TestHandleSentences checks the channel mode.
func TestHandleSentences(t *testing.T) {

	lines := []string{
		"$GPGLL,4916.45,N,12311.12,W,225444,A,A*5C",
		"garbage",
		"$GPVTG,054.7,T,034.4,M,5.0,N,9.3,K,D*2C",
	}

	ch_in := make(chan string, len(lines))
	for _, line := range lines {
		ch_in <- line
	}
	close(ch_in)

	ch_out := make(chan Sentence, 10)

	decoder := NewDecoder(nil)
	decoder.HandleSentences(ch_in, ch_out)

	var sentences []Sentence
	for sentence := range ch_out {
		sentences = append(sentences, sentence)
	}

	if len(sentences) != 2 {
		t.Fatalf("want 2 sentences, got %d", len(sentences))
	}
	if decoder.Successes != 2 || decoder.Failures != 1 {
		t.Errorf("want 2/1 counters, got %d/%d",
			decoder.Successes, decoder.Failures)
	}
}

// TestChecksum checks the checksum function against a worked example.
func TestChecksum(t *testing.T) {
	// From the GLL sentence used above, body between $ and *.
	const body = "GPGLL,4916.45,N,12311.12,W,225444,A,A"
	if sum := Checksum(body); sum != 0x5c {
		t.Errorf("want checksum 5C, got %02X", sum)
	}
}
