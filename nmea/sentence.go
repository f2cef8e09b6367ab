package nmea

import (
	"fmt"
	"time"
)

// FAAMode is the single-letter positioning mode code carried by NMEA
// sentences from version 2.3 on.  The legal letters are a fixed table;
// any other letter rejects the owning sentence.
type FAAMode byte

const (
	ModeAutonomous        FAAMode = 'A'
	ModeDifferential      FAAMode = 'D'
	ModeEstimated         FAAMode = 'E'
	ModeFloatRTK          FAAMode = 'F'
	ModeManual            FAAMode = 'M'
	ModeNotValid          FAAMode = 'N'
	ModePrecise           FAAMode = 'P'
	ModeRealTimeKinematic FAAMode = 'R'
	ModeSimulator         FAAMode = 'S'
)

// FixQuality is the integer-coded accuracy/method classification from
// a GGA sentence, analogous to the FAA mode.
type FixQuality uint

const (
	QualityInvalid FixQuality = iota
	QualityGNSS
	QualityDifferential
	QualityPPS
	QualityRTKInteger
	QualityRTKFloat
	QualityEstimated
	QualityManual
	QualitySimulator
)

// Sentence is a decoded NMEA sentence.  The concrete type is one of
// GGA, RMC, GLL, VTG or Raw, chosen by the 3-character sentence type
// code in the address field.
type Sentence interface {
	// GetTalker returns the 2-character system code, for example "GP"
	// for GPS or "GN" for a multi-system fix.
	GetTalker() string

	// GetType returns the 3-character sentence type code.
	GetType() string
}

// Base carries the address field common to all sentences.
type Base struct {
	// Talker is the 2-character system code.
	Talker string `json:"talker,omitempty"`

	// Type is the 3-character sentence type code.
	Type string `json:"type,omitempty"`
}

func (base Base) GetTalker() string { return base.Talker }

func (base Base) GetType() string { return base.Type }

// GGA is a global positioning system fix - position, fix quality and
// height.  Only the GGA carries the height.
type GGA struct {
	Base

	// TimeOfDay is the UTC time of the fix as an offset from midnight.
	TimeOfDay time.Duration `json:"time_of_day"`

	// Latitude in degrees, negative south.  NaN if the sentence has no
	// position.
	Latitude float64 `json:"latitude"`

	// Longitude in degrees, negative west.  NaN if the sentence has no
	// position.
	Longitude float64 `json:"longitude"`

	// FixQuality is the integer-coded fix quality.
	FixQuality FixQuality `json:"fix_quality"`

	// SVCount is the number of satellites in use.
	SVCount uint `json:"sv_count"`

	// HDOP is the horizontal dilution of precision.
	HDOP float64 `json:"hdop"`

	// Height is the orthometric height (antenna above the geoid) in
	// metres.
	Height float64 `json:"height"`

	// GeoidalSeparation is the geoid to ellipsoid separation in metres.
	GeoidalSeparation float64 `json:"geoidal_separation"`

	// DGPSAge is the age of the differential corrections in seconds,
	// empty if none are in use.
	DGPSAge string `json:"dgps_age,omitempty"`

	// DGPSStationID is the differential reference station, empty if no
	// corrections are in use.
	DGPSStationID string `json:"dgps_station_id,omitempty"`
}

// String returns a text version of a GGA sentence.
func (gga *GGA) String() string {
	return fmt.Sprintf("%s%s: position (%.6f, %.6f), height %.2f m, quality %d, %d satellites, HDOP %.1f",
		gga.Talker, gga.Type, gga.Latitude, gga.Longitude, gga.Height,
		gga.FixQuality, gga.SVCount, gga.HDOP)
}

// RMC is the recommended minimum sentence - position, speed, course,
// date and time.  Only the RMC carries the date.
type RMC struct {
	Base

	// TimeOfDay is the UTC time of the fix as an offset from midnight.
	TimeOfDay time.Duration `json:"time_of_day"`

	// Time is the full UTC timestamp, the date field combined with the
	// time of day.
	Time time.Time `json:"time"`

	// Valid is true if the receiver's status field is A (active).
	Valid bool `json:"valid"`

	// Latitude in degrees, negative south.  NaN if no position.
	Latitude float64 `json:"latitude"`

	// Longitude in degrees, negative west.  NaN if no position.
	Longitude float64 `json:"longitude"`

	// SpeedKnots is the speed over the ground in knots.
	SpeedKnots float64 `json:"speed_knots"`

	// TrackDegreesTrue is the course made good relative to true north.
	// NaN if the sentence has no course.
	TrackDegreesTrue float64 `json:"track_degrees_true"`

	// MagneticVariation in degrees, negative west.  NaN if the
	// sentence has no variation.
	MagneticVariation float64 `json:"magnetic_variation"`

	// Mode is the FAA mode letter.
	Mode FAAMode `json:"mode"`
}

// String returns a text version of an RMC sentence.
func (rmc *RMC) String() string {
	return fmt.Sprintf("%s%s: position (%.6f, %.6f), speed %.1f kt, %s, valid %v, mode %c",
		rmc.Talker, rmc.Type, rmc.Latitude, rmc.Longitude, rmc.SpeedKnots,
		rmc.Time.Format(time.RFC3339), rmc.Valid, rmc.Mode)
}

// GLL is a geographic position - latitude and longitude with time and
// status.
type GLL struct {
	Base

	// Latitude in degrees, negative south.  NaN if no position.
	Latitude float64 `json:"latitude"`

	// Longitude in degrees, negative west.  NaN if no position.
	Longitude float64 `json:"longitude"`

	// TimeOfDay is the UTC time of the fix as an offset from midnight.
	TimeOfDay time.Duration `json:"time_of_day"`

	// Valid is true if the receiver's status field is A (active).
	Valid bool `json:"valid"`

	// Mode is the FAA mode letter.
	Mode FAAMode `json:"mode"`
}

// String returns a text version of a GLL sentence.
func (gll *GLL) String() string {
	return fmt.Sprintf("%s%s: position (%.6f, %.6f), valid %v, mode %c",
		gll.Talker, gll.Type, gll.Latitude, gll.Longitude, gll.Valid, gll.Mode)
}

// VTG is the track made good and ground speed.
type VTG struct {
	Base

	// TrackDegreesTrue is the course made good relative to true north.
	// NaN if the sentence has no course.
	TrackDegreesTrue float64 `json:"track_degrees_true"`

	// TrackDegreesMagnetic is the course made good relative to
	// magnetic north.  NaN if the sentence has no magnetic course.
	TrackDegreesMagnetic float64 `json:"track_degrees_magnetic"`

	// SpeedKnots is the speed over the ground in knots.
	SpeedKnots float64 `json:"speed_knots"`

	// SpeedKmH is the speed over the ground in kilometres per hour.
	// NaN if the sentence has no km/h speed.
	SpeedKmH float64 `json:"speed_km_h"`

	// Mode is the FAA mode letter.
	Mode FAAMode `json:"mode"`
}

// String returns a text version of a VTG sentence.
func (vtg *VTG) String() string {
	return fmt.Sprintf("%s%s: track %.1f true, speed %.1f kt, mode %c",
		vtg.Talker, vtg.Type, vtg.TrackDegreesTrue, vtg.SpeedKnots, vtg.Mode)
}

// Raw is a sentence of a recognised type that the decoder carries
// without breaking out the fields - GSV, GSA, TXT, ZDA and GST.  The
// checksum has been validated.
type Raw struct {
	Base

	// Fields are the data fields, in order, still as text.
	Fields []string `json:"fields,omitempty"`

	// Sentence is the whole sentence as received, without the line
	// terminator.
	Sentence string `json:"sentence,omitempty"`
}

// String returns the sentence as received.
func (raw *Raw) String() string { return raw.Sentence }
