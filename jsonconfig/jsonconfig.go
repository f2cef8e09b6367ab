package jsonconfig

// The jsonconfig package reads the JSON configuration file shared by
// the GNSS display tools.
//
// An example config file:
//
//	{
//		"input": ["/dev/ttyACM0", "/dev/ttyACM1", "/dev/ttyACM2"],
//		"format": "",
//		"fuse_track": true,
//		"display_messages": true,
//		"stop_on_eof": true,
//		"timeout": 1,
//		"sleep_time": 2,
//		"wait_time_on_EOF_millis": 3,
//		"timeout_on_EOF_seconds": 4
//	}
//
// This example suits a tool running on a Raspberry Pi reading from a
// GNSS device over a serial USB connection.  The input list names the
// Linux devices that may represent the connection.  The format field
// forces the input to be treated as "nmea" or "rtcm"; when it's empty
// the tool classifies the input by content.  A tool reading a capture
// file sets stop_on_eof; a tool reading a live device leaves it unset
// and the EOF fields control how long to idle for more data.
//
// The package contains functions to read a configuration from a file,
// connect to the incoming data stream and attempt to reconnect if the
// stream dies.

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Input formats that may be forced by the format field.
const FormatNMEA = "nmea"
const FormatRTCM = "rtcm"

// Config contains the values from the JSON config file and a pointer
// to the system log.  To support unit testing, functions that need to
// write to the log should get it from the config or from an argument.
type Config struct {
	Filenames []string `json:"input"`

	// Format forces the input format - "nmea", "rtcm" or empty to
	// classify by content.
	Format string `json:"format"`

	// FuseTrack runs the track fusion engine over decoded NMEA input.
	FuseTrack bool `json:"fuse_track"`

	DisplayMessages bool `json:"display_messages"`

	// StopOnEOF stops at end of file.  Set this when the input is a
	// capture file; leave it unset for a live device, which delivers
	// EOF whenever the receiver pauses between fix cycles.
	StopOnEOF bool `json:"stop_on_eof"`

	// LostInputConnectionTimeout defines the input timeout in seconds.
	LostInputConnectionTimeout uint `json:"timeout"`

	// LostInputConnectionSleepTime is the time in seconds to sleep
	// between connection attempts.
	LostInputConnectionSleepTime uint `json:"sleep_time"`

	// WaitTimeOnEOF is the time in milliseconds to wait before reading
	// again after an EOF on a live device.
	WaitTimeOnEOF uint `json:"wait_time_on_EOF_millis"`

	// TimeoutOnEOF is the period in seconds of continuous EOF after
	// which a live device is presumed dead.
	TimeoutOnEOF uint `json:"timeout_on_EOF_seconds"`

	// SystemLog is the logger used for reporting and can be nil.  It's
	// not supplied in the JSON.
	SystemLog *log.Logger

	// logging indicates that logging should be done.
	logging bool
}

// GetJSONConfigFromFile gets the config from the file given by
// configFileName.
func GetJSONConfigFromFile(configFileName string, systemLog *log.Logger) (*Config, error) {

	jsonReader, fileErr := os.Open(configFileName)
	if fileErr != nil {
		return nil, fileErr
	}
	defer jsonReader.Close()

	config, jsonError := getJSONConfig(jsonReader, systemLog)
	if jsonError != nil {
		return nil, jsonError
	}

	return config, nil
}

// getJSONConfig reads from the given source and returns the config.
func getJSONConfig(jsonSource io.Reader, systemLog *log.Logger) (*Config, error) {

	jsonBytes, jsonReadError := io.ReadAll(jsonSource)
	if jsonReadError != nil {
		// We can't read the config - permissions?
		if systemLog != nil {
			systemLog.Printf("cannot read the JSON config - %s\n", jsonReadError.Error())
		}
		return nil, jsonReadError
	}

	var config Config
	jsonParseError := json.Unmarshal(jsonBytes, &config)
	if jsonParseError != nil {
		if systemLog != nil {
			systemLog.Printf("cannot parse the JSON config - %s\n", jsonParseError.Error())
		}
		return nil, jsonParseError
	}

	switch config.Format {
	case "", FormatNMEA, FormatRTCM:
		// Legal.
	default:
		em := fmt.Errorf("format should be %q, %q or empty, got %q",
			FormatNMEA, FormatRTCM, config.Format)
		if systemLog != nil {
			systemLog.Println(em.Error())
		}
		return nil, em
	}

	// Set the fields that are not set by the JSON.
	config.SystemLog = systemLog
	config.logging = systemLog != nil

	return &config, nil
}

// WaitAndConnectToInput tries repeatedly (potentially indefinitely) to
// connect to one of the input files whose names are given.
func WaitAndConnectToInput(config *Config) io.Reader {
	for {
		reader := findInputDevice(config)
		if reader != nil {
			if config.logging {
				config.SystemLog.Println(
					"waitAndConnectToInput: connected to GNSS source")
			}
			return reader
		}
		if config.logging {
			config.SystemLog.Println(
				"waitAndConnectToInput: failed to connect to GNSS source.  Retrying")
		}
		sleeptime := time.Duration(config.LostInputConnectionSleepTime) * time.Second
		time.Sleep(sleeptime)
	}
}

// findInputDevice searches the given list of input files.  If one of
// the named files exists and can be opened for reading, it returns a
// Reader connected to it.
func findInputDevice(config *Config) io.Reader {
	// The device names "/dev/ttyACM0" etc on a Raspberry Pi DO NOT
	// relate to the physical USB sockets on the circuit board.  They
	// are used in turn.  After the Pi boots, the first connection uses
	// "/dev/ttyACM0".  If the GNSS device loses power briefly, the
	// restored connection is represented by "/dev/ttyACM1", and so on,
	// even though the USB plug is in the same port.  So the tool has
	// to scan the whole list on every reconnection.

	file := getInputFile(config)
	if file == nil {
		// None of the input files are present.
		return nil
	}

	return file
}

// getInputFile returns a connection to the first file in the given
// list that it can open for reading, or nil if it can't open any.
func getInputFile(config *Config) *os.File {
	for _, name := range config.Filenames {
		file, err := os.Open(name)
		if err == nil {
			if config.logging {
				config.SystemLog.Printf("getInputFile: found %s", name)
				// Turn off logging after the first successful scan.
				config.logging = false
			}
			return file
		}
	}

	return nil
}
