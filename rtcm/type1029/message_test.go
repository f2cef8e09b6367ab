package type1029

import (
	"log/slog"
	"testing"

	"github.com/goblimey/go-gnss/rtcm/testdata"
)

// TestGetMessage checks that GetMessage correctly interprets a bit
// stream containing a message type 1029.
func TestGetMessage(t *testing.T) {

	message, err := GetMessage(testdata.MessageFrame1029, slog.LevelInfo)
	if err != nil {
		t.Fatalf("GetMessage failed - %v", err)
	}

	if message.MessageType != 1029 {
		t.Errorf("want message type 1029, got %d", message.MessageType)
	}
	if message.StationID != 1234 {
		t.Errorf("want stationID 1234, got %d", message.StationID)
	}
	if message.ModifiedJulianDay != 60431 {
		t.Errorf("want modified julian day 60431, got %d", message.ModifiedJulianDay)
	}
	if message.SecondsOfDay != 55260 {
		t.Errorf("want seconds of day 55260, got %d", message.SecondsOfDay)
	}
	if message.CharacterCount != 10 {
		t.Errorf("want character count 10, got %d", message.CharacterCount)
	}
	if message.Text != "STATION OK" {
		t.Errorf("want text \"STATION OK\", got %q", message.Text)
	}
}

// TestGetMessageWithOverrun checks that GetMessage rejects a bit
// stream that is too short to hold the fixed part.
func TestGetMessageWithOverrun(t *testing.T) {

	const want = "overrun - expected at least 72 bits in a message type 1029, got 32"

	_, err := GetMessage(testdata.MessageFrame1029[:10], slog.LevelInfo)
	if err == nil {
		t.Fatal("want an overrun error, got nil")
	}
	if err.Error() != want {
		t.Errorf("want %s\ngot %s", want, err.Error())
	}
}

// TestGetMessageWithBadCount checks that GetMessage rejects a message
// whose code unit count runs past the end of the message.  The count
// is a field in the message, so it can't be trusted.
func TestGetMessageWithBadCount(t *testing.T) {

	const want = "overrun - 200 code units need 1672 bits in a message type 1029, got 152"

	_, err := GetMessage(testdata.MessageFrame1029BadCount, slog.LevelInfo)
	if err == nil {
		t.Fatal("want an overrun error, got nil")
	}
	if err.Error() != want {
		t.Errorf("want %s\ngot %s", want, err.Error())
	}
}

// TestGetMessageWithWrongType checks that GetMessage rejects a bit
// stream containing a message of some other type.
func TestGetMessageWithWrongType(t *testing.T) {

	const want = "expected message type 1029 got 1033"

	_, err := GetMessage(testdata.MessageFrame1033, slog.LevelInfo)
	if err == nil {
		t.Fatal("want an error, got nil")
	}
	if err.Error() != want {
		t.Errorf("want %s\ngot %s", want, err.Error())
	}
}

// TestString checks the readable form at the two logging levels.
func TestString(t *testing.T) {

	message, err := GetMessage(testdata.MessageFrame1029, slog.LevelInfo)
	if err != nil {
		t.Fatalf("GetMessage failed - %v", err)
	}
	display := message.String()
	if len(display) == 0 {
		t.Error("want a readable display, got an empty string")
	}

	debugMessage, err := GetMessage(testdata.MessageFrame1029, slog.LevelDebug)
	if err != nil {
		t.Fatalf("GetMessage failed - %v", err)
	}
	if len(debugMessage.String()) <= len(display) {
		t.Error("want the debug display to be longer than the info display")
	}
}
