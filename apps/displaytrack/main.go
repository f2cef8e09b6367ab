// displaytrack reads a stream of GNSS data from a file or a live
// serial connection, decides whether it contains NMEA sentences or
// RTCM version 3 message frames and writes a readable version of the
// contents to the standard output channel.
//
// NMEA is a line-oriented text format.  Each line is a sentence
// carrying one report from the receiver - a position fix, the ground
// speed, the satellites in view and so on.  A receiver typically emits
// a batch of sentences every second.  When the fuse_track option is
// set in the config, the tool collects each batch of position
// sentences, cross-checks them against each other and displays one
// fused track point per batch, along with the distance and heading
// from the previous point.  Inconsistent batches are rejected and
// logged rather than displayed.
//
// Raw RTCM3 is a tightly compressed binary format, not designed to be
// readable by a human.  The tool displays each message frame that
// survives the CRC check.  Frames of the types it understands (base
// station position, some observation and text messages) are decoded
// field by field.  Other types are displayed as a hex dump with just
// the message type number.
//
// The tool is useful for trouble-shooting, particularly when you have
// a misbehaving device and you are trying to figure out what it's
// doing, if anything.  You can see what the device is sending, whether
// the stream is really in the format you expect and whether the
// position sentences in it agree with each other.
//
// Usage:
//
//	displaytrack config.json
//
// The config file is JSON, for example:
//
//	{
//	    "input": ["data.captured"],
//	    "format": "",
//	    "fuse_track": true,
//	    "display_messages": true,
//	    "stop_on_eof": true,
//	    "wait_time_on_EOF_millis": 100,
//	    "timeout_on_EOF_seconds": 5
//	}
//
// The input list names the files to try in turn - capture files or
// serial devices such as /dev/ttyACM0 on a Raspberry Pi.  When the
// format field is empty the tool takes a probe from the front of the
// stream and classifies it by content.  A capture file sets
// stop_on_eof.  A live device leaves it unset and the EOF fields say
// how long to idle waiting for more data before giving up.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/goblimey/go-gnss/filehandler"
	"github.com/goblimey/go-gnss/geodesy"
	"github.com/goblimey/go-gnss/jsonconfig"
	"github.com/goblimey/go-gnss/nmea"
	"github.com/goblimey/go-gnss/rtcm/handler"
	"github.com/goblimey/go-gnss/rtcm/utils"
	"github.com/goblimey/go-gnss/track"

	"github.com/goblimey/go-tools/clock"
)

// probeLength is the number of bytes taken from the front of the
// stream to classify its format.  A GNSS device emits a batch of
// reports every second, so this is a few seconds worth of data.
const probeLength = 4096

func main() {

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s configfile", os.Args[0])
	}
	appName := os.Args[0]

	systemLog := utils.GetDailyLogger("displaytrack")

	config, configError := jsonconfig.GetJSONConfigFromFile(os.Args[1], systemLog)
	if configError != nil {
		log.Fatalf("%s: cannot read the config %s - %v",
			appName, os.Args[1], configError)
	}

	reader := jsonconfig.WaitAndConnectToInput(config)

	runError := Run(config, reader, os.Stdout, systemLog)
	if runError != nil && runError != io.EOF {
		log.Fatalf("%s: %v", appName, runError)
	}

	os.Exit(0)
}

// Run classifies the input stream and drives the matching display
// pipeline until the stream ends.  The returned error is the read
// error that ended the run, normally io.EOF.
func Run(config *jsonconfig.Config, reader io.Reader, writer io.Writer, systemLog *log.Logger) error {

	// The probe bytes stay in the buffered reader, so the pipeline
	// sees the whole stream from the start.
	bufferedReader := bufio.NewReaderSize(reader, probeLength)

	format := chooseFormat(config, bufferedReader)

	var retryInterval, eofTimeout time.Duration
	if !config.StopOnEOF {
		retryInterval = time.Duration(config.WaitTimeOnEOF) * time.Millisecond
		eofTimeout = time.Duration(config.TimeoutOnEOF) * time.Second
	}

	fh := filehandler.New(retryInterval, eofTimeout, clock.NewSystemClock(), systemLog)

	ctx := context.Background()

	switch format {

	case filehandler.FormatRTCM:
		messageChan := make(chan handler.Message, 10)
		done := make(chan struct{})
		go func() {
			displayMessages(messageChan, writer, config.DisplayMessages)
			close(done)
		}()
		readError := fh.HandleRTCM(ctx, bufferedReader, messageChan)
		<-done
		fmt.Fprintf(writer, "\n%d messages decoded, %d failures\n",
			fh.RTCMHandler.Successes, fh.RTCMHandler.Failures)
		return readError

	case filehandler.FormatNMEA:
		if config.FuseTrack {
			nodeChan := make(chan track.Node, 10)
			done := make(chan struct{})
			go func() {
				displayNodes(nodeChan, writer)
				close(done)
			}()
			readError := fh.HandleTrack(ctx, bufferedReader, nodeChan)
			<-done
			fmt.Fprintf(writer, "\n%d track points, %d batches rejected\n",
				fh.Engine.Emitted, fh.Engine.Rejected)
			return readError
		}

		sentenceChan := make(chan nmea.Sentence, 10)
		done := make(chan struct{})
		go func() {
			displaySentences(sentenceChan, writer, config.DisplayMessages)
			close(done)
		}()
		readError := fh.HandleNMEA(ctx, bufferedReader, sentenceChan)
		<-done
		fmt.Fprintf(writer, "\n%d sentences decoded, %d failures\n",
			fh.Decoder.Successes, fh.Decoder.Failures)
		return readError

	default:
		return fmt.Errorf("cannot classify the input as NMEA or RTCM")
	}
}

// chooseFormat returns the format forced by the config, or failing
// that, the format found by probing the front of the stream.
func chooseFormat(config *jsonconfig.Config, bufferedReader *bufio.Reader) filehandler.Format {

	switch config.Format {
	case jsonconfig.FormatNMEA:
		return filehandler.FormatNMEA
	case jsonconfig.FormatRTCM:
		return filehandler.FormatRTCM
	}

	// Peek fills the buffer and returns what it can, which may be
	// less than a full probe if the stream is short.
	probe, _ := bufferedReader.Peek(probeLength)
	return filehandler.Classify(probe)
}

// displayMessages receives RTCM messages from the channel and writes
// a readable version of each to the writer.  It runs in a goroutine
// and returns when the channel is closed.  When display is false it
// just drains the channel, leaving only the closing summary.
func displayMessages(messageChan chan handler.Message, writer io.Writer, display bool) {
	for message := range messageChan {
		if display {
			fmt.Fprintf(writer, "%s\n", message.String())
		}
	}
}

// displaySentences receives NMEA sentences from the channel and
// writes each to the writer.
func displaySentences(sentenceChan chan nmea.Sentence, writer io.Writer, display bool) {
	for sentence := range sentenceChan {
		if display {
			fmt.Fprintf(writer, "%v\n", sentence)
		}
	}
}

// displayNodes receives fused track points from the channel and
// writes each to the writer, along with the distance and heading from
// the previous point.
func displayNodes(nodeChan chan track.Node, writer io.Writer) {

	var lastPosition *geodesy.Position

	for node := range nodeChan {
		fmt.Fprintf(writer, "%s\n", node.String())

		position := geodesy.Position{
			Latitude:  node.Latitude,
			Longitude: node.Longitude,
			Height:    node.Height,
		}
		if lastPosition != nil {
			fmt.Fprintf(writer, "    moved %.1f m, heading %.1f\n",
				geodesy.Distance(*lastPosition, position),
				geodesy.Heading(*lastPosition, position))
		}
		lastPosition = &position
	}
}
