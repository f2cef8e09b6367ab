package filehandler

import (
	"bufio"
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/goblimey/go-gnss/nmea"
	"github.com/goblimey/go-gnss/rtcm/handler"
	"github.com/goblimey/go-gnss/track"

	"github.com/dolmen-go/contextio"
	"github.com/goblimey/go-tools/clock"
)

// The filehandler package reads a byte stream that contains NMEA
// sentences or RTCM3 message frames, decides which, and drives the
// matching decode pipeline.  The stream may be a capture file, which
// ends, or a live serial connection, which delivers EOF whenever the
// receiver pauses between fix cycles, so an EOF is not necessarily
// fatal.  The EOF handling is controlled by two durations - how long
// to wait before retrying a read and how long a run of continuous EOFs
// means the connection is dead.
//
// Time is read through a clock interface so that the EOF timeout logic
// can be tested with canned times.

// Format is the result of classifying a stream.
type Format int

const (
	FormatUnknown Format = iota
	FormatNMEA
	FormatRTCM
)

func (format Format) String() string {
	switch format {
	case FormatNMEA:
		return "NMEA"
	case FormatRTCM:
		return "RTCM"
	default:
		return "unknown"
	}
}

// Classify decides the format of a probe taken from the start of the
// data.  A probe where at least 90% of the lines start with "$" is
// NMEA.  Otherwise, if the framing state machine finds at least one
// valid RTCM message frame in the probe, it's RTCM.  Anything else is
// unknown - including an empty probe.
func Classify(probe []byte) Format {

	if len(probe) == 0 {
		return FormatUnknown
	}

	lines := strings.Split(string(probe), "\n")
	total := 0
	dollar := 0
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		total++
		if strings.HasPrefix(line, "$") {
			dollar++
		}
	}
	if total > 0 && dollar*10 >= total*9 {
		return FormatNMEA
	}

	// Not text.  Try the RTCM framer over the probe.  The probe is
	// short so a scan of the whole of it is cheap.
	probeHandler := handler.New(0)
	if messages := probeHandler.DecodeAll(probe); len(messages) > 0 {
		return FormatRTCM
	}

	return FormatUnknown
}

// Handler reads a stream and drives a decode pipeline.  One of the
// RTCMHandler, Decoder and Engine fields is populated once the
// matching Handle method has been called, giving access to the
// decoder's counters.
type Handler struct {
	// RetryIntervalOnEOF is the time to wait between retries on EOF.
	RetryIntervalOnEOF time.Duration

	// EOFTimeout is the period of continuous EOF after which the
	// stream is presumed dead.  Zero means stop at the first EOF.
	EOFTimeout time.Duration

	// RTCMHandler decodes the stream when it's RTCM.
	RTCMHandler *handler.Handler

	// Decoder decodes the stream when it's NMEA.
	Decoder *nmea.Decoder

	// Engine fuses decoded NMEA sentences into track nodes.
	Engine *track.Engine

	clock  clock.Clock
	logger *log.Logger
}

// New creates a Handler.  The clock should be a system clock in
// production; tests supply stopped or stepping clocks.  The logger may
// be nil.
func New(retryIntervalOnEOF, eofTimeout time.Duration, systemClock clock.Clock, logger *log.Logger) *Handler {

	h := Handler{
		RetryIntervalOnEOF: retryIntervalOnEOF,
		EOFTimeout:         eofTimeout,
		clock:              systemClock,
		logger:             logger,
	}
	return &h
}

// HandleRTCM reads the stream, extracts the RTCM messages in it and
// sends them to the message channel, which it closes when the stream
// ends.  The returned error is the read error that ended the run,
// normally io.EOF.
func (h *Handler) HandleRTCM(ctx context.Context, reader io.Reader, messageChan chan handler.Message) error {

	byteChan := make(chan byte)
	defer close(byteChan)

	h.RTCMHandler = handler.New(0)
	go h.RTCMHandler.HandleMessages(byteChan, messageChan)

	return h.readLoop(ctx, reader, func(b byte) {
		byteChan <- b
	})
}

// HandleNMEA reads the stream line by line, decodes the sentences in
// it and sends them to the sentence channel, which it closes when the
// stream ends.
func (h *Handler) HandleNMEA(ctx context.Context, reader io.Reader, sentenceChan chan nmea.Sentence) error {

	lineChan := make(chan string)

	h.Decoder = nmea.NewDecoder(h.logger)
	go h.Decoder.HandleSentences(lineChan, sentenceChan)

	var line strings.Builder
	readError := h.readLoop(ctx, reader, func(b byte) {
		if b == '\n' {
			lineChan <- line.String()
			line.Reset()
			return
		}
		line.WriteByte(b)
	})

	// Don't lose a final line with no terminator.
	if line.Len() > 0 {
		lineChan <- line.String()
	}

	close(lineChan)
	return readError
}

// HandleTrack reads an NMEA stream, fuses the sentences and sends the
// track nodes to the node channel, which is closed when the stream
// ends.
func (h *Handler) HandleTrack(ctx context.Context, reader io.Reader, nodeChan chan track.Node) error {

	sentenceChan := make(chan nmea.Sentence)

	h.Engine = track.New(h.logger)
	done := make(chan struct{})
	go func() {
		h.Engine.Run(sentenceChan, nodeChan)
		close(done)
	}()

	readError := h.HandleNMEA(ctx, reader, sentenceChan)

	// HandleNMEA closed the sentence channel.  Wait for the engine to
	// drain it so that the counters are final.
	<-done
	return readError
}

// readLoop reads the stream a byte at a time and hands each byte to
// emit, retrying on EOF as the timeout fields dictate.  The reads go
// through a context-aware wrapper, so cancelling the context ends the
// loop.
func (h *Handler) readLoop(ctx context.Context, reader io.Reader, emit func(byte)) error {

	bufferedReader := bufio.NewReader(contextio.NewReader(ctx, reader))

	// timeOfFirstEOF is set when a read has returned EOF one or more
	// times in a row.  It's the time of the first of the run of EOFs.
	// A successful read sets it back to nil.
	var timeOfFirstEOF *time.Time

	for {
		buf := make([]byte, 1)
		n, err := bufferedReader.Read(buf)
		if err != nil {
			if err != io.EOF {
				// Some other kind of read error, including a
				// cancelled context.  Give up immediately.
				return err
			}

			// EOF.  On a capture file that's the end.  On a live
			// connection it may just mean that no data has arrived
			// yet, so retry until the timeout elapses.
			if h.EOFTimeout == 0 {
				return err
			}

			if timeOfFirstEOF == nil {
				// The last read was successful, this one produced
				// EOF.  Start the timeout, pause and try again.
				t := h.clock.Now()
				timeOfFirstEOF = &t
				time.Sleep(h.RetryIntervalOnEOF)
				continue
			}

			// EOF this time and last time too.
			if h.clock.Now().Sub(*timeOfFirstEOF) > h.EOFTimeout {
				// The timeout has elapsed.  Give up.
				return err
			}

			time.Sleep(h.RetryIntervalOnEOF)
			continue
		}

		if n > 0 {
			timeOfFirstEOF = nil
			emit(buf[0])
		}
	}
}
