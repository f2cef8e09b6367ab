package nmea

import (
	"log"
)

// Decoder decodes a stream of sentences and keeps counts of the
// outcomes.  Create one per decode run - the counters are per-run.
type Decoder struct {
	// Successes is the number of sentences decoded so far.
	Successes uint

	// Failures is the number of rejected lines so far.
	Failures uint

	// logger receives a note of each rejected line.  It may be nil.
	logger *log.Logger
}

// NewDecoder creates a Decoder.  The logger may be nil.
func NewDecoder(logger *log.Logger) *Decoder {
	decoder := Decoder{logger: logger}
	return &decoder
}

// DecodeAll decodes the given lines and returns the sentences from
// the ones that survive, in order.  Rejected lines are counted and
// logged.  An empty input yields no sentences and no failures.
func (decoder *Decoder) DecodeAll(lines []string) []Sentence {

	sentences := make([]Sentence, 0)

	for _, line := range lines {
		sentence, err := decoder.decodeLine(line)
		if err != nil {
			continue
		}
		sentences = append(sentences, sentence)
	}

	return sentences
}

// HandleSentences reads lines from ch_in, decodes them and writes the
// sentences to ch_out.  It runs until ch_in is closed and drained,
// then closes ch_out.
func (decoder *Decoder) HandleSentences(ch_in chan string, ch_out chan Sentence) {

	for line := range ch_in {
		sentence, err := decoder.decodeLine(line)
		if err != nil {
			continue
		}
		ch_out <- sentence
	}

	close(ch_out)
}

// decodeLine decodes one line, counting the outcome.
func (decoder *Decoder) decodeLine(line string) (Sentence, error) {

	sentence, err := ParseSentence(line)
	if err != nil {
		decoder.Failures++
		if decoder.logger != nil {
			decoder.logger.Printf("rejected sentence - %v", err)
		}
		return nil, err
	}

	decoder.Successes++
	return sentence, nil
}
