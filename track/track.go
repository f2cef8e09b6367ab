package track

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/goblimey/go-gnss/nmea"
)

// The track package fuses decoded NMEA sentences into track nodes.  A
// GNSS receiver reports each fix cycle as a burst of sentences - GGA,
// RMC, GLL and VTG - that carry overlapping but disjoint field sets
// and no explicit fix identifier.  The engine correlates them by
// arrival order plus cross-field agreement: it holds the most recent
// sentence of each of the four types and, once it has all four, checks
// that they describe the same fix.  If they do, it emits one Node
// combining their fields and starts again with empty slots.
//
// The hard checks are exact, not tolerance-based.  Co-temporal
// sentences encode the identical source value, so the positions in
// GGA, RMC and GLL must match to the last bit, as must the speeds in
// RMC and VTG and the times of day in RMC, GGA and GLL.  A failed
// check means the slots hold sentences from different fix cycles
// (or a misbehaving receiver); the quadruple is rejected but the slots
// are kept, so a fresh sentence of any type can complete a later
// consistent quadruple.
//
// The GGA fix quality and the RMC FAA mode should also correspond, but
// real receivers frequently disagree here without being at fault, so
// that check never rejects.  It logs, and the two commonest benign
// conditions are each reported only once per run.

// Node is one fused, cross-validated track point.
type Node struct {
	// Latitude in degrees, negative south.  From the position agreed
	// by GGA, RMC and GLL.
	Latitude float64 `json:"latitude"`

	// Longitude in degrees, negative west.
	Longitude float64 `json:"longitude"`

	// Height is the orthometric height in metres, from the GGA (the
	// only sentence that carries a height).
	Height float64 `json:"height"`

	// Mode is the FAA mode, from the RMC.
	Mode nmea.FAAMode `json:"mode"`

	// Time is the full UTC timestamp, from the RMC (the only sentence
	// that carries a date).
	Time time.Time `json:"time"`

	// TimeOfDay is the UTC time of the fix as an offset from midnight.
	TimeOfDay time.Duration `json:"time_of_day"`

	// Valid is the receiver's validity flag, agreed by RMC and GLL.
	Valid bool `json:"valid"`

	// GroundSpeedKnots is the speed over the ground, from the VTG.
	GroundSpeedKnots float64 `json:"ground_speed_knots"`

	// SatelliteSystem is the talker code of the GLL, for example "GP"
	// or "GN".
	SatelliteSystem string `json:"satellite_system"`
}

// String returns a text version of a node.
func (node *Node) String() string {
	return fmt.Sprintf("%s: (%.6f, %.6f) height %.2f m, speed %.1f kt, mode %c, system %s, valid %v",
		node.Time.Format(time.RFC3339), node.Latitude, node.Longitude,
		node.Height, node.GroundSpeedKnots, node.Mode,
		node.SatelliteSystem, node.Valid)
}

// fusionState holds the most recent sentence of each of the four
// types.  The slots are overwritten, not accumulated.
type fusionState struct {
	gga *nmea.GGA
	rmc *nmea.RMC
	gll *nmea.GLL
	vtg *nmea.VTG
}

// full reports whether all four slots are populated.
func (state *fusionState) full() bool {
	return state.gga != nil && state.rmc != nil &&
		state.gll != nil && state.vtg != nil
}

// Engine fuses a sequence of sentences into a sequence of nodes.
// Create one per fusion run - the counters and the warning latches are
// per-run.
type Engine struct {
	// Emitted is the number of nodes emitted so far.
	Emitted uint

	// Rejected is the number of complete quadruples that failed a hard
	// check so far.
	Rejected uint

	// logger receives hard-check failures and soft warnings.  It may
	// be nil.
	logger *log.Logger

	state fusionState

	// The two warning latches.  Each suppresses repeated reporting of
	// a benign condition after its first occurrence in this run.
	seenDoubleDifferential   bool
	seenDifferentialMismatch bool
}

// New creates an Engine.  The logger may be nil.
func New(logger *log.Logger) *Engine {
	engine := Engine{logger: logger}
	return &engine
}

// Add gives the engine the next sentence.  If the sentence completes a
// consistent quadruple the fused node is returned and the slots are
// cleared.  A complete but inconsistent quadruple returns an error
// naming the failed check; the slots are kept.  Otherwise both results
// are nil - sentences of other types are ignored.
func (engine *Engine) Add(sentence nmea.Sentence) (*Node, error) {

	switch s := sentence.(type) {
	case *nmea.GGA:
		engine.state.gga = s
	case *nmea.RMC:
		engine.state.rmc = s
	case *nmea.GLL:
		engine.state.gll = s
	case *nmea.VTG:
		engine.state.vtg = s
	default:
		return nil, nil
	}

	if !engine.state.full() {
		return nil, nil
	}

	if err := engine.checkConsistency(); err != nil {
		engine.Rejected++
		if engine.logger != nil {
			engine.logger.Printf("track node rejected - %v", err)
		}
		return nil, err
	}

	engine.checkModeAndQuality()

	node := &Node{
		Latitude:         engine.state.gga.Latitude,
		Longitude:        engine.state.gga.Longitude,
		Height:           engine.state.gga.Height,
		Mode:             engine.state.rmc.Mode,
		Time:             engine.state.rmc.Time,
		TimeOfDay:        engine.state.rmc.TimeOfDay,
		Valid:            engine.state.rmc.Valid,
		GroundSpeedKnots: engine.state.vtg.SpeedKnots,
		SatelliteSystem:  engine.state.gll.Talker,
	}

	engine.Emitted++
	engine.state = fusionState{}
	return node, nil
}

// Fuse runs the engine over a batch of sentences and returns the
// nodes, in order.
func (engine *Engine) Fuse(sentences []nmea.Sentence) []*Node {

	nodes := make([]*Node, 0)

	for _, sentence := range sentences {
		node, err := engine.Add(sentence)
		if err != nil {
			continue
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// Run reads sentences from ch_in, fuses them and writes the nodes to
// ch_out.  It runs until ch_in is closed and drained, then closes
// ch_out.
func (engine *Engine) Run(ch_in chan nmea.Sentence, ch_out chan Node) {

	for sentence := range ch_in {
		node, err := engine.Add(sentence)
		if err != nil {
			continue
		}
		if node != nil {
			ch_out <- *node
		}
	}

	close(ch_out)
}

// checkConsistency runs the hard checks over a complete quadruple.
// The first failed check is reported; the others are not tried.
func (engine *Engine) checkConsistency() error {

	gga := engine.state.gga
	rmc := engine.state.rmc
	gll := engine.state.gll
	vtg := engine.state.vtg

	// Position agreement: GGA, RMC and GLL must carry the identical
	// latitude and longitude.  (The height is only in the GGA, so it
	// has nothing to agree with.)
	if gga.Latitude != rmc.Latitude || gga.Latitude != gll.Latitude ||
		gga.Longitude != rmc.Longitude || gga.Longitude != gll.Longitude {
		em := fmt.Sprintf("position check failed - GGA (%f, %f), RMC (%f, %f), GLL (%f, %f)",
			gga.Latitude, gga.Longitude, rmc.Latitude, rmc.Longitude,
			gll.Latitude, gll.Longitude)
		return errors.New(em)
	}

	// Speed agreement: RMC and VTG both carry the ground speed in
	// knots and must agree bit for bit.
	if rmc.SpeedKnots != vtg.SpeedKnots {
		em := fmt.Sprintf("speed check failed - RMC %f, VTG %f",
			rmc.SpeedKnots, vtg.SpeedKnots)
		return errors.New(em)
	}

	// Time agreement: RMC, GGA and GLL must carry the same time of
	// day.  The date is ignored - only the RMC has one.
	if rmc.TimeOfDay != gga.TimeOfDay || rmc.TimeOfDay != gll.TimeOfDay {
		em := fmt.Sprintf("time check failed - RMC %v, GGA %v, GLL %v",
			rmc.TimeOfDay, gga.TimeOfDay, gll.TimeOfDay)
		return errors.New(em)
	}

	// Validity agreement: RMC and GLL both carry the receiver's
	// validity flag.
	if rmc.Valid != gll.Valid {
		em := fmt.Sprintf("validity check failed - RMC %v, GLL %v",
			rmc.Valid, gll.Valid)
		return errors.New(em)
	}

	return nil
}

// qualityForMode is the partial mapping between RMC FAA modes and GGA
// fix qualities.  Pairs outside the mapping are common in the wild and
// never cause rejection.
var qualityForMode = map[nmea.FAAMode]nmea.FixQuality{
	nmea.ModeEstimated:         nmea.QualityEstimated,
	nmea.ModeDifferential:      nmea.QualityDifferential,
	nmea.ModeRealTimeKinematic: nmea.QualityRTKInteger,
	nmea.ModeFloatRTK:          nmea.QualityRTKFloat,
}

// checkModeAndQuality compares the GGA fix quality with the RMC FAA
// mode.  This check only ever logs.  Receivers in the wild routinely
// report differing FAA modes across the sentences of one fix cycle, so
// a disagreement here is not evidence of a bad quadruple.  The two
// commonest conditions are each reported once per run.
func (engine *Engine) checkModeAndQuality() {

	quality := engine.state.gga.FixQuality
	mode := engine.state.rmc.Mode

	if quality == nmea.QualityDifferential && mode == nmea.ModeDifferential {
		// Both sides report differential.  Consistent, but worth one
		// note per run.
		if !engine.seenDoubleDifferential {
			engine.seenDoubleDifferential = true
			engine.log("GGA quality and RMC mode both report differential")
		}
		return
	}

	if quality == nmea.QualityDifferential || mode == nmea.ModeDifferential {
		// One side reports differential and the other doesn't.
		if !engine.seenDifferentialMismatch {
			engine.seenDifferentialMismatch = true
			engine.log(fmt.Sprintf("differential mismatch - GGA quality %d, RMC mode %c",
				quality, mode))
		}
		return
	}

	if want, inMapping := qualityForMode[mode]; inMapping && want != quality {
		engine.log(fmt.Sprintf("GGA quality %d does not match RMC mode %c",
			quality, mode))
	}
}

func (engine *Engine) log(message string) {
	if engine.logger != nil {
		engine.logger.Print(message)
	}
}
