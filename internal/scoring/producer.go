package scoring

import (
	"github.com/hyperengineering/plankdash/internal/config"
	"github.com/hyperengineering/plankdash/internal/types"
)

// Input is everything a producer may read during one run.
type Input struct {
	Today    string
	Days     []types.DayRecord
	SRSItems []types.Record
	Checkups []types.Record
	Sleep    []types.Record
	Play     []types.Record
}

// Producer fills one scoring block of the snapshot.
// Producers must not depend on each other's output.
type Producer interface {
	// Name is the block name, as listed in config.KnownProducers.
	Name() string

	// Produce computes the block from in and stores it on snap.
	Produce(in Input, snap *types.Snapshot) error
}

type srsProducer struct{}

func (srsProducer) Name() string { return "srs" }

func (srsProducer) Produce(in Input, snap *types.Snapshot) error {
	block, err := SRS(in.SRSItems, in.Today)
	if err != nil {
		return err
	}
	snap.SRS = block
	return nil
}

type healthProducer struct {
	steepness float64
}

func (healthProducer) Name() string { return "health" }

func (p healthProducer) Produce(in Input, snap *types.Snapshot) error {
	block, err := Health(in.Checkups, in.Today, p.steepness)
	if err != nil {
		return err
	}
	snap.Health = block
	return nil
}

type sleepProducer struct {
	window int
	target float64
}

func (sleepProducer) Name() string { return "sleep" }

func (p sleepProducer) Produce(in Input, snap *types.Snapshot) error {
	block, err := Sleep(in.Sleep, in.Today, p.window, p.target)
	if err != nil {
		return err
	}
	snap.Sleep = block
	return nil
}

type playProducer struct {
	window int
	target float64
}

func (playProducer) Name() string { return "play" }

func (p playProducer) Produce(in Input, snap *types.Snapshot) error {
	snap.Play = Activity(in.Play, in.Today, p.window, p.target)
	return nil
}

type strengthProducer struct {
	params StrengthParams
}

func (strengthProducer) Name() string { return "strength" }

func (p strengthProducer) Produce(in Input, snap *types.Snapshot) error {
	snap.Strength = Strength(in.Days, in.Today, p.params)
	return nil
}

// Defaults returns the built-in producers configured from cfg, in snapshot
// key order.
func Defaults(cfg config.ScoringConfig) []Producer {
	return []Producer{
		srsProducer{},
		healthProducer{steepness: cfg.DefaultSteepness},
		sleepProducer{window: cfg.WindowDays, target: cfg.SleepTargetHours},
		playProducer{window: cfg.WindowDays, target: cfg.ActivityTargetMinutes},
		strengthProducer{params: StrengthParams{
			HalfLifeDays: cfg.StrengthHalfLifeDays,
			PerPlank:     cfg.StrengthPerPlank,
			Max:          cfg.StrengthMax,
			Recent:       cfg.RecentPlanks,
		}},
	}
}
