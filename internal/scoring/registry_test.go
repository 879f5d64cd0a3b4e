package scoring

import (
	"slices"
	"testing"

	"github.com/hyperengineering/plankdash/internal/config"
	"github.com/hyperengineering/plankdash/internal/types"
)

// stubProducer is a minimal Producer for testing the registry.
type stubProducer struct {
	name  string
	calls *int
}

func (s stubProducer) Name() string { return s.name }
func (s stubProducer) Produce(_ Input, _ *types.Snapshot) error {
	if s.calls != nil {
		*s.calls++
	}
	return nil
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(stubProducer{name: "srs"})

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("Register duplicate did not panic")
		}
		msg, ok := rec.(string)
		if !ok {
			t.Fatalf("panic value = %T(%v), want string", rec, rec)
		}
		if msg != "producer already registered: srs" {
			t.Errorf("panic message = %q", msg)
		}
	}()

	r.Register(stubProducer{name: "srs"})
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	r.Register(stubProducer{name: "sleep"})

	if p, ok := r.Get("sleep"); !ok || p.Name() != "sleep" {
		t.Errorf("Get(sleep) = %v, %v", p, ok)
	}
	if _, ok := r.Get("play"); ok {
		t.Error("Get(play) ok = true for an unregistered producer")
	}
}

func TestDefaultRegistry_MatchesKnownProducers(t *testing.T) {
	r := NewDefaultRegistry(config.Default().Scoring)
	if got := r.Names(); !slices.Equal(got, config.KnownProducers) {
		t.Errorf("Names() = %v, want %v", got, config.KnownProducers)
	}
}

func TestEnabled_SkipsDisabled(t *testing.T) {
	r := NewDefaultRegistry(config.Default().Scoring)

	var names []string
	for _, p := range r.Enabled([]string{"sleep", "strength"}) {
		names = append(names, p.Name())
	}
	want := []string{"srs", "health", "play"}
	if !slices.Equal(names, want) {
		t.Errorf("Enabled() = %v, want %v", names, want)
	}
}

func TestNames_ReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(stubProducer{name: "a"})
	names := r.Names()
	names[0] = "mutated"
	if r.Names()[0] != "a" {
		t.Error("Names() exposed internal state")
	}
}

func TestDefaults_ProduceFillsBlocks(t *testing.T) {
	note := "felt strong"
	in := Input{
		Today: today,
		Days: []types.DayRecord{
			{Date: "2024-03-10", Status: types.StatusDone, DidPlank: true, Note: &note},
		},
		SRSItems: records(t, `[{"lastReview":"2024-03-10","stability":3}]`),
		Checkups: records(t, `[{"name":"bloodwork","intervalDays":365}]`),
		Sleep:    records(t, `[{"date":"2024-03-10","hours":8}]`),
		Play:     records(t, `[{"date":"2024-03-10","minutes":150}]`),
	}

	var snap types.Snapshot
	for _, p := range NewDefaultRegistry(config.Default().Scoring).Enabled(nil) {
		if err := p.Produce(in, &snap); err != nil {
			t.Fatalf("%s.Produce() error = %v", p.Name(), err)
		}
	}

	if snap.SRS.AggregateRetention != 100 {
		t.Errorf("srs aggregate = %d, want 100", snap.SRS.AggregateRetention)
	}
	if snap.Health.AggregateScore != 0 {
		t.Errorf("health aggregate = %d, want 0", snap.Health.AggregateScore)
	}
	if snap.Sleep.AggregateScore != 14 {
		t.Errorf("sleep aggregate = %d, want 14", snap.Sleep.AggregateScore)
	}
	if snap.Play.AggregateScore != 100 {
		t.Errorf("play aggregate = %d, want 100", snap.Play.AggregateScore)
	}
	if snap.Strength.Score != 15 || len(snap.Strength.RecentPlanks) != 1 {
		t.Errorf("strength = %+v, want score 15 with one recent plank", snap.Strength)
	}
}

func TestEnabled_DisabledBlockLeftZero(t *testing.T) {
	calls := 0
	r := NewRegistry()
	r.Register(stubProducer{name: "srs", calls: &calls})
	r.Register(stubProducer{name: "health", calls: &calls})

	for _, p := range r.Enabled([]string{"health"}) {
		_ = p.Produce(Input{}, &types.Snapshot{})
	}
	if calls != 1 {
		t.Errorf("producers run = %d, want 1", calls)
	}
}
