package timing

// timing.go converts a batch report into a pprof profile so tool costs can
// be compared with `go tool pprof -top`.

import (
	"io"

	"github.com/google/pprof/profile"

	"github.com/reviewgo/reviewgo/runner"
)

// Builder builds a profile out of batch reports. Reports added to the same
// builder are merged, so a watch session can be profiled as a whole.
type Builder struct {
	profile   *profile.Profile
	functions map[string]*profile.Function
	locations map[string]*profile.Location
	samples   map[string]*profile.Sample
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		profile: &profile.Profile{
			SampleType: []*profile.ValueType{
				{Type: "prep", Unit: "nanoseconds"},
				{Type: "main", Unit: "nanoseconds"},
			},
			PeriodType: &profile.ValueType{Type: "wall", Unit: "nanoseconds"},
			Period:     1,
		},
		functions: make(map[string]*profile.Function),
		locations: make(map[string]*profile.Location),
		samples:   make(map[string]*profile.Sample),
	}
}

// Add merges one batch report into the profile.
func (b *Builder) Add(report runner.Report) {
	start := report.Started.UnixNano()
	if b.profile.TimeNanos == 0 || start < b.profile.TimeNanos {
		b.profile.TimeNanos = start
	}
	b.profile.DurationNanos += report.Duration.Nanoseconds()

	phase := report.Phase.String()
	for _, tr := range report.Tools {
		b.addSample(tr, phase)
	}
}

// Profile returns the profile built so far.
func (b *Builder) Profile() *profile.Profile {
	return b.profile
}

// Write writes the profile in gzipped protobuf format.
func (b *Builder) Write(w io.Writer) error {
	return b.profile.Write(w)
}

func (b *Builder) addSample(tr runner.ToolReport, phase string) {
	key := phase + ":" + tr.Key
	if existing, ok := b.samples[key]; ok {
		existing.Value[0] += tr.Prep.Nanoseconds()
		existing.Value[1] += tr.Main.Nanoseconds()
		existing.NumLabel["runs"][0]++
		return
	}

	sample := &profile.Sample{
		Location: []*profile.Location{b.getOrCreateLocation(tr.Key)},
		Value:    []int64{tr.Prep.Nanoseconds(), tr.Main.Nanoseconds()},
		Label: map[string][]string{
			"phase": {phase},
			"tier":  {tr.Tier.String()},
		},
		NumLabel: map[string][]int64{
			"runs": {1},
		},
	}
	b.samples[key] = sample
	b.profile.Sample = append(b.profile.Sample, sample)
}

// getOrCreateLocation gets or creates the location standing for a tool
func (b *Builder) getOrCreateLocation(name string) *profile.Location {
	if loc, exists := b.locations[name]; exists {
		return loc
	}

	fn := b.getOrCreateFunction(name)
	loc := &profile.Location{
		ID: uint64(len(b.profile.Location) + 1),
		Line: []profile.Line{
			{Function: fn},
		},
	}
	b.locations[name] = loc
	b.profile.Location = append(b.profile.Location, loc)
	return loc
}

// getOrCreateFunction gets or creates a function
func (b *Builder) getOrCreateFunction(name string) *profile.Function {
	if fn, exists := b.functions[name]; exists {
		return fn
	}

	fn := &profile.Function{
		ID:         uint64(len(b.profile.Function) + 1),
		Name:       name,
		SystemName: name,
	}
	b.functions[name] = fn
	b.profile.Function = append(b.profile.Function, fn)
	return fn
}
