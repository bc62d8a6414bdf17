package timing

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/require"

	"github.com/reviewgo/reviewgo/runner"
	"github.com/reviewgo/reviewgo/tool"
)

func testReport() runner.Report {
	return runner.Report{
		Phase:    tool.Review,
		Started:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Duration: 3 * time.Second,
		ExitCode: 1,
		Tools: []runner.ToolReport{
			{Key: "rubocop", ExitCode: 1, Tier: runner.TierStandardFailure, Main: 2 * time.Second},
			{Key: "bundle-audit", Tier: runner.TierSuccess, Prepared: true, Prep: 400 * time.Millisecond, Main: 600 * time.Millisecond},
		},
	}
}

func TestBuilderAdd(t *testing.T) {
	b := New()
	b.Add(testReport())

	prof := b.Profile()
	require.NoError(t, prof.CheckValid())

	require.Len(t, prof.SampleType, 2)
	require.Equal(t, "prep", prof.SampleType[0].Type)
	require.Equal(t, "main", prof.SampleType[1].Type)
	require.Len(t, prof.Sample, 2)

	require.Equal(t, "rubocop", prof.Sample[0].Location[0].Line[0].Function.Name)
	require.Equal(t, []int64{0, int64(2 * time.Second)}, prof.Sample[0].Value)
	require.Equal(t, []string{"failure"}, prof.Sample[0].Label["tier"])

	require.Equal(t, []int64{int64(400 * time.Millisecond), int64(600 * time.Millisecond)}, prof.Sample[1].Value)
	require.Equal(t, int64(3*time.Second), prof.DurationNanos)
}

func TestBuilderMergesRepeatedRuns(t *testing.T) {
	b := New()
	b.Add(testReport())
	b.Add(testReport())

	prof := b.Profile()
	require.NoError(t, prof.CheckValid())
	require.Len(t, prof.Sample, 2)
	require.Len(t, prof.Function, 2)
	require.Equal(t, []int64{0, int64(4 * time.Second)}, prof.Sample[0].Value)
	require.Equal(t, []int64{2}, prof.Sample[0].NumLabel["runs"])
	require.Equal(t, int64(6*time.Second), prof.DurationNanos)
}

func TestBuilderWriteRoundTrip(t *testing.T) {
	b := New()
	b.Add(testReport())

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))

	parsed, err := profile.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, parsed.Sample, 2)
	require.Equal(t, "bundle-audit", parsed.Sample[1].Location[0].Line[0].Function.Name)
}
