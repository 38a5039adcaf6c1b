package analysis

import (
	"fmt"
	"math"

	"github.com/user/fluxplot_go/internal/parser"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Axis returns the mesh coordinates: Meshes evenly spaced points from 0 to Length inclusive.
// A single mesh point sits at 0; a non-positive count yields an empty axis.
func Axis(vars parser.Vars) []float64 {
	switch {
	case vars.Meshes <= 0:
		return []float64{}
	case vars.Meshes == 1:
		return []float64{0}
	}
	return floats.Span(make([]float64, vars.Meshes), 0, vars.Length)
}

// ProfileName returns the display name used for energy group g (0-based) out of groups.
// Two-group runs use the fast/thermal names.
func ProfileName(g, groups int) string {
	if groups == 2 {
		return [...]string{"fast flux", "thermal flux"}[g]
	}
	return fmt.Sprintf("Group %d flux", g+1)
}

// finite drops NaN and infinite values.
func finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func summarizeK(k *parser.KEff, skip int, summary *Summary) KStats {
	ks := KStats{
		Generations:      len(k.K),
		Mean:             math.NaN(),
		StdDev:           math.NaN(),
		Final:            math.NaN(),
		FinalFundamental: math.NaN(),
	}
	if len(k.K) > 0 {
		ks.Final = k.K[len(k.K)-1]
	}
	if k.HasFundamental() && len(k.Fundamental) > 0 {
		ks.FinalFundamental = k.Fundamental[len(k.Fundamental)-1]
	}

	if skip < 0 {
		skip = 0
	}
	if skip >= len(k.K) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Skip of %d generations leaves no active k values (%d read).", skip, len(k.K)))
		return ks
	}
	ks.Skipped = skip

	active := finite(k.K[skip:])
	if dropped := len(k.K[skip:]) - len(active); dropped > 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("k series: %d non-finite values ignored.", dropped))
	}
	if len(active) > 0 {
		ks.Mean, ks.StdDev = stat.PopMeanStdDev(active, nil)
	}
	return ks
}

func summarizeProfile(name string, values, axis []float64, summary *Summary) ProfileStats {
	ps := ProfileStats{
		Name:          name,
		Points:        len(values),
		Peak:          math.NaN(),
		PeakPosition:  math.NaN(),
		Mean:          math.NaN(),
		PeakingFactor: math.NaN(),
	}
	if len(values) != len(axis) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %d points, expected %d mesh points.", name, len(values), len(axis)))
	}

	valid := finite(values)
	if len(valid) == 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: no finite values.", name))
		return ps
	}
	if len(valid) != len(values) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %d non-finite values ignored.", name, len(values)-len(valid)))
	}

	ps.Mean = stat.Mean(valid, nil)
	ps.Peak = floats.Max(valid)
	for i, v := range values {
		if v == ps.Peak {
			if i < len(axis) {
				ps.PeakPosition = axis[i]
			}
			break
		}
	}
	if ps.Mean != 0 {
		ps.PeakingFactor = ps.Peak / ps.Mean
	}
	return ps
}

// Summarize computes convergence and profile statistics for a set of results.
// skip is the number of leading (inactive) generations excluded from the k statistics.
// Problems that do not prevent plotting are reported in Summary.Warnings.
func Summarize(results *parser.Results, skip int) (*Summary, error) {
	if results == nil || results.KEff == nil || results.Interface == nil {
		return nil, fmt.Errorf("results are nil or incomplete, cannot analyze")
	}

	summary := NewSummary()
	summary.Length = results.Vars.Length
	summary.Meshes = results.Vars.Meshes

	summary.K = summarizeK(results.KEff, skip, summary)
	if summary.K.Generations != results.Vars.Generations {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("k series has %d generations, vars.csv says %d.", summary.K.Generations, results.Vars.Generations))
	}

	axis := Axis(results.Vars)
	in := results.Interface
	for g, flux := range in.Flux {
		summary.Profiles = append(summary.Profiles, summarizeProfile(ProfileName(g, in.Groups()), flux, axis, summary))
	}
	summary.Profiles = append(summary.Profiles, summarizeProfile("fission", in.Fission, axis, summary))

	return summary, nil
}
