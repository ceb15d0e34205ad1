package gait

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/sigproc"
	"github.com/gaitlab/stride.report/internal/units"
)

// Correlations holds the weighted left-right joint-angle correlations:
// one value per cycle per ipsilateral coordinate, plus the per-cycle mean
// across coordinates.
type Correlations struct {
	// ByCoordinate is keyed by the ipsilateral coordinate name.
	ByCoordinate map[string][]float64

	// CycleMeans averages the weighted correlations across coordinates,
	// one entry per cycle.
	CycleMeans []float64
}

// ComputeCorrelations compares each ipsilateral joint-angle trace against
// its contralateral counterpart, cycle by cycle. Both traces are phase
// aligned to their own heel-strike, time normalized to 101 samples, and
// scored with a Pearson correlation weighted by 1 minus the normalized mean
// absolute error, penalizing both shape and magnitude differences. prefixes
// restricts the comparison to coordinates starting with any of the given
// prefixes; nil compares all paired coordinates.
func (a *Analysis) ComputeCorrelations(prefixes []string) (*Correlations, error) {
	ipsSuffix := "_" + string(a.events.Leg)
	contSuffix := "_" + string(a.events.Leg.Opposite())

	type pair struct {
		ips, cont []float64
		name      string
	}
	var pairs []pair
	for _, name := range a.trial.CoordinateNames() {
		if !strings.HasSuffix(name, ipsSuffix) {
			continue
		}
		base := strings.TrimSuffix(name, ipsSuffix)
		if !matchesPrefix(base, prefixes) {
			continue
		}
		ips, err := a.trial.Coordinate(name)
		if err != nil {
			return nil, err
		}
		cont, err := a.trial.Coordinate(base + contSuffix)
		if err != nil {
			// Unpaired coordinate; nothing to compare against.
			continue
		}
		pairs = append(pairs, pair{ips: ips, cont: cont, name: name})
	}

	out := &Correlations{
		ByCoordinate: make(map[string][]float64, len(pairs)),
		CycleMeans:   make([]float64, a.NumCycles()),
	}
	for _, p := range pairs {
		out.ByCoordinate[p.name] = make([]float64, a.NumCycles())
	}

	for i := range a.events.IpsiIdx {
		hs1, hs2 := a.events.IpsiIdx[i][0], a.events.IpsiIdx[i][2]
		contHS := a.events.ContraIdx[i][1]

		var total float64
		for _, p := range pairs {
			s1, err := sigproc.NormalizeCycle(p.ips[hs1:hs2])
			if err != nil {
				return nil, err
			}

			// Contralateral trace re-phased to start at its own heel-strike.
			aligned := make([]float64, 0, hs2-hs1)
			aligned = append(aligned, p.cont[contHS:hs2]...)
			aligned = append(aligned, p.cont[hs1:contHS]...)
			s2, err := sigproc.NormalizeCycle(aligned)
			if err != nil {
				return nil, err
			}

			w := weightedCorrelation(s1, s2)
			out.ByCoordinate[p.name][i] = w
			total += w
		}
		if len(pairs) > 0 {
			out.CycleMeans[i] = total / float64(len(pairs))
		}
	}
	return out, nil
}

// meanCorrelation exposes the per-cycle mean weighted correlation as a
// registry metric.
func (a *Analysis) meanCorrelation() (analysis.Series, error) {
	corr, err := a.ComputeCorrelations(nil)
	if err != nil {
		return analysis.Series{}, err
	}
	return analysis.Series{Values: corr.CycleMeans, Unit: units.Unitless}, nil
}

// weightedCorrelation scores two equal-length signals: Pearson correlation
// times 1 minus the mean absolute error normalized by the larger
// peak-to-peak range.
func weightedCorrelation(s1, s2 []float64) float64 {
	maxRange := math.Max(ptp(s1), ptp(s2))
	var mae float64
	for i := range s1 {
		mae += math.Abs(s1[i] - s2[i])
	}
	mae /= float64(len(s1)) * maxRange

	return stat.Correlation(s1, s2, nil) * (1 - mae)
}

// ptp is the peak-to-peak range of a signal.
func ptp(x []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

func matchesPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
