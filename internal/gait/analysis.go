package gait

import (
	"fmt"
	"strings"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
)

// LegSelector picks which leg the analysis is ipsilateral to.
type LegSelector string

const (
	LegAuto  LegSelector = "auto"
	LegLeft  LegSelector = "l"
	LegRight LegSelector = "r"
)

// ParseLegSelector accepts the short and long spellings.
func ParseLegSelector(s string) (LegSelector, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return LegAuto, nil
	case "l", "left":
		return LegLeft, nil
	case "r", "right":
		return LegRight, nil
	}
	return "", fmt.Errorf("invalid leg selector %q (want auto, left, or right)", s)
}

// GaitStyle forces or auto-detects the treadmill/overground classification.
type GaitStyle string

const (
	StyleAuto       GaitStyle = "auto"
	StyleTreadmill  GaitStyle = "treadmill"
	StyleOverground GaitStyle = "overground"
)

// ParseGaitStyle validates a style string.
func ParseGaitStyle(s string) (GaitStyle, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return StyleAuto, nil
	case "treadmill":
		return StyleTreadmill, nil
	case "overground":
		return StyleOverground, nil
	}
	return "", fmt.Errorf("invalid gait style %q (want auto, treadmill, or overground)", s)
}

// Config carries the construction parameters of a gait analysis.
type Config struct {
	// Leg selects the ipsilateral leg; auto picks whichever foot
	// heel-strikes last.
	Leg LegSelector `json:"leg"`

	// NumCycles limits how many cycles to analyze, working backward from
	// the end of the trial. -1 keeps all detectable cycles.
	NumCycles int `json:"n_gait_cycles"`

	// Style forces the treadmill/overground classification; auto applies
	// the belt-speed heuristic.
	Style GaitStyle `json:"gait_style"`

	// LowpassCutoffHz smooths marker and coordinate data at load time.
	// -1 disables filtering. Consumed by the trial loader, not by New.
	LowpassCutoffHz float64 `json:"lowpass_cutoff_frequency"`

	// TrimStart and TrimEnd discard that many seconds of the trial before
	// segmentation.
	TrimStart float64 `json:"trimming_start"`
	TrimEnd   float64 `json:"trimming_end"`
}

// DefaultConfig returns the construction defaults: auto leg, all cycles,
// auto style, no filtering, no trimming.
func DefaultConfig() Config {
	return Config{Leg: LegAuto, NumCycles: -1, Style: StyleAuto, LowpassCutoffHz: -1}
}

// Analysis segments one walking trial into gait cycles and exposes the
// per-cycle metric calculators. It is constructed once per trial and
// read-only afterwards, except for internally memoized derived values, so a
// shared instance must not be used from multiple goroutines.
type Analysis struct {
	trial  kinematics.Provider
	events *CycleEvents
	style  GaitStyle

	treadmillSpeed  float64
	treadmillSpeeds []float64

	registry *analysis.Registry

	// Memoized on first use.
	frames      []Rotation
	rotatedCalc map[kinematics.Side][]kinematics.Vec3
	legLengths  map[string]float64
}

// New trims, segments, and classifies a walking trial. The returned analysis
// holds a reference to the (possibly trimmed) provider and computes metrics
// on demand.
func New(trial kinematics.Provider, cfg Config) (*Analysis, error) {
	if cfg.TrimStart > 0 || cfg.TrimEnd > 0 {
		trimmed, err := trial.Trim(cfg.TrimStart, cfg.TrimEnd)
		if err != nil {
			return nil, fmt.Errorf("trim trial: %w", err)
		}
		trial = trimmed
	}

	events, err := segmentWalking(trial, cfg.Leg, cfg.NumCycles)
	if err != nil {
		return nil, err
	}

	a := &Analysis{trial: trial, events: events, style: cfg.Style}
	a.treadmillSpeed, a.treadmillSpeeds, err = estimateTreadmillSpeed(trial, events, cfg.Style)
	if err != nil {
		return nil, err
	}

	a.registry = analysis.NewRegistry()
	a.registerMetrics()
	return a, nil
}

// registerMetrics builds the fixed metric catalog. Joint-angle peaks and
// ranges of motion get one entry per side-suffixed coordinate of the
// ipsilateral leg, named after the coordinate base name.
func (a *Analysis) registerMetrics() {
	r := a.registry
	r.Register("gait_speed", a.gaitSpeed)
	r.Register("stride_length", a.strideLength)
	r.Register("step_length", a.stepLength)
	r.Register("step_length_symmetry", a.stepLengthSymmetry)
	r.Register("step_width", a.stepWidth)
	r.Register("cadence", a.cadence)
	r.Register("stance_time", a.stanceTime)
	r.Register("swing_time", a.swingTime)
	r.Register("single_support_time", a.singleSupportTime)
	r.Register("double_support_time", a.doubleSupportTime)
	r.Register("treadmill_speed", a.treadmillSpeedSeries)
	r.Register("midswing_dorsiflexion_angle", a.midswingDorsiflexionAngle)
	r.Register("midswing_ankle_height_dif", a.midswingAnkleHeightDiff)
	r.Register("correlation", a.meanCorrelation)

	suffix := "_" + string(a.events.Leg)
	for _, coord := range a.trial.CoordinateNames() {
		if !strings.HasSuffix(coord, suffix) {
			continue
		}
		base := strings.TrimSuffix(coord, suffix)
		r.Register("peak_"+base, a.peakAngleFunc(coord))
		r.Register("rom_"+base, a.romFunc(coord))
	}
}

// Events returns the detected gait events.
func (a *Analysis) Events() *CycleEvents { return a.events }

// Leg returns the ipsilateral leg.
func (a *Analysis) Leg() kinematics.Side { return a.events.Leg }

// NumCycles returns the number of analyzed gait cycles.
func (a *Analysis) NumCycles() int { return a.events.NumCycles() }

// TreadmillSpeed returns the estimated belt speed in m/s, zero for
// overground trials.
func (a *Analysis) TreadmillSpeed() float64 { return a.treadmillSpeed }

// Trial returns the (possibly trimmed) provider the analysis reads from.
func (a *Analysis) Trial() kinematics.Provider { return a.trial }

// MetricNames returns the available metric names.
func (a *Analysis) MetricNames() []string { return a.registry.Names() }

// Series computes one metric's per-cycle series.
func (a *Analysis) Series(name string) (analysis.Series, error) { return a.registry.Series(name) }

// Scalar computes one metric reduced to mean/std/unit.
func (a *Analysis) Scalar(name string) (analysis.Scalar, error) { return a.registry.Scalar(name) }

// Scalars computes the named metrics, or all of them for an empty list.
func (a *Analysis) Scalars(names []string) (*analysis.ScalarSet, error) {
	return a.registry.Scalars(names)
}

// gaitFrames memoizes the per-cycle gait frames.
func (a *Analysis) gaitFrames() ([]Rotation, error) {
	if a.frames == nil {
		frames, err := gaitFrames(a.trial, a.events, a.treadmillSpeed)
		if err != nil {
			return nil, err
		}
		a.frames = frames
	}
	return a.frames, nil
}

// rotatedCalcaneus memoizes a side's calcaneus trajectory expressed
// piecewise in each cycle's gait frame.
func (a *Analysis) rotatedCalcaneus(side kinematics.Side) ([]kinematics.Vec3, error) {
	if traj, ok := a.rotatedCalc[side]; ok {
		return traj, nil
	}
	frames, err := a.gaitFrames()
	if err != nil {
		return nil, err
	}
	calc, err := a.trial.Marker(kinematics.SideMarker(side, "calc"))
	if err != nil {
		return nil, err
	}
	if a.rotatedCalc == nil {
		a.rotatedCalc = make(map[kinematics.Side][]kinematics.Vec3, 2)
	}
	rotated := rotatePerCycle(calc, a.events, frames)
	a.rotatedCalc[side] = rotated
	return rotated, nil
}

// LegLengths estimates each leg's length as the mean femur length (hip to
// knee joint center) plus mean tibia length (knee to ankle joint center),
// keyed "ipsilateral" and "contralateral". Memoized.
func (a *Analysis) LegLengths() (map[string]float64, error) {
	if a.legLengths != nil {
		return a.legLengths, nil
	}
	ips, err := a.oneLegLength(a.events.Leg)
	if err != nil {
		return nil, err
	}
	cont, err := a.oneLegLength(a.events.Leg.Opposite())
	if err != nil {
		return nil, err
	}
	a.legLengths = map[string]float64{"ipsilateral": ips, "contralateral": cont}
	return a.legLengths, nil
}

func (a *Analysis) oneLegLength(side kinematics.Side) (float64, error) {
	knee, err := a.trial.Marker(kinematics.SideMarker(side, "knee"))
	if err != nil {
		return 0, err
	}
	mknee, err := a.trial.Marker(kinematics.SideMarker(side, "mknee"))
	if err != nil {
		return 0, err
	}
	ankle, err := a.trial.Marker(kinematics.SideMarker(side, "ankle"))
	if err != nil {
		return 0, err
	}
	mankle, err := a.trial.Marker(kinematics.SideMarker(side, "mankle"))
	if err != nil {
		return 0, err
	}
	hjcName := kinematics.MarkerRHJC
	if side == kinematics.Left {
		hjcName = kinematics.MarkerLHJC
	}
	hjc, err := a.trial.Marker(hjcName)
	if err != nil {
		return 0, err
	}

	var femur, tibia float64
	n := a.trial.NumFrames()
	for i := 0; i < n; i++ {
		kjc := kinematics.Midpoint(knee[i], mknee[i])
		ajc := kinematics.Midpoint(ankle[i], mankle[i])
		femur += kjc.Sub(hjc[i]).Norm()
		tibia += ajc.Sub(kjc).Norm()
	}
	return (femur + tibia) / float64(n), nil
}
