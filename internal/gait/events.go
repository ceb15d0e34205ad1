// Package gait segments walking trials into gait cycles and computes the
// per-cycle scalar metrics.
package gait

import (
	"fmt"

	"github.com/gaitlab/stride.report/internal/kinematics"
)

// CycleEvents holds the detected gait events for every complete cycle of the
// ipsilateral leg, ordered from the last cycle of the trial backwards. It is
// built once at analysis construction and immutable afterwards.
type CycleEvents struct {
	// Ipsilateral event frame indices per cycle: heel-strike, toe-off,
	// heel-strike. Strictly increasing within a cycle.
	IpsiIdx [][3]int

	// Contralateral event frame indices per cycle: toe-off, heel-strike.
	// Both fall strictly between the bounding ipsilateral heel-strikes.
	ContraIdx [][2]int

	// Event times in seconds, looked up from the trial time vector.
	IpsiTime   [][3]float64
	ContraTime [][2]float64

	// Leg is the ipsilateral leg.
	Leg kinematics.Side
}

// NumCycles returns the number of complete cycles detected.
func (e *CycleEvents) NumCycles() int { return len(e.IpsiIdx) }

// validate checks the physiological ordering invariants: ipsilateral events
// strictly increasing, contralateral events strictly inside the cycle window.
func (e *CycleEvents) validate() error {
	if len(e.ContraIdx) != len(e.IpsiIdx) {
		return fmt.Errorf("event set has %d ipsilateral but %d contralateral cycles",
			len(e.IpsiIdx), len(e.ContraIdx))
	}
	for i, ips := range e.IpsiIdx {
		if !(ips[0] < ips[1] && ips[1] < ips[2]) {
			return fmt.Errorf("cycle %d: ipsilateral events not strictly increasing: %v", i, ips)
		}
		cont := e.ContraIdx[i]
		for _, c := range cont {
			if c <= ips[0] || c >= ips[2] {
				return fmt.Errorf("cycle %d: contralateral event %d outside window (%d,%d)", i, c, ips[0], ips[2])
			}
		}
	}
	return nil
}
