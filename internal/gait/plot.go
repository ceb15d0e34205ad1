package gait

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gaitlab/stride.report/internal/kinematics"
)

// SaveSegmentationPlot writes a PNG of the anterior-posterior foot
// projections for one side with the detected heel-strike and toe-off events
// marked, for eyeballing a segmentation that produced suspect cycles.
func (a *Analysis) SaveSegmentationPlot(side kinematics.Side, path string) error {
	sig, err := footProjections(a.trial)
	if err != nil {
		return err
	}

	calc, toe := sig.rCalc, sig.rToe
	if side == kinematics.Left {
		calc, toe = sig.lCalc, sig.lToe
	}
	timeVec := a.trial.Time()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Gait events, %s side", side)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Projection on heading (m)"

	calcLine, err := plotter.NewLine(seriesXYs(timeVec, calc))
	if err != nil {
		return err
	}
	calcLine.Color = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	calcLine.Width = vg.Points(1)
	p.Add(calcLine)
	p.Legend.Add("calcaneus", calcLine)

	toeLine, err := plotter.NewLine(seriesXYs(timeVec, toe))
	if err != nil {
		return err
	}
	toeLine.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	toeLine.Width = vg.Points(1)
	p.Add(toeLine)
	p.Legend.Add("toe", toeLine)

	// Mark the events of the cycles that survived pairing. Only the
	// ipsilateral or contralateral stream matches the requested side.
	var hsPts, toPts plotter.XYs
	for i := range a.events.IpsiIdx {
		if a.events.Leg == side {
			hsPts = append(hsPts,
				plotter.XY{X: timeVec[a.events.IpsiIdx[i][0]], Y: calc[a.events.IpsiIdx[i][0]]},
				plotter.XY{X: timeVec[a.events.IpsiIdx[i][2]], Y: calc[a.events.IpsiIdx[i][2]]})
			toPts = append(toPts,
				plotter.XY{X: timeVec[a.events.IpsiIdx[i][1]], Y: toe[a.events.IpsiIdx[i][1]]})
		} else {
			toPts = append(toPts,
				plotter.XY{X: timeVec[a.events.ContraIdx[i][0]], Y: toe[a.events.ContraIdx[i][0]]})
			hsPts = append(hsPts,
				plotter.XY{X: timeVec[a.events.ContraIdx[i][1]], Y: calc[a.events.ContraIdx[i][1]]})
		}
	}

	hsScatter, err := plotter.NewScatter(hsPts)
	if err != nil {
		return err
	}
	p.Add(hsScatter)
	p.Legend.Add("heel-strike", hsScatter)

	toScatter, err := plotter.NewScatter(toPts)
	if err != nil {
		return err
	}
	p.Add(toScatter)
	p.Legend.Add("toe-off", toScatter)

	p.Legend.Top = true
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save segmentation plot: %w", err)
	}
	return nil
}

func seriesXYs(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}
