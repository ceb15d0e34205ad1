package squat

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveSegmentationPlot writes a PNG of the vertical pelvis position with the
// detected repetition start/end frames marked.
func (a *Analysis) SaveSegmentationPlot(path string) error {
	pelvisTY, err := a.trial.Coordinate("pelvis_ty")
	if err != nil {
		return err
	}
	timeVec := a.trial.Time()

	p := plot.New()
	p.Title.Text = "Vertical pelvis position"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Position (m)"

	pts := make(plotter.XYs, len(pelvisTY))
	for i := range pelvisTY {
		pts[i] = plotter.XY{X: timeVec[i], Y: pelvisTY[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("pelvis_ty", line)

	var eventPts plotter.XYs
	for _, idx := range a.events.Idx {
		eventPts = append(eventPts,
			plotter.XY{X: timeVec[idx[0]], Y: pelvisTY[idx[0]]},
			plotter.XY{X: timeVec[idx[1]], Y: pelvisTY[idx[1]]})
	}
	scatter, err := plotter.NewScatter(eventPts)
	if err != nil {
		return err
	}
	p.Add(scatter)
	p.Legend.Add("rep start/end", scatter)

	p.Legend.Top = true
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save segmentation plot: %w", err)
	}
	return nil
}
