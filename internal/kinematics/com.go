package kinematics

// Segmental center-of-mass estimate. Segment mass fractions and longitudinal
// center positions follow Winter's anthropometric tables; joint centers are
// approximated from the augmented marker set (midpoint of lateral/medial
// markers where both exist). Segments whose markers were not captured are
// skipped and the remaining weights renormalized.

type segmentDef struct {
	massFraction float64
	// proximal/distal marker names; the segment center sits at
	// centerFraction along proximal→distal.
	proximal       []string
	distal         []string
	centerFraction float64
}

var comSegments = []segmentDef{
	// Head and neck, lumped at C7.
	{0.081, []string{MarkerC7}, []string{MarkerC7}, 0},
	// Trunk between the shoulder midpoint and pelvis center.
	{0.355, []string{MarkerRShoulder, MarkerLShoulder}, []string{MarkerRASIS, MarkerLASIS, MarkerRPSIS, MarkerLPSIS}, 0.5},
	// Pelvis at the center of the four pelvis landmarks.
	{0.142, []string{MarkerRASIS, MarkerLASIS, MarkerRPSIS, MarkerLPSIS}, []string{MarkerRASIS, MarkerLASIS, MarkerRPSIS, MarkerLPSIS}, 0},
	// Thighs: hip joint center to knee joint center.
	{0.100, []string{MarkerRHJC}, []string{MarkerRKnee, MarkerRMKnee}, 0.433},
	{0.100, []string{MarkerLHJC}, []string{MarkerLKnee, MarkerLMKnee}, 0.433},
	// Shanks: knee joint center to ankle joint center.
	{0.0465, []string{MarkerRKnee, MarkerRMKnee}, []string{MarkerRAnkle, MarkerRMAnkle}, 0.433},
	{0.0465, []string{MarkerLKnee, MarkerLMKnee}, []string{MarkerLAnkle, MarkerLMAnkle}, 0.433},
	// Feet: calcaneus to toe.
	{0.0145, []string{MarkerRCalc}, []string{MarkerRToe}, 0.5},
	{0.0145, []string{MarkerLCalc}, []string{MarkerLToe}, 0.5},
	// Upper arms: shoulder to elbow.
	{0.028, []string{MarkerRShoulder}, []string{MarkerRElbow}, 0.436},
	{0.028, []string{MarkerLShoulder}, []string{MarkerLElbow}, 0.436},
	// Forearms with hands: elbow to wrist.
	{0.022, []string{MarkerRElbow}, []string{MarkerRWrist}, 0.682},
	{0.022, []string{MarkerLElbow}, []string{MarkerLWrist}, 0.682},
}

// CenterOfMass returns the whole-body center-of-mass trajectory. It is
// computed on first use and cached; the trial must not be shared across
// goroutines.
func (t *Trial) CenterOfMass() []Vec3 {
	if t.com != nil {
		return t.com
	}

	n := t.NumFrames()
	com := make([]Vec3, n)
	var totalWeight float64

	for _, seg := range comSegments {
		prox, ok := t.markerMean(seg.proximal)
		if !ok {
			continue
		}
		dist, ok := t.markerMean(seg.distal)
		if !ok {
			continue
		}
		totalWeight += seg.massFraction
		for i := 0; i < n; i++ {
			center := prox[i].Add(dist[i].Sub(prox[i]).Scale(seg.centerFraction))
			com[i] = com[i].Add(center.Scale(seg.massFraction))
		}
	}

	if totalWeight > 0 {
		for i := range com {
			com[i] = com[i].Scale(1 / totalWeight)
		}
	}
	t.com = com
	return com
}

// markerMean averages the named marker trajectories frame by frame. It
// reports false when any marker is absent.
func (t *Trial) markerMean(names []string) ([]Vec3, bool) {
	trajs := make([][]Vec3, 0, len(names))
	for _, name := range names {
		traj, ok := t.markers[name]
		if !ok {
			return nil, false
		}
		trajs = append(trajs, traj)
	}
	out := make([]Vec3, t.NumFrames())
	inv := 1 / float64(len(trajs))
	for i := range out {
		var sum Vec3
		for _, traj := range trajs {
			sum = sum.Add(traj[i])
		}
		out[i] = sum.Scale(inv)
	}
	return out, true
}
