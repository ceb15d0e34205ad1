package kinematics

// Anatomical marker names used by the video-based marker augmenter. The
// analyses reference these rather than spelling strings inline.
const (
	MarkerRCalc     = "r_calc_study"
	MarkerLCalc     = "L_calc_study"
	MarkerRToe      = "r_toe_study"
	MarkerLToe      = "L_toe_study"
	MarkerRAnkle    = "r_ankle_study"
	MarkerLAnkle    = "L_ankle_study"
	MarkerRMAnkle   = "r_mankle_study"
	MarkerLMAnkle   = "L_mankle_study"
	MarkerRKnee     = "r_knee_study"
	MarkerLKnee     = "L_knee_study"
	MarkerRMKnee    = "r_mknee_study"
	MarkerLMKnee    = "L_mknee_study"
	MarkerRHJC      = "RHJC_study"
	MarkerLHJC      = "LHJC_study"
	MarkerRASIS     = "r.ASIS_study"
	MarkerLASIS     = "L.ASIS_study"
	MarkerRPSIS     = "r.PSIS_study"
	MarkerLPSIS     = "L.PSIS_study"
	MarkerRShoulder = "r_shoulder_study"
	MarkerLShoulder = "L_shoulder_study"
	MarkerC7        = "C7_study"
	MarkerRElbow    = "r_lelbow_study"
	MarkerLElbow    = "L_lelbow_study"
	MarkerRWrist    = "r_lwrist_study"
	MarkerLWrist    = "L_lwrist_study"
)

// Side identifies a leg or body side.
type Side string

const (
	Left  Side = "l"
	Right Side = "r"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// MarkerPrefix returns the prefix convention the marker set uses for the
// side: lowercase r for right, uppercase L for left.
func (s Side) MarkerPrefix() string {
	if s == Left {
		return "L"
	}
	return "r"
}

// SideMarker builds a side-qualified marker name, e.g. SideMarker(Right,
// "calc") == "r_calc_study".
func SideMarker(s Side, segment string) string {
	return s.MarkerPrefix() + "_" + segment + "_study"
}
