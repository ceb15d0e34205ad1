package analysis

import (
	"github.com/gaitlab/stride.report/internal/units"
)

// CoordinateUnit maps a joint-coordinate name to its physical unit. The
// pelvis translations are the only coordinates expressed in meters;
// everything else (including pelvis_tilt) is an angle.
func CoordinateUnit(name string) string {
	switch name {
	case "pelvis_tx", "pelvis_ty", "pelvis_tz":
		return units.Meters
	}
	return units.Degrees
}
