package kinematics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func trcFixture(units string, rows []string) string {
	header := strings.Join([]string{
		"PathFileType\t4\t(X/Y/Z)\ttrial.trc",
		"DataRate\tCameraRate\tNumFrames\tNumMarkers\tUnits\tOrigDataRate\tOrigDataStartFrame\tOrigNumFrames",
		fmt.Sprintf("60\t60\t%d\t2\t%s\t60\t1\t%d", len(rows), units, len(rows)),
		"Frame#\tTime\tr_calc_study\t\t\tL_calc_study\t\t",
		"\t\tX1\tY1\tZ1\tX2\tY2\tZ2",
	}, "\n")
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestReadTRCMillimeters(t *testing.T) {
	path := writeTempFile(t, "walk.trc", trcFixture("mm", []string{
		"1\t0.0\t1000\t2000\t3000\t-1000\t500\t0",
		"2\t0.0166667\t1010\t2010\t3010\t-990\t510\t10",
	}))

	time, markers, err := ReadTRC(path)
	require.NoError(t, err)
	require.Len(t, time, 2)
	assert.InDelta(t, 0.0166667, time[1], 1e-9)

	rcalc := markers["r_calc_study"]
	require.Len(t, rcalc, 2)
	assert.InDelta(t, 1.0, rcalc[0].X, 1e-9)
	assert.InDelta(t, 2.0, rcalc[0].Y, 1e-9)
	assert.InDelta(t, 3.0, rcalc[0].Z, 1e-9)

	lcalc := markers["L_calc_study"]
	assert.InDelta(t, -0.99, lcalc[1].X, 1e-9)
}

func TestReadTRCMetersPassthrough(t *testing.T) {
	path := writeTempFile(t, "walk.trc", trcFixture("m", []string{
		"1\t0.0\t1\t2\t3\t4\t5\t6",
		"2\t0.01\t1\t2\t3\t4\t5\t6",
	}))

	_, markers, err := ReadTRC(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, markers["r_calc_study"][0].X, 1e-12)
}

func TestReadTRCTruncatedHeader(t *testing.T) {
	path := writeTempFile(t, "walk.trc", "PathFileType\t4\n")
	_, _, err := ReadTRC(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated header")
}

func TestReadTRCShortRow(t *testing.T) {
	path := writeTempFile(t, "walk.trc", trcFixture("m", []string{
		"1\t0.0\t1\t2\t3",
	}))
	_, _, err := ReadTRC(path)
	assert.Error(t, err)
}

func TestReadTRCNoDataRows(t *testing.T) {
	path := writeTempFile(t, "walk.trc", trcFixture("m", nil))
	_, _, err := ReadTRC(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestReadTRCMissingFile(t *testing.T) {
	_, _, err := ReadTRC(filepath.Join(t.TempDir(), "nope.trc"))
	assert.Error(t, err)
}
