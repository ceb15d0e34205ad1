package kinematics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadTRC parses a TRC marker trajectory file and returns the time vector and
// per-marker trajectories in meters. Millimeter files are converted.
func ReadTRC(path string) ([]float64, map[string][]Vec3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trc: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// Line 1: PathFileType header. Line 2: metadata field names.
	// Line 3: metadata values (units live in column 5).
	// Line 4: Frame#, Time, then marker names. Line 5: X/Y/Z labels.
	var headerLines []string
	for len(headerLines) < 5 && scanner.Scan() {
		headerLines = append(headerLines, scanner.Text())
	}
	if len(headerLines) < 5 {
		return nil, nil, fmt.Errorf("trc %s: truncated header", path)
	}

	scale := 1.0
	metaFields := strings.Split(headerLines[1], "\t")
	metaValues := strings.Split(headerLines[2], "\t")
	for i, field := range metaFields {
		if strings.EqualFold(strings.TrimSpace(field), "Units") && i < len(metaValues) {
			if strings.EqualFold(strings.TrimSpace(metaValues[i]), "mm") {
				scale = 0.001
			}
		}
	}

	var markerNames []string
	for i, field := range strings.Split(headerLines[3], "\t") {
		field = strings.TrimSpace(field)
		if i < 2 || field == "" {
			continue
		}
		markerNames = append(markerNames, field)
	}
	if len(markerNames) == 0 {
		return nil, nil, fmt.Errorf("trc %s: no marker names in header", path)
	}

	time := []float64{}
	markers := make(map[string][]Vec3, len(markerNames))
	for _, name := range markerNames {
		markers[name] = []Vec3{}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2+3*len(markerNames) {
			return nil, nil, fmt.Errorf("trc %s: row %d has %d fields, want %d",
				path, len(time)+1, len(fields), 2+3*len(markerNames))
		}
		tv, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("trc %s: bad time value %q: %w", path, fields[1], err)
		}
		time = append(time, tv)

		for m, name := range markerNames {
			var xyz [3]float64
			for c := 0; c < 3; c++ {
				v, err := strconv.ParseFloat(strings.TrimSpace(fields[2+3*m+c]), 64)
				if err != nil {
					return nil, nil, fmt.Errorf("trc %s: bad value for marker %s: %w", path, name, err)
				}
				xyz[c] = v * scale
			}
			markers[name] = append(markers[name], Vec3{xyz[0], xyz[1], xyz[2]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read trc: %w", err)
	}
	if len(time) == 0 {
		return nil, nil, fmt.Errorf("trc %s: no data rows", path)
	}
	return time, markers, nil
}
