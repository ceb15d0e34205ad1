package kinematics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadMOT parses an OpenSim coordinates storage (.mot) file and returns the
// time vector, the coordinate series keyed by column name, and the column
// names in file order (time excluded).
func ReadMOT(path string) ([]float64, map[string][]float64, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open mot: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// Skip the free-form header up to and including "endheader".
	sawEnd := false
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "endheader") {
			sawEnd = true
			break
		}
	}
	if !sawEnd {
		return nil, nil, nil, fmt.Errorf("mot %s: missing endheader", path)
	}

	if !scanner.Scan() {
		return nil, nil, nil, fmt.Errorf("mot %s: missing column header", path)
	}
	columns := strings.Fields(scanner.Text())
	if len(columns) < 2 || !strings.EqualFold(columns[0], "time") {
		return nil, nil, nil, fmt.Errorf("mot %s: first column must be time, got %v", path, columns)
	}
	coordNames := columns[1:]

	time := []float64{}
	coords := make(map[string][]float64, len(coordNames))
	for _, name := range coordNames {
		coords[name] = []float64{}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != len(columns) {
			return nil, nil, nil, fmt.Errorf("mot %s: row %d has %d fields, want %d",
				path, len(time)+1, len(fields), len(columns))
		}
		tv, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mot %s: bad time value %q: %w", path, fields[0], err)
		}
		time = append(time, tv)
		for i, name := range coordNames {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("mot %s: bad value in column %s: %w", path, name, err)
			}
			coords[name] = append(coords[name], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("read mot: %w", err)
	}
	if len(time) == 0 {
		return nil, nil, nil, fmt.Errorf("mot %s: no data rows", path)
	}
	return time, coords, coordNames, nil
}
