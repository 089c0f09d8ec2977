package inference

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// bandCount is how many risk bands the threshold table defines.
const bandCount = 5

// uvThresholds are the WHO-style UV-index band boundaries, inclusive on the
// upper end of each band. Values above the last boundary map to the final
// band. Kept as static config rather than model output so label text can
// change without retraining.
var uvThresholds = [bandCount - 1]float64{2, 5, 7, 10}

// Categories holds the risk labels in ascending severity order.
type Categories []string

// LoadCategories reads the newline-delimited label file. At least bandCount
// non-empty lines must exist; extra lines are tolerated but unused.
func LoadCategories(path string) (Categories, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read categories artifact: %w", err)
	}
	defer f.Close()

	var labels Categories
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read categories artifact %s: %w", path, err)
	}

	if len(labels) < bandCount {
		return nil, fmt.Errorf("categories artifact %s: need at least %d labels, found %d",
			path, bandCount, len(labels))
	}
	return labels, nil
}

// Label maps a UV index to its risk label.
func (c Categories) Label(uv float64) string {
	for i, boundary := range uvThresholds {
		if uv <= boundary {
			return c[i]
		}
	}
	return c[bandCount-1]
}
