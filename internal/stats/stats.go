// Package stats computes descriptive statistics over an engagement
// frequency distribution.
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/qiita-stats/qiistat/internal/distribution"
)

// Result is the read-only statistics snapshot for one distribution.
type Result struct {
	TotalArticles  int             `json:"total_articles"`
	Median         float64         `json:"median"`
	Mean           float64         `json:"mean"`
	Top10Threshold float64         `json:"top_10_threshold"`
	Top10Mean      float64         `json:"top_10_mean"`
	Top10Median    float64         `json:"top_10_median"`
	Top10Count     int             `json:"top_10_count"`
	NMoreOrRatio   map[int]float64 `json:"n_more_or_ratio"`
}

// FromDistribution analyzes one value->frequency distribution. The
// distribution is expanded into its implied multiset of raw values,
// which is exact because the frequency table is a lossless histogram
// of the original integer data. thresholds lists the n values for
// which the share of articles with value >= n is reported.
func FromDistribution(dist distribution.Distribution, thresholds []int) (*Result, error) {
	values := expand(dist)
	if len(values) == 0 {
		return nil, fmt.Errorf("empty distribution")
	}
	slices.Sort(values)

	threshold := percentile(values, 90)

	var top []float64
	for _, v := range values {
		if v >= threshold {
			top = append(top, v)
		}
	}

	total := len(values)
	ratios := make(map[int]float64, len(thresholds))
	for _, n := range thresholds {
		atLeast := 0
		for _, v := range values {
			if v > float64(n-1) {
				atLeast++
			}
		}
		ratios[n] = float64(atLeast) / float64(total) * 100
	}

	return &Result{
		TotalArticles:  total,
		Median:         median(values),
		Mean:           mean(values),
		Top10Threshold: threshold,
		Top10Mean:      mean(top),
		Top10Median:    median(top),
		Top10Count:     len(top),
		NMoreOrRatio:   ratios,
	}, nil
}

// WriteJSON saves the result as an indented JSON record.
func (r *Result) WriteJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// expand turns the histogram back into its raw values, each value
// repeated by its frequency.
func expand(dist distribution.Distribution) []float64 {
	var values []float64
	for value, freq := range dist {
		for i := 0; i < freq; i++ {
			values = append(values, float64(value))
		}
	}
	return values
}

func mean(sorted []float64) float64 {
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// median averages the two central order statistics for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile uses the linear interpolation method: the rank is
// p/100*(n-1) and the result interpolates between the order statistics
// at the floor and ceiling of that rank.
func percentile(sorted []float64, p float64) float64 {
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
