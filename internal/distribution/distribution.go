// Package distribution builds and persists per-article engagement
// frequency distributions.
package distribution

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/qiita-stats/qiistat/internal/qiita"
)

// Distribution maps an engagement value to the number of articles
// with exactly that value. Zero-count entries are never stored.
type Distribution map[int]int

// Counts holds the three distributions produced by one aggregation
// run. Reactions is computed per article as likes+stocks, not derived
// from the other two maps.
type Counts struct {
	Likes     Distribution
	Stocks    Distribution
	Reactions Distribution
}

// Columns are the distribution names in persisted column order.
var Columns = []string{"likes", "stocks", "reactions"}

// Aggregate builds the three frequency distributions from a list of
// articles in one pass. Pure and order-independent.
func Aggregate(articles []qiita.Article) Counts {
	counts := Counts{
		Likes:     make(Distribution),
		Stocks:    make(Distribution),
		Reactions: make(Distribution),
	}
	for _, a := range articles {
		counts.Likes[a.LikesCount]++
		counts.Stocks[a.StocksCount]++
		counts.Reactions[a.Reactions()]++
	}
	return counts
}

// Column returns the named distribution.
func (c Counts) Column(name string) (Distribution, error) {
	switch name {
	case "likes":
		return c.Likes, nil
	case "stocks":
		return c.Stocks, nil
	case "reactions":
		return c.Reactions, nil
	default:
		return nil, fmt.Errorf("unknown distribution %q (must be likes, stocks, or reactions)", name)
	}
}

// values returns the union of keys across all three distributions in
// ascending order. This is the row index of the persisted form: a
// value present in only one distribution still gets a row.
func (c Counts) values() []int {
	set := make(map[int]struct{})
	for v := range c.Likes {
		set[v] = struct{}{}
	}
	for v := range c.Stocks {
		set[v] = struct{}{}
	}
	for v := range c.Reactions {
		set[v] = struct{}{}
	}

	values := make([]int, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

// WriteCSV saves the distributions as value,likes,stocks,reactions
// rows in ascending value order. A value missing from a distribution
// is written as 0.
func (c Counts) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"value", "likes", "stocks", "reactions"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, v := range c.values() {
		row := []string{
			strconv.Itoa(v),
			strconv.Itoa(c.Likes[v]),
			strconv.Itoa(c.Stocks[v]),
			strconv.Itoa(c.Reactions[v]),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row for value %d: %w", v, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV loads distributions previously written by WriteCSV.
// Zero counts are dropped, so writing and reading back reproduces the
// original distributions exactly.
func ReadCSV(path string) (Counts, error) {
	counts := Counts{
		Likes:     make(Distribution),
		Stocks:    make(Distribution),
		Reactions: make(Distribution),
	}

	f, err := os.Open(path)
	if err != nil {
		return counts, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return counts, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return counts, fmt.Errorf("%s: missing header", path)
	}

	header := records[0]
	want := []string{"value", "likes", "stocks", "reactions"}
	if !slices.Equal(header, want) {
		return counts, fmt.Errorf("%s: unexpected header %v", path, header)
	}

	for i, rec := range records[1:] {
		fields := make([]int, 4)
		for j, s := range rec {
			n, err := strconv.Atoi(s)
			if err != nil {
				return counts, fmt.Errorf("%s row %d: parsing %q: %w", path, i+1, s, err)
			}
			fields[j] = n
		}
		value := fields[0]
		if fields[1] > 0 {
			counts.Likes[value] = fields[1]
		}
		if fields[2] > 0 {
			counts.Stocks[value] = fields[2]
		}
		if fields[3] > 0 {
			counts.Reactions[value] = fields[3]
		}
	}
	return counts, nil
}
