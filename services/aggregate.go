package services

import (
	"fmt"
	"sort"
	"time"
)

type Timeframe string

const (
	Daily   Timeframe = "daily"
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
)

// Number of most recent buckets kept per timeframe.
var bucketLimits = map[Timeframe]int{
	Daily:   14,
	Weekly:  8,
	Monthly: 6,
}

func ParseTimeframe(v string) (Timeframe, error) {
	tf := Timeframe(v)
	if _, ok := bucketLimits[tf]; !ok {
		return "", invalid("timeframe", "must be daily, weekly or monthly")
	}
	return tf, nil
}

// DailyPoint is one row of a per-day summary series.
type DailyPoint struct {
	Date             time.Time
	Value            float64
	ChangePercentage float64
}

// Bucket is an aggregated period. Date is the first day present in the bucket.
type Bucket struct {
	Key              string    `json:"key"`
	Date             time.Time `json:"date"`
	Total            float64   `json:"total"`
	ChangePercentage float64   `json:"changePercentage"`
	Days             int       `json:"days"`
}

// Aggregate groups points into timeframe buckets, oldest first. Totals are summed;
// ChangePercentage is the plain mean of the daily percentages in the bucket.
func Aggregate(points []DailyPoint, tf Timeframe) ([]Bucket, error) {
	limit, ok := bucketLimits[tf]
	if !ok {
		return nil, invalid("timeframe", "must be daily, weekly or monthly")
	}

	sorted := make([]DailyPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	buckets := []Bucket{}
	index := map[string]int{}
	var pctSums []float64

	for _, p := range sorted {
		key := bucketKey(p.Date.UTC(), tf)
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, Date: p.Date})
			pctSums = append(pctSums, 0)
		}
		buckets[i].Total += p.Value
		buckets[i].Days++
		pctSums[i] += p.ChangePercentage
	}

	for i := range buckets {
		buckets[i].ChangePercentage = pctSums[i] / float64(buckets[i].Days)
	}

	if len(buckets) > limit {
		buckets = buckets[len(buckets)-limit:]
	}
	return buckets, nil
}

func bucketKey(t time.Time, tf Timeframe) string {
	switch tf {
	case Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
