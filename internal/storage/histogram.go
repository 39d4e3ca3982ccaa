package storage

import "fmt"

// HistogramBucket labels the quality-score bucket a score falls into, e.g.
// 20-size buckets give "0-19", "20-39", ... "80-100".
func HistogramBucket(score, bucketSize int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	low := (score / bucketSize) * bucketSize
	if low >= 100 {
		low = 100 - bucketSize
	}
	if low < 0 {
		low = 0
	}
	// The top bucket absorbs 100 so scores split into exactly 100/bucketSize
	// buckets.
	if low+bucketSize >= 100 {
		return fmt.Sprintf("%d-100", low)
	}
	return fmt.Sprintf("%d-%d", low, low+bucketSize-1)
}
