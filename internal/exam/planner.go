package exam

import "fmt"

// DefaultMaxBatch is the per-call question cap used when no explicit limit
// is configured.
const DefaultMaxBatch = 10

// PlanBatches splits totalCount into batch sizes capped at maxBatch, e.g.
// 50 -> [10 10 10 10 10] and 25 -> [10 10 5]. The returned sizes always sum
// to totalCount and every size is in [1, maxBatch].
func PlanBatches(totalCount, maxBatch int) ([]int, error) {
	if totalCount <= 0 {
		return nil, fmt.Errorf("%w: total count must be positive, got %d", ErrInvalidArgument, totalCount)
	}
	if maxBatch <= 0 {
		return nil, fmt.Errorf("%w: max batch must be positive, got %d", ErrInvalidArgument, maxBatch)
	}

	sizes := make([]int, 0, (totalCount+maxBatch-1)/maxBatch)
	for remaining := totalCount; remaining > 0; {
		size := maxBatch
		if remaining < maxBatch {
			size = remaining
		}
		sizes = append(sizes, size)
		remaining -= size
	}
	return sizes, nil
}
