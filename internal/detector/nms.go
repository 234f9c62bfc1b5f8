package detector

import (
	"image"
	"sort"

	"github.com/MeKo-Tech/widen/internal/geometry"
)

// scoredBox is a raw model detection before suppression.
type scoredBox struct {
	Box   image.Rectangle
	Score float64
}

// nonMaxSuppression keeps the highest scoring box of every overlapping
// group. The result is ordered by descending score.
func nonMaxSuppression(boxes []scoredBox, iouThreshold float64) []scoredBox {
	if len(boxes) <= 1 {
		return boxes
	}

	indices := make([]int, len(boxes))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return boxes[indices[i]].Score > boxes[indices[j]].Score
	})

	suppressed := make([]bool, len(boxes))
	kept := make([]scoredBox, 0, len(boxes))
	for _, a := range indices {
		if suppressed[a] {
			continue
		}
		kept = append(kept, boxes[a])
		for _, b := range indices {
			if suppressed[b] || a == b {
				continue
			}
			if geometry.IoU(boxes[a].Box, boxes[b].Box) > iouThreshold {
				suppressed[b] = true
			}
		}
	}
	return kept
}
