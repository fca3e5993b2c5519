package model

import "sort"

// gbTreeNode is one node of a regression tree fit to boosting residuals.
// Internal nodes route on FeatureIndex/Threshold; leaves carry a fitted
// constant prediction.
type gbTreeNode struct {
	isLeaf       bool
	prediction   float64
	featureIndex int
	threshold    float64
	left, right  *gbTreeNode
}

// gbTree is one boosting round's regression tree, grown leaf-wise (best
// first) up to a fixed leaf budget rather than depth-first to a fixed
// depth — the num_leaves hyperparameter this package exposes only makes
// sense under leaf-wise growth.
type gbTree struct {
	root *gbTreeNode
}

const minSamplesLeaf = 5

type splitCandidate struct {
	featureIndex int
	threshold    float64
	gain         float64
	leftIdx      []int
	rightIdx     []int
}

// growingLeaf is a not-yet-finalized leaf still eligible to be split.
type growingLeaf struct {
	node      *gbTreeNode
	indices   []int
	candidate *splitCandidate // nil if this leaf cannot be usefully split
}

// buildTreeLeafWise grows a regression tree against targets (residuals)
// using the rows in indices and the feature columns in featureIdx
// (already row/feature-subsampled by the caller), stopping once
// maxLeaves leaves exist or no remaining leaf has a positive-gain split.
func buildTreeLeafWise(features [][]float64, targets []float64, indices []int, featureIdx []int, maxLeaves int) *gbTree {
	root := &gbTreeNode{isLeaf: true, prediction: mean(targets, indices)}
	leaves := []*growingLeaf{{
		node:      root,
		indices:   indices,
		candidate: findBestSplit(features, targets, indices, featureIdx),
	}}

	for len(leaves) < maxLeaves {
		bestIdx := -1
		var bestGain float64
		for i, l := range leaves {
			if l.candidate == nil {
				continue
			}
			if bestIdx == -1 || l.candidate.gain > bestGain {
				bestIdx = i
				bestGain = l.candidate.gain
			}
		}
		if bestIdx == -1 || bestGain <= 0.0001 {
			break
		}

		toSplit := leaves[bestIdx]
		leaves = append(leaves[:bestIdx], leaves[bestIdx+1:]...)

		toSplit.node.isLeaf = false
		toSplit.node.featureIndex = toSplit.candidate.featureIndex
		toSplit.node.threshold = toSplit.candidate.threshold

		leftNode := &gbTreeNode{isLeaf: true, prediction: mean(targets, toSplit.candidate.leftIdx)}
		rightNode := &gbTreeNode{isLeaf: true, prediction: mean(targets, toSplit.candidate.rightIdx)}
		toSplit.node.left = leftNode
		toSplit.node.right = rightNode

		leaves = append(leaves,
			&growingLeaf{node: leftNode, indices: toSplit.candidate.leftIdx,
				candidate: findBestSplit(features, targets, toSplit.candidate.leftIdx, featureIdx)},
			&growingLeaf{node: rightNode, indices: toSplit.candidate.rightIdx,
				candidate: findBestSplit(features, targets, toSplit.candidate.rightIdx, featureIdx)},
		)
	}

	return &gbTree{root: root}
}

func findBestSplit(features [][]float64, targets []float64, indices []int, featureIdx []int) *splitCandidate {
	if len(indices) <= minSamplesLeaf*2 {
		return nil
	}
	if isHomogeneous(targets, indices) {
		return nil
	}

	parentVariance := variance(targets, indices)
	var best *splitCandidate

	for _, f := range featureIdx {
		values := uniqueSorted(features, indices, f)
		if len(values) < 2 {
			continue
		}
		for i := 0; i < len(values)-1; i++ {
			threshold := (values[i] + values[i+1]) / 2

			var left, right []int
			for _, idx := range indices {
				if features[idx][f] <= threshold {
					left = append(left, idx)
				} else {
					right = append(right, idx)
				}
			}
			if len(left) < minSamplesLeaf || len(right) < minSamplesLeaf {
				continue
			}

			leftVar := variance(targets, left)
			rightVar := variance(targets, right)
			leftWeight := float64(len(left)) / float64(len(indices))
			rightWeight := float64(len(right)) / float64(len(indices))
			gain := parentVariance - (leftWeight*leftVar + rightWeight*rightVar)

			if best == nil || gain > best.gain {
				best = &splitCandidate{
					featureIndex: f,
					threshold:    threshold,
					gain:         gain,
					leftIdx:      left,
					rightIdx:     right,
				}
			}
		}
	}

	if best == nil || best.gain <= 0.0001 {
		return nil
	}
	return best
}

func (t *gbTree) predict(row []float64) float64 {
	n := t.root
	for !n.isLeaf {
		if row[n.featureIndex] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prediction
}

func mean(values []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += values[i]
	}
	return sum / float64(len(indices))
}

func variance(values []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	m := mean(values, indices)
	var sum float64
	for _, i := range indices {
		d := values[i] - m
		sum += d * d
	}
	return sum / float64(len(indices))
}

func isHomogeneous(values []float64, indices []int) bool {
	if len(indices) == 0 {
		return true
	}
	first := values[indices[0]]
	for _, i := range indices[1:] {
		if abs(values[i]-first) > 0.0001 {
			return false
		}
	}
	return true
}

func uniqueSorted(features [][]float64, indices []int, featureIdx int) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, i := range indices {
		v := features[i][featureIdx]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
