package model

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
)

// accuracyViaGolearn scores a fold's holdout the same way this
// codebase's random-forest path already does: round-trip the feature
// matrix through a CSV file into golearn's dense instance format, then
// build a confusion matrix between the true and predicted label
// columns. Kept as a thin adapter so the from-scratch boosting trees
// still get their holdout accuracy scored by the library this codebase
// already depends on for evaluation.
func accuracyViaGolearn(X [][]float64, yTrue, yPred []int) (float64, error) {
	actual, err := toInstances(X, yTrue)
	if err != nil {
		return 0, fmt.Errorf("build actual instances: %w", err)
	}
	predicted, err := toInstances(X, yPred)
	if err != nil {
		return 0, fmt.Errorf("build predicted instances: %w", err)
	}

	confusion, err := evaluation.GetConfusionMatrix(actual, predicted)
	if err != nil {
		return 0, fmt.Errorf("confusion matrix: %w", err)
	}
	return evaluation.GetAccuracy(confusion), nil
}

// toInstances writes X and labels to a temporary CSV and parses it back
// as a golearn base.FixedDataGrid, matching this codebase's existing
// CSV round-trip convention for interop with golearn.
func toInstances(X [][]float64, labels []int) (base.FixedDataGrid, error) {
	tmp, err := os.CreateTemp("", "keiba-fold-*.csv")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	for i, row := range X {
		for _, v := range row {
			if _, err := tmp.WriteString(strconv.FormatFloat(v, 'f', -1, 64) + ","); err != nil {
				return nil, err
			}
		}
		if _, err := tmp.WriteString(strconv.Itoa(labels[i]) + "\n"); err != nil {
			return nil, err
		}
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	return base.ParseCSVToInstances(tmp.Name(), false)
}
