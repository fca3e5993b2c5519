// Package model implements the gradient-boosted tree classifier, its
// stratified K-fold training harness, and the ranking predictor.
package model

// Profile is a gradient-boosting hyperparameter set. Two profiles are
// recognized: Normal for a from-scratch fit and Lightweight for the
// backtest engine's periodic retraining, where fit time matters more
// than a few points of held-out accuracy.
type Profile struct {
	Leaves           int
	LearningRate     float64
	Estimators       int
	FeatureSubsample float64 // fraction of features considered per tree; 1.0 = all
	RowSubsample     float64 // fraction of rows considered per subsampled tree; 1.0 = all
	RowSubsampleFreq int     // subsample rows every Nth tree; 0 = never
}

var NormalProfile = Profile{
	Leaves:           31,
	LearningRate:     0.05,
	Estimators:       100,
	FeatureSubsample: 0.9,
	RowSubsample:     0.8,
	RowSubsampleFreq: 5,
}

var LightweightProfile = Profile{
	Leaves:           15,
	LearningRate:     0.10,
	Estimators:       50,
	FeatureSubsample: 1.0,
	RowSubsample:     1.0,
	RowSubsampleFreq: 0,
}

// MinTrainingSamples is the floor below which the trainer refuses to
// fit at all.
const MinTrainingSamples = 100
