package ml

// Regressor is a trained model exposed as a pure function over a
// fixed-length feature vector. Implementations hold only immutable
// state after loading and are safe for concurrent use.
type Regressor interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
}
