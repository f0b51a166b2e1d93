package ml

import (
	"path/filepath"
	"testing"
)

func leaf(value float64) []TreeNode {
	return []TreeNode{{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: value, IsLeaf: true}}
}

// splitTree predicts low when features[featureIdx] <= threshold, else high.
func splitTree(featureIdx int, threshold, low, high float64) []TreeNode {
	return []TreeNode{
		{FeatureIdx: featureIdx, Threshold: threshold, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: low, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: high, IsLeaf: true},
	}
}

func TestForestPredictMeanOfTrees(t *testing.T) {
	forest, err := NewForest(FeatureCount, [][]TreeNode{leaf(2.0), leaf(4.0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prediction, err := forest.Predict(make([]float64, FeatureCount))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prediction != 3.0 {
		t.Fatalf("expected mean 3.0, got %v", prediction)
	}
}

func TestForestPredictTraversal(t *testing.T) {
	forest, err := NewForest(FeatureCount, [][]TreeNode{splitTree(FeatureExportsRate, 5.0, 1.0, 3.0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low := make([]float64, FeatureCount)
	low[FeatureExportsRate] = 4.0
	high := make([]float64, FeatureCount)
	high[FeatureExportsRate] = 6.0

	if got, _ := forest.Predict(low); got != 1.0 {
		t.Fatalf("expected left branch value 1.0, got %v", got)
	}
	if got, _ := forest.Predict(high); got != 3.0 {
		t.Fatalf("expected right branch value 3.0, got %v", got)
	}
}

func TestForestPredictWrongWidth(t *testing.T) {
	forest, err := NewForest(FeatureCount, [][]TreeNode{leaf(1.0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := forest.Predict([]float64{1, 2}); err == nil {
		t.Fatal("expected error for wrong vector width")
	}
}

func TestForestDeterministicAcrossReload(t *testing.T) {
	forest, err := NewForest(FeatureCount, [][]TreeNode{
		splitTree(FeatureCountryCode, 1.5, -0.5, 2.5),
		leaf(1.25),
		splitTree(FeatureInvestmentRate, 0.0, 0.75, 1.5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	features := []float64{2, 1.0, 10.0, 5.0, 8.0, 3.0, 2.0}
	before, err := forest.Predict(features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := forest.Predict(features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != before {
		t.Fatalf("prediction changed between calls: %v vs %v", again, before)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := forest.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	reloaded := &Forest{}
	if err := reloaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	after, err := reloaded.Predict(features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after != before {
		t.Fatalf("prediction changed across reload: %v vs %v", after, before)
	}
}

func TestLoadModelUnsupportedType(t *testing.T) {
	if _, err := LoadModel("xgboost", "model.json"); err == nil {
		t.Fatal("expected error for unsupported model type")
	}
}
