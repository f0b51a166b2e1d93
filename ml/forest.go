package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// TreeNode is one node of a regression tree stored as a flat array.
// Child fields index into the same array; Value is the prediction at a
// leaf.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// Forest is an ensemble regressor: the prediction is the mean of the
// per-tree outputs. Trees are exported from the offline training step as
// a JSON artifact and loaded read-only here; traversal has no random
// component, so equal inputs always produce bit-identical outputs.
type Forest struct {
	featureCount int
	trees        [][]TreeNode
}

type forestArtifact struct {
	FeatureCount int          `json:"feature_count"`
	Trees        [][]TreeNode `json:"trees"`
}

// NewForest builds a forest from in-memory trees, used by tests and
// artifact tooling.
func NewForest(featureCount int, trees [][]TreeNode) (*Forest, error) {
	if featureCount <= 0 {
		return nil, errors.New("feature count must be positive")
	}
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	for i, tree := range trees {
		if len(tree) == 0 {
			return nil, fmt.Errorf("tree %d is empty", i)
		}
	}
	return &Forest{featureCount: featureCount, trees: trees}, nil
}

func (f *Forest) NumFeatures() int {
	return f.featureCount
}

// NumTrees returns the ensemble size.
func (f *Forest) NumTrees() int {
	return len(f.trees)
}

func (f *Forest) Predict(features []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, errors.New("model not loaded")
	}
	if len(features) != f.featureCount {
		return 0, fmt.Errorf("expected %d features, got %d", f.featureCount, len(features))
	}

	sum := 0.0
	for i := range f.trees {
		value, err := f.predictTree(f.trees[i], features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += value
	}
	return sum / float64(len(f.trees)), nil
}

func (f *Forest) predictTree(nodes []TreeNode, features []float64) (float64, error) {
	idx := 0
	for {
		node := nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (f *Forest) Save(path string) error {
	if len(f.trees) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(forestArtifact{
		FeatureCount: f.featureCount,
		Trees:        f.trees,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (f *Forest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact forestArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	loaded, err := NewForest(artifact.FeatureCount, artifact.Trees)
	if err != nil {
		return err
	}
	*f = *loaded
	return nil
}
