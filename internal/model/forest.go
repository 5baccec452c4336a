package model

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// treeSpec uses the flat node arrays of sklearn's tree_ attribute.
type treeSpec struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type forestSpec struct {
	Trees []treeSpec `json:"trees"`
}

const leaf = -1

type tree struct {
	left, right []int
	feature     []int
	threshold   []float64
	dist        [][]float64 // normalized class distribution per leaf
}

// RandomForest averages the leaf class distributions of its trees.
type RandomForest struct {
	trees     []tree
	nFeatures int
	nClasses  int
}

func newRandomForest(in FactoryInput) (Classifier, error) {
	var s forestSpec
	if err := json.Unmarshal(in.Spec, &s); err != nil {
		return nil, fmt.Errorf("decode random forest: %w", err)
	}
	if len(s.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	f := &RandomForest{nFeatures: in.NFeatures, nClasses: in.NClasses}
	for i, ts := range s.Trees {
		t, err := buildTree(ts, in.NFeatures, in.NClasses)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		f.trees = append(f.trees, t)
	}
	return f, nil
}

func buildTree(s treeSpec, nFeatures, nClasses int) (tree, error) {
	n := len(s.ChildrenLeft)
	if n == 0 {
		return tree{}, fmt.Errorf("no nodes")
	}
	if len(s.ChildrenRight) != n || len(s.Feature) != n || len(s.Threshold) != n || len(s.Value) != n {
		return tree{}, fmt.Errorf("node arrays differ in length")
	}
	t := tree{
		left:      s.ChildrenLeft,
		right:     s.ChildrenRight,
		feature:   s.Feature,
		threshold: s.Threshold,
		dist:      make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		l, r := s.ChildrenLeft[i], s.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return tree{}, fmt.Errorf("node %d has only one child", i)
			}
			if len(s.Value[i]) != nClasses {
				return tree{}, fmt.Errorf("leaf %d has %d class weights, want %d", i, len(s.Value[i]), nClasses)
			}
			d := append([]float64(nil), s.Value[i]...)
			if sum := floats.Sum(d); sum > 0 {
				floats.Scale(1/sum, d)
			}
			t.dist[i] = d
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return tree{}, fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if f := s.Feature[i]; f < 0 || f >= nFeatures {
			return tree{}, fmt.Errorf("node %d splits on feature %d of %d", i, f, nFeatures)
		}
	}
	return t, nil
}

// leafFor walks to x's leaf. Features are rounded to float32 before the
// comparison, as sklearn does when it fits and applies trees.
func (t *tree) leafFor(x []float64) []float64 {
	node := 0
	for t.left[node] != leaf {
		if float64(float32(x[t.feature[node]])) <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.dist[node]
}

func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if err := checkInput(x, f.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, f.nClasses)
	for i := range f.trees {
		floats.Add(out, f.trees[i].leafFor(x))
	}
	floats.Scale(1/float64(len(f.trees)), out)
	return out, nil
}

func (f *RandomForest) Predict(x []float64) (int, error) {
	p, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(p), nil
}
