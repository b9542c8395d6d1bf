// Copyright 2025 PointGrad ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package points provides the public API for point cloud sampling,
// grouping and interpolation.
//
// Coordinate tensors are (B, N, 3) float32. Feature tensors are
// channel-major (B, C, N) float32. Index tensors are int32. Every
// operator validates its arguments and returns an error before any
// buffer is allocated or kernel dispatched.
//
// Example:
//
//	backend := cpu.New()
//	xyz, _ := tensor.FromSlice(coords, tensor.Shape{1, 1024, 3}, backend)
//	idx, err := points.FurthestPointSample(xyz, 128)
package points

import (
	"github.com/pointgrad-ml/pointgrad/internal/points"
	"github.com/pointgrad-ml/pointgrad/internal/tensor"
)

// FurthestPointSample selects npoint indices from each batch element's
// point set so that the chosen points are maximally spread out. The first
// selected index is always 0; selected indices are distinct even when the
// cloud contains coincident points.
func FurthestPointSample[B tensor.Backend](xyz *tensor.Tensor[float32, B], npoint int) (*tensor.Tensor[int32, B], error) {
	return points.FurthestPointSample(xyz, npoint)
}

// BallQuery finds up to maxSamples points within radius of each query
// center. Short rows are padded by repeating the first hit; empty rows are
// all zeros.
func BallQuery[B tensor.Backend](centers, xyz *tensor.Tensor[float32, B], radius float32, maxSamples int) (*tensor.Tensor[int32, B], error) {
	return points.BallQuery(centers, xyz, radius, maxSamples)
}

// GatherPoints selects feature columns by index:
// out[b,c,m] = features[b,c,index[b,m]].
func GatherPoints[B tensor.Backend](features *tensor.Tensor[float32, B], index *tensor.Tensor[int32, B]) (*tensor.Tensor[float32, B], error) {
	return points.GatherPoints(features, index)
}

// GroupPoints selects grouped feature columns by index:
// out[b,c,m,s] = features[b,c,index[b,m,s]].
func GroupPoints[B tensor.Backend](features *tensor.Tensor[float32, B], index *tensor.Tensor[int32, B]) (*tensor.Tensor[float32, B], error) {
	return points.GroupPoints(features, index)
}

// ThreeNN finds the three nearest known points for every unknown point,
// nearest first, returning Euclidean distances and indices.
func ThreeNN[B tensor.Backend](unknown, known *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[int32, B], error) {
	return points.ThreeNN(unknown, known)
}

// InterpolationWeights converts ThreeNN distances into normalized
// inverse-distance weights. Each row of the result sums to 1.
func InterpolationWeights[B tensor.Backend](dist *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return points.InterpolationWeights(dist)
}

// ThreeInterpolate computes a weighted sum of three source features per
// output position.
func ThreeInterpolate[B tensor.Backend](features *tensor.Tensor[float32, B], index *tensor.Tensor[int32, B], weight *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	return points.ThreeInterpolate(features, index, weight)
}

// QueryAndGroup bundles ball query, grouped gather and re-centering into
// one set-abstraction grouping step.
type QueryAndGroup[B tensor.Backend] = points.QueryAndGroup[B]

// NewQueryAndGroup creates a grouping module with the given neighborhood
// parameters.
func NewQueryAndGroup[B tensor.Backend](radius float32, maxSamples int, useXYZ bool) *QueryAndGroup[B] {
	return points.NewQueryAndGroup[B](radius, maxSamples, useXYZ)
}

// GroupAll groups the entire point set into a single neighborhood.
type GroupAll[B tensor.Backend] = points.GroupAll[B]

// NewGroupAll creates a whole-cloud grouping module.
func NewGroupAll[B tensor.Backend](useXYZ bool) *GroupAll[B] {
	return points.NewGroupAll[B](useXYZ)
}
