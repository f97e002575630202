// Package preprocess implements invertible affine normalizations of rank-2 datasets.
//
// Normalization is a two-phase protocol with a type-level guarantee: Fit computes an
// immutable Parameters value from a reference dataset, and only a Parameters value
// can normalize or denormalize data. There is no object that can be used before it
// has been initialized.
//
//	Kind     offset   scale            ScalingRatio
//	MinMax   min      max - min        max - min
//	ZScore   mean     sample stddev    stddev
//	Null     0        1                1
//
// Statistics are taken per column (one value per feature, the usual choice) or per
// row. A direction whose range or variance is zero gets scale 1, so normalized data
// stays finite; Parameters.Degenerate lists those directions.
//
// Example:
//
//	x, _ := tensor.FromRows([][]float64{{-1}, {-0.5}, {0}, {0.5}, {1}})
//	p, _ := preprocess.Fit(preprocess.MinMax, x, preprocess.PerColumn)
//	scaled, _ := p.Normalize(x)      // 0, 0.25, 0.5, 0.75, 1
//	back, _ := p.Denormalize(scaled) // x
//	ratio := p.ScalingRatio()        // [2]
//
// ScalingRatio lets a consumer map gradients computed in normalized space back to
// physical units: d(y)/d(x) = ratioY[i] / ratioX[j] * d(y')/d(x').
package preprocess
