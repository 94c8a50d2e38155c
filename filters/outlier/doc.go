// Package outlier implements the statistical and radius outlier filters.
//
// Both filters classify every point of a view as inlier or outlier using a
// kd-tree neighbor search, then apply the same result policy: outliers are
// either tagged with the high-noise classification in place or dropped
// into a new view of inliers. A filter that would remove every point leaves
// its input unchanged.
package outlier
