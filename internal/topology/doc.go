// Package topology builds the rest-state grid of a cloth: point positions,
// texture coordinates, a triangle-strip index list and the spring links.
//
// Points are stored row-major: index = row*Cols + col. The grid lies in a
// horizontal plane at a fixed height, X runs along columns and Z along rows.
package topology
