// Package text implements readers.text and writers.text for delimited
// ASCII point files.
//
// The first line holds the dimension names. Fields are separated by a
// delimiter, or by runs of whitespace when the delimiter is blank.
//
//	X,Y,Z,Intensity
//	1.5,2.0,0.25,120
package text
