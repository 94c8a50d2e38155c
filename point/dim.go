package point

import "strings"

// Dim identifies a point dimension.
type Dim int

// Built-in dimensions.
const (
	DimUnknown Dim = iota
	DimX
	DimY
	DimZ
	DimIntensity
	DimReturnNumber
	DimNumberOfReturns
	DimClassification
	DimGpsTime
	DimRed
	DimGreen
	DimBlue

	// firstUserDim is the first id handed out to dimensions registered by name.
	firstUserDim
)

// Classification values.
const (
	ClassNeverClassified = 0
	ClassGround          = 2
	ClassHighNoise       = 18
)

var builtinNames = [...]string{
	DimUnknown:         "Unknown",
	DimX:               "X",
	DimY:               "Y",
	DimZ:               "Z",
	DimIntensity:       "Intensity",
	DimReturnNumber:    "ReturnNumber",
	DimNumberOfReturns: "NumberOfReturns",
	DimClassification:  "Classification",
	DimGpsTime:         "GpsTime",
	DimRed:             "Red",
	DimGreen:           "Green",
	DimBlue:            "Blue",
}

// Name returns the canonical name of a built-in dimension, or "" for user
// dimensions, whose names live in their Layout.
func (d Dim) Name() string {
	if d >= 0 && int(d) < len(builtinNames) {
		return builtinNames[d]
	}
	return ""
}

// Builtin reports whether d is one of the predefined dimensions.
func (d Dim) Builtin() bool {
	return d > DimUnknown && d < firstUserDim
}

// DimByName resolves a built-in dimension name, ignoring case.
func DimByName(name string) (Dim, bool) {
	for i := DimX; i < firstUserDim; i++ {
		if strings.EqualFold(builtinNames[i], name) {
			return i, true
		}
	}
	return DimUnknown, false
}

// XYZ is the default dimension order for readers and writers.
func XYZ() []Dim { return []Dim{DimX, DimY, DimZ} }
