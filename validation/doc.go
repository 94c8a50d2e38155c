// Package validation checks stage argument structs using struct tags.
//
// Drivers declare their options as a struct decoded from the stage's option
// set; validation runs right after decoding so a bad value is reported
// before any stage executes.
//
//	type splitterArgs struct {
//	    Length float64 `mapstructure:"length" validate:"gt=0"`
//	    Buffer float64 `mapstructure:"buffer" validate:"gte=0"`
//	}
//	err := validation.Validate(&args)
package validation
