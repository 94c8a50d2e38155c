// Package options implements the option set carried by every stage: an
// ordered multimap from option name to value.
//
// Adding an option never erases earlier values of the same name; lookups
// return the most recently added value, and GetAll returns every value in
// insertion order. Replace is the only operation that drops earlier values.
//
//	opts := options.New()
//	opts.Add("length", "10")
//	opts.Add("buffer", 2.5)
//	length, err := opts.Float64("length")
package options
