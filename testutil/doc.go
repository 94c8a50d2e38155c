// Package testutil provides fixtures for testing pointflow stages and
// pipelines.
//
// Build views from coordinates:
//
//	table := testutil.NewTable()
//	v := testutil.View(table, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
//
// Script a driver and inspect what it received:
//
//	d := testutil.Passthrough()
//	s := testutil.Stage("filters.test", d, upstream)
//	// ... execute ...
//	if d.Calls() != 1 { ... }
//
// Prepare a driver with automatic cleanup:
//
//	env := testutil.T(t).Prepare(driver, opts)
//	// Done is called when the test ends
package testutil
