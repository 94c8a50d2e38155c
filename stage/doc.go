// Package stage defines pipeline stages, the Driver contract they wrap, and
// the driver registry used to resolve stage types by name or by filename.
//
// A driver is registered once with a DriverInfo describing its role, the
// file extensions it handles and its input cardinality:
//
//	reg := stage.NewRegistry()
//	reg.Register(stage.DriverInfo{
//		Name:       "readers.text",
//		Role:       stage.RoleReader,
//		Extensions: []string{".txt", ".csv"},
//		New:        func() stage.Driver { return &textReader{} },
//	})
//
// Drivers built outside the binary are loaded from Go plugins exporting
// RegisterDrivers(*stage.Registry) error.
package stage
