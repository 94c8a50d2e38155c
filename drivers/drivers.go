// Package drivers registers the built-in readers, filters and writers.
package drivers

import (
	"github.com/kbukum/pointflow/drivers/faux"
	"github.com/kbukum/pointflow/drivers/null"
	"github.com/kbukum/pointflow/drivers/sqlite"
	"github.com/kbukum/pointflow/drivers/text"
	"github.com/kbukum/pointflow/filters/merge"
	"github.com/kbukum/pointflow/filters/outlier"
	"github.com/kbukum/pointflow/filters/splitter"
	"github.com/kbukum/pointflow/filters/stats"
	"github.com/kbukum/pointflow/stage"
)

// Builtins returns the descriptions of every built-in driver.
func Builtins() []stage.DriverInfo {
	return []stage.DriverInfo{
		faux.Info(),
		text.ReaderInfo(),
		sqlite.ReaderInfo(),

		splitter.Info(),
		outlier.StatisticalInfo(),
		outlier.RadiusInfo(),
		stats.Info(),
		merge.Info(),

		text.WriterInfo(),
		sqlite.WriterInfo(),
		null.Info(),
	}
}

// RegisterBuiltins adds the built-in drivers to reg.
func RegisterBuiltins(reg *stage.Registry) error {
	for _, info := range Builtins() {
		if err := reg.Register(info); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in drivers.
func NewRegistry(opts ...stage.RegistryOption) *stage.Registry {
	reg := stage.NewRegistry(opts...)
	reg.MustRegister(Builtins()...)
	return reg
}
