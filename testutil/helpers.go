package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/stage"
)

// THelper provides testing.T integration for driver setup.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T to provide helper methods.
//
// Example:
//
//	func TestSplitter(t *testing.T) {
//	    env := testutil.T(t).Prepare(d, options.New().Add("length", 10))
//	    // d.Done is called when the test ends
//	}
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Prepare decodes opts into the driver's arguments, prepares it on a fresh
// table, and registers Done with the test's cleanup when the driver is a
// Finisher. It fails the test on any error.
func (h *THelper) Prepare(d stage.Driver, opts *options.Options) stage.Env {
	h.t.Helper()
	env, err := h.TryPrepare(d, opts)
	if err != nil {
		h.t.Fatalf("failed to prepare driver: %v", err)
	}
	return env
}

// TryPrepare is Prepare returning the error instead of failing the test.
func (h *THelper) TryPrepare(d stage.Driver, opts *options.Options) (stage.Env, error) {
	h.t.Helper()
	if opts == nil {
		opts = options.New()
	}
	env := stage.Env{Name: "test", Table: NewTable(), Log: logger.Nop(), Options: opts}
	if args := d.Args(); args != nil {
		if err := opts.Decode(args); err != nil {
			return env, err
		}
	}
	if err := d.Prepare(h.ctx, env); err != nil {
		return env, err
	}
	if f, ok := d.(stage.Finisher); ok {
		h.t.Cleanup(func() {
			if err := f.Done(h.ctx); err != nil {
				h.t.Errorf("failed to finish driver: %v", err)
			}
		})
	}
	return env, nil
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the file's path.
func (h *THelper) WriteFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
