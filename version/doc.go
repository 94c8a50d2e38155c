// Package version reports the pointflow build.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/pointflow/version.Version=1.0.0" ./cmd/pointflow
//
// Unset values fall back to the VCS stamps embedded by the go tool.
package version
