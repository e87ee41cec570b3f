// Package version reports the build version of streamgen binaries.
//
//	go build -ldflags "-X github.com/kbukum/streamgen/version.Version=1.0.0" ./cmd/streamgen
package version
