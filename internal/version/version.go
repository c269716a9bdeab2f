// Package version holds the build version, set at link time:
//
//	go build -ldflags "-X qseq/internal/version.Version=v1.2.3"
package version

var Version = "dev"
