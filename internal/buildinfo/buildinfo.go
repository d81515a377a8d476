// Package buildinfo holds version metadata stamped at link time:
//
//	go build -ldflags "-X github.com/modoterra/svcpanel/internal/buildinfo.Version=v1.2.3"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
