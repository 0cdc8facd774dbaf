// Package version exposes build identification for the tropism binaries.
// Values are overridden at link time:
//
//	go build -ldflags "-X github.com/farcloser/tropism/version.version=v1.0.0 \
//	  -X github.com/farcloser/tropism/version.commit=abcdef0"
package version

var (
	name    = "tropism"
	version = "dev"
	commit  = "unknown"
)

// Name returns the canonical binary name.
func Name() string {
	return name
}

// Version returns the release version, or "dev" for local builds.
func Version() string {
	return version
}

// Commit returns the VCS commit the binary was built from.
func Commit() string {
	return commit
}
