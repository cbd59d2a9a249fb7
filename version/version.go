// Package version reports build information and enforces the
// required_version constraint a project may pin in its config.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/convex-typegen/errors"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Version != "dev" {
		return fmt.Sprintf("convex-typegen %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
	}
	return fmt.Sprintf("convex-typegen dev (commit %s, built %s)", i.CommitHash, i.BuildTime)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Check reports whether the running binary satisfies constraint.
// An empty constraint and development builds always pass.
func Check(constraint string) error {
	return Get().Satisfies(constraint)
}

// Satisfies reports whether i.Version satisfies constraint.
func (i Info) Satisfies(constraint string) error {
	if constraint == "" || i.Version == "dev" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return errors.Wrapf(err, "invalid build version %q", i.Version)
	}

	if !c.Check(v) {
		return errors.WithHintf(
			errors.Newf("convex-typegen %s does not satisfy required_version %q", v, constraint),
			"install a matching release or relax required_version in %s", "convex-typegen.toml")
	}
	return nil
}
