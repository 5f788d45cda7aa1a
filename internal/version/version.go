package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// Version is the engine version. Overridden at build time with -ldflags.
var Version = "0.2.0"

// CheckConstraint checks whether the engine version satisfies a semver
// constraint declared in a simulation config (e.g. ">=0.2.0 <0.3.0").
// An empty constraint always passes. A "main" development build skips the
// check entirely.
func CheckConstraint(constraint string) error {
	if constraint == "" {
		return nil
	}

	engineVersion := strings.TrimPrefix(Version, "v")
	if engineVersion == "main" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine_version constraint %q", constraint)
	}

	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version %q", engineVersion)
	}

	if !c.Check(v) {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"engine version %s does not satisfy constraint %q", engineVersion, constraint)
	}

	return nil
}
