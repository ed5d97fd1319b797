// Package version provides unified mechanisms for application version tracking and update discovery.
package version

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Compare orders two release versions as published on the marquee releases
// feed (semver, with or without a leading "v").
// Returns 1 if a > b, -1 if a < b, and 0 when equal.
func Compare(a, b string) (int, error) {
	type semver struct {
		major, minor, patch int
	}

	parse := func(s string) (semver, error) {
		var v semver
		_, err := fmt.Sscanf(strings.TrimPrefix(s, "v"), "%d.%d.%d", &v.major, &v.minor, &v.patch)
		return v, err
	}

	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range []lo.Tuple2[int, int]{
		{A: av.major, B: bv.major},
		{A: av.minor, B: bv.minor},
		{A: av.patch, B: bv.patch},
	} {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return 0, nil
}
