package classpath

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

// ExpandPaths replaces every glob pattern in paths with the files it
// matches, sorted, keeping the order of the arguments. "**" matches any
// number of directories. Paths without glob characters are kept as given,
// whether or not they exist.
func ExpandPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[{") {
			out = append(out, p)
			continue
		}

		matches, err := doublestar.Glob(p)
		if err != nil {
			return nil, errors.NewValidationError("invalid classpath pattern").WithField("classpath").WithValue(p).WithCause(err)
		}
		if len(matches) == 0 {
			return nil, errors.NewValidationError("classpath pattern matches nothing").WithField("classpath").WithValue(p)
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return out, nil
}
