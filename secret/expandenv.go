package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// envVarPattern matches both `${VAR}` (strict) and bare `$VAR`
// (best-effort) references.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// literalDollar masks `$$` during expansion so a literal dollar sign can
// survive in values such as redis passwords.
const literalDollar = "\x00tiercache:dollar\x00"

// ExpandEnvStrict expands environment variable references in store
// connection settings before they are resolved or dialed.
//
// Semantics:
//   - `${VAR}` is expanded; if VAR is missing from the environment the
//     whole expansion fails, naming every missing variable.
//   - Bare `$VAR` is expanded best-effort (missing variables become
//     empty, matching os.ExpandEnv).
//   - `$$` emits a literal `$`.
func ExpandEnvStrict(s string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}
	masked := strings.ReplaceAll(s, "$$", literalDollar)

	var missing []string
	expanded := envVarPattern.ReplaceAllStringFunc(masked, func(m string) string {
		if !strings.HasPrefix(m, "${") {
			return os.Getenv(m[1:])
		}
		name := m[2 : len(m)-1]
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		missing = slices.Compact(missing)
		return "", fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(expanded, literalDollar, "$"), nil
}
