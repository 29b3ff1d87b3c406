package flagx

import (
	"os"
	"strconv"
	"time"
)

// EnvString sets *dst to the first non-empty environment variable among
// names. dst is left untouched when none is set.
func EnvString(dst *string, names ...string) {
	for _, n := range names {
		if v, ok := os.LookupEnv(n); ok && v != "" {
			*dst = v
			return
		}
	}
}

// EnvDuration is EnvString for durations ("15m", "1h"). Values that do not
// parse are ignored.
func EnvDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

// EnvInt is EnvString for integers. Values that do not parse are ignored.
func EnvInt(dst *int, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
