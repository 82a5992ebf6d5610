// Package sizefmt formats byte counts and durations for job summary lines.
//
// The source fio formatter returns freshly allocated strings the caller must
// free four at a time when printing a summary. This version just returns a
// string — no caller-owned buffers, nothing to free.
package sizefmt

import (
	"fmt"
	"time"
)

// Size renders n bytes using the same base-1024 suffix ladder schema.ParseSize
// accepts (K/M/G/P), so Size(n) round-trips through the schema size parser:
// a suffix is only used when n divides evenly by that unit, otherwise the
// plain byte count is printed — schema.ParseSize has no fractional-suffix
// grammar, so a "1.50K" form here would not parse back.
func Size(n uint64) string {
	switch {
	case n != 0 && n%(1<<40) == 0:
		return fmt.Sprintf("%dP", n/(1<<40))
	case n != 0 && n%(1<<30) == 0:
		return fmt.Sprintf("%dG", n/(1<<30))
	case n != 0 && n%(1<<20) == 0:
		return fmt.Sprintf("%dM", n/(1<<20))
	case n != 0 && n%(1<<10) == 0:
		return fmt.Sprintf("%dK", n/(1<<10))
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Duration renders a duration using the s/m/h/d suffix grammar
// schema.ParseDuration accepts.
func Duration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
}
