package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ioburst/iobench/internal/engine"
)

// Apply parses raw against entry's Kind (and bounds/enum, if any), then
// either invokes entry.Custom or writes through j.SetField — the single
// dispatch point both readers call.
func Apply(entry *Entry, j JobSetter, raw string) error {
	if entry.Custom != nil {
		return entry.Custom(j, raw)
	}

	switch entry.Kind {
	case KindFlag:
		// Presence-only: any raw value (including empty) sets the flag true.
		return j.SetField(entry.Field, "1")

	case KindInt:
		n, err := parseBoundedInt(raw, entry.Min, entry.Max)
		if err != nil {
			return fmt.Errorf("option %q: %w", entry.Name, err)
		}
		return j.SetField(entry.Field, strconv.FormatInt(n, 10))

	case KindSize:
		n, err := ParseSize(raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", entry.Name, err)
		}
		return j.SetField(entry.Field, strconv.FormatUint(n, 10))

	case KindDuration:
		d, err := ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", entry.Name, err)
		}
		return j.SetField(entry.Field, strconv.FormatInt(int64(d), 10))

	case KindEnum:
		v, err := matchEnum(entry.Enum, raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", entry.Name, err)
		}
		return j.SetField(entry.Field, v)

	case KindRange:
		lo1, hi1, lo2, hi2, err := ParseRange(raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", entry.Name, err)
		}
		return j.SetField(entry.Field, fmt.Sprintf("%d:%d,%d:%d", lo1, hi1, lo2, hi2))

	case KindString:
		return j.SetField(entry.Field, raw)

	default:
		return fmt.Errorf("option %q: unknown kind", entry.Name)
	}
}

// parseIOEngine validates raw against the registered backend names before
// storing it, so an unknown ioengine is rejected at parse time rather than
// silently accepted and failing later. This is the schema's one genuine use
// of a custom parser: resolution into an engine.Handle happens in
// internal/job, which already depends on internal/engine.
func parseIOEngine(j JobSetter, raw string) error {
	if _, err := engine.Lookup(raw); err != nil {
		return fmt.Errorf("option %q: %w", "ioengine", err)
	}
	return j.SetField(FieldIOEngine, raw)
}

func init() {
	for i := range Table {
		if Table[i].Name == "ioengine" {
			Table[i].Custom = parseIOEngine
		}
	}
}

// ParseSize accepts a decimal integer optionally suffixed by k/m/g/p
// (case-insensitive), each a multiplication by 1024 over the previous.
func ParseSize(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty size value")
	}
	mult := uint64(1)
	suffix := raw[len(raw)-1]
	switch suffix {
	case 'k', 'K':
		mult = 1 << 10
	case 'm', 'M':
		mult = 1 << 20
	case 'g', 'G':
		mult = 1 << 30
	case 'p', 'P':
		mult = 1 << 40
	}
	numPart := raw
	if mult != 1 {
		numPart = raw[:len(raw)-1]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(numPart), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", raw, err)
	}
	return n * mult, nil
}

// ParseDuration accepts a decimal integer optionally suffixed by
// s/m/h/d (seconds/minutes/hours/days), returned as a time.Duration.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty duration value")
	}
	unit := time.Second
	suffix := raw[len(raw)-1]
	numPart := raw
	switch suffix {
	case 's', 'S':
		unit = time.Second
		numPart = raw[:len(raw)-1]
	case 'm', 'M':
		unit = time.Minute
		numPart = raw[:len(raw)-1]
	case 'h', 'H':
		unit = time.Hour
		numPart = raw[:len(raw)-1]
	case 'd', 'D':
		unit = 24 * time.Hour
		numPart = raw[:len(raw)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(numPart), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return time.Duration(n) * unit, nil
}

// ParseRange parses the lo:hi[,lo:hi] grammar: a single range replicates to
// both read and write directions.
func ParseRange(raw string) (lo1, hi1, lo2, hi2 uint64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) > 2 {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: too many comma-separated parts", raw)
	}
	lo1, hi1, err = parseLoHi(parts[0])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if len(parts) == 2 {
		lo2, hi2, err = parseLoHi(parts[1])
		if err != nil {
			return 0, 0, 0, 0, err
		}
	} else {
		lo2, hi2 = lo1, hi1
	}
	return lo1, hi1, lo2, hi2, nil
}

func parseLoHi(part string) (uint64, uint64, error) {
	kv := strings.SplitN(part, ":", 2)
	lo, err := ParseSize(kv[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range component %q: %w", part, err)
	}
	if len(kv) == 1 {
		return lo, lo, nil
	}
	hi, err := ParseSize(kv[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range component %q: %w", part, err)
	}
	return lo, hi, nil
}

// parseBoundedInt honors min/max (both 0 means unbounded in either
// direction when min == max == 0, which no registered entry uses for a
// genuinely unbounded field — entries that want no lower bound still set
// Min to a representative floor).
func parseBoundedInt(raw string, min, max int64) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	if min != 0 || max != 0 {
		if n < min || n > max {
			return 0, fmt.Errorf("value %d out of range [%d,%d]", n, min, max)
		}
	}
	return n, nil
}

// matchEnum rejects values not in the whitelist. Ties are broken so the
// longest whitelist entry that is a prefix of (or exactly equals) raw wins,
// per spec.md §4.2 ("randread before read").
func matchEnum(whitelist []string, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, v := range whitelist {
		if v == raw {
			return v, nil
		}
	}
	sorted := append([]string(nil), whitelist...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, v := range sorted {
		if strings.HasPrefix(raw, v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("value %q is not one of %v", raw, whitelist)
}
