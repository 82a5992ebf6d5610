package schema

import "fmt"

// ResetDefaults applies every entry's built-in Default to j, used to
// initialize the Defaults descriptor at startup and to re-seed it before
// each INI file is parsed (spec.md §3: "Each INI file is re-seeded from
// it"). Only entries with a Default are applied; fields without one keep
// whatever value j already holds, which is why the INI reader hands it a
// freshly built descriptor.
func ResetDefaults(j JobSetter) error {
	for i := range Table {
		e := &Table[i]
		if e.Default == "" {
			continue
		}
		if err := Apply(e, j, e.Default); err != nil {
			return fmt.Errorf("resetting default for %q: %w", e.Name, err)
		}
	}
	return nil
}
