package schema

import "github.com/spf13/pflag"

// entryValue adapts an Entry and a destination JobSetter into a pflag.Value,
// so a CLI flag and an INI key share the exact same validation and dispatch
// path (Apply) instead of the CLI reader duplicating parse logic.
type entryValue struct {
	entry *Entry
	j     JobSetter
	raw   string
}

// Bind returns a pflag.Value for entry that writes through j on every Set.
func (e *Entry) Bind(j JobSetter) pflag.Value {
	return &entryValue{entry: e, j: j}
}

func (v *entryValue) String() string { return v.raw }

func (v *entryValue) Set(s string) error {
	if err := Apply(v.entry, v.j, s); err != nil {
		return err
	}
	v.raw = s
	return nil
}

func (v *entryValue) Type() string { return v.entry.Kind.String() }
