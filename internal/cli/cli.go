// Package cli parses the module's long-form-only flag grammar (spec.md
// §4.4, §6): a small fixed harness flag set plus every name in
// schema.Table, merged into one argv scan. Seeing --name starts an implicit
// new job. Schema-table options are dispatched through a per-job
// pflag.FlagSet built by NewFlagSet, which wraps each schema.Entry in a
// pflag.Value via Entry.Bind so a CLI token and an INI key share the same
// Apply path.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ioburst/iobench/internal/harness"
	"github.com/ioburst/iobench/internal/job"
	"github.com/ioburst/iobench/internal/schema"
)

// HarnessFlags holds the parsed values of the fixed harness-level flags.
type HarnessFlags struct {
	Output       string
	TimeoutSec   int
	LatencyLog   bool
	BandwidthLog bool
	Minimal      bool
	Version      bool
	Help         bool
	CmdHelp      string
}

func newHarnessFlagSet(hf *HarnessFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("iobench", pflag.ContinueOnError)
	fs.StringVar(&hf.Output, "output", "", "redirect summary output to PATH")
	fs.IntVar(&hf.TimeoutSec, "timeout", 0, "default per-job runtime in seconds")
	fs.BoolVar(&hf.LatencyLog, "latency-log", false, "enable latency logging by default")
	fs.BoolVar(&hf.BandwidthLog, "bandwidth-log", false, "enable bandwidth logging by default")
	fs.BoolVar(&hf.Minimal, "minimal", false, "terse summary output")
	fs.BoolVar(&hf.Version, "version", false, "print version and exit")
	fs.BoolVar(&hf.Help, "help", false, "print usage and exit")
	fs.StringVar(&hf.CmdHelp, "cmdhelp", "", `print help for one option, or "all"`)
	return fs
}

// NewFlagSet returns a pflag.FlagSet binding every schema.Table entry to j
// via Entry.Bind — the schema-table half of the merged CLI grammar
// (spec.md §4.4). Harness flags are a separate, fixed FlagSet built by
// newHarnessFlagSet.
func NewFlagSet(j *job.Job) *pflag.FlagSet {
	fs := pflag.NewFlagSet("job", pflag.ContinueOnError)
	for i := range schema.Table {
		e := &schema.Table[i]
		fs.Var(e.Bind(j), e.Name, e.Kind.String())
		if e.Kind == schema.KindFlag {
			fs.Lookup(e.Name).NoOptDefVal = "1"
		}
	}
	return fs
}

// Parse consumes argv (excluding argv[0]) against the merged harness and
// schema flag grammar. A recognized harness flag updates HarnessFlags; any
// other recognized name is a job option applied to the in-progress worker,
// cloning a fresh one from ctx.Defaults on the first job option or on a new
// --name. Every in-progress worker is committed at a --name boundary and at
// argv end. Trailing non-flag arguments are returned as INI file paths.
func Parse(ctx *harness.Context, argv []string) (HarnessFlags, []string, error) {
	var hf HarnessFlags
	hfs := newHarnessFlagSet(&hf)

	var (
		paths        []string
		current      *job.Job
		currentFlags *pflag.FlagSet
		currentName  string
	)

	commit := func() error {
		if current == nil {
			return nil
		}
		w := current
		current = nil
		currentFlags = nil
		return job.AddJob(ctx.Table, ctx, w, currentName)
	}

	newJob := func() {
		current = ctx.Defaults.Clone()
		currentFlags = NewFlagSet(current)
	}

	i := 0
	for i < len(argv) {
		tok := argv[i]
		if !strings.HasPrefix(tok, "--") {
			paths = append(paths, tok)
			i++
			continue
		}

		name, val, hasVal := splitFlag(tok)

		if f := hfs.Lookup(name); f != nil {
			consumed, err := setHarnessFlag(f, val, hasVal, argv, i)
			if err != nil {
				return hf, nil, err
			}
			i += consumed
			continue
		}

		entry, ok := schema.ByName[name]
		if !ok {
			return hf, nil, fmt.Errorf("unrecognized flag %q", tok)
		}

		if !hasVal && entry.Kind != schema.KindFlag {
			if i+1 >= len(argv) {
				return hf, nil, fmt.Errorf("flag --%s requires a value", name)
			}
			val = argv[i+1]
			i++
		}

		if name == "name" {
			if err := commit(); err != nil {
				return hf, nil, err
			}
			newJob()
			currentName = val
		}
		if current == nil {
			newJob()
		}

		if err := currentFlags.Set(name, val); err != nil {
			return hf, nil, fmt.Errorf("--%s: %w", name, err)
		}
		i++
	}

	if err := commit(); err != nil {
		return hf, nil, err
	}

	return hf, paths, nil
}

func setHarnessFlag(f *pflag.Flag, val string, hasVal bool, argv []string, i int) (int, error) {
	if f.Value.Type() == "bool" {
		if !hasVal {
			val = "true"
		}
		if err := f.Value.Set(val); err != nil {
			return 0, fmt.Errorf("--%s: %w", f.Name, err)
		}
		return 1, nil
	}
	if !hasVal {
		if i+1 >= len(argv) {
			return 0, fmt.Errorf("flag --%s requires a value", f.Name)
		}
		val = argv[i+1]
		if err := f.Value.Set(val); err != nil {
			return 0, fmt.Errorf("--%s: %w", f.Name, err)
		}
		return 2, nil
	}
	if err := f.Value.Set(val); err != nil {
		return 0, fmt.Errorf("--%s: %w", f.Name, err)
	}
	return 1, nil
}

func splitFlag(tok string) (name, val string, hasVal bool) {
	tok = strings.TrimPrefix(tok, "--")
	if idx := strings.Index(tok, "="); idx >= 0 {
		return tok[:idx], tok[idx+1:], true
	}
	return tok, "", false
}
