// Package inireader streams a flat INI-style job file into worker
// descriptors (spec.md §4.3). Section bodies are read to completion even
// when an option fails to parse, so every mistake in a section surfaces at
// once; the section is then dropped as a whole rather than partially
// committed.
package inireader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ioburst/iobench/internal/harness"
	"github.com/ioburst/iobench/internal/job"
	"github.com/ioburst/iobench/internal/schema"
)

// globalSection is the literal section name that targets the defaults
// descriptor instead of allocating a worker.
const globalSection = "global"

// Read streams r, dispatching each section's options through the schema
// against a worker cloned from ctx.Defaults (or the defaults descriptor
// itself for "[global]"), and commits each successfully parsed, non-global
// section via job.AddJob. ctx.Defaults is replaced by a fresh descriptor
// (keeping the run ID) and re-seeded from the schema's built-in defaults
// before this file is read, so settings from a prior file's [global] never
// leak into this one.
func Read(ctx *harness.Context, r io.Reader) error {
	fresh := job.NewDefaults()
	fresh.Job().RunID = ctx.RunID
	ctx.Defaults = fresh
	if err := schema.ResetDefaults(ctx.Defaults.Job()); err != nil {
		return fmt.Errorf("inireader: resetting defaults: %w", err)
	}

	ls := &lineScanner{sc: bufio.NewScanner(r)}

	name, ok := seekFirstSection(ls)
	for ok {
		name, ok = readSection(ctx, ls, name)
	}
	return nil
}

// readSection consumes the body of the section named name, committing it on
// success, and returns the next section header it found (if any).
func readSection(ctx *harness.Context, ls *lineScanner, name string) (string, bool) {
	isGlobal := name == globalSection

	var j *job.Job
	if isGlobal {
		j = ctx.Defaults.Job()
	} else {
		j = ctx.Defaults.Clone()
	}

	var errs []error
	var nextName string
	var nextOK bool

	for {
		line, ok := ls.next()
		if !ok {
			break
		}
		if isBlankOrComment(line) {
			continue
		}
		if hdr, ok := parseSectionHeader(line); ok {
			nextName, nextOK = hdr, true
			break
		}

		key, val := splitKV(line)
		entry, ok := schema.ByName[key]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown option %q", key))
			continue
		}
		if err := schema.Apply(entry, j, val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	switch {
	case len(errs) > 0:
		log.Warnf("fio: section %q dropped: %v", name, errors.Join(errs...))
	case !isGlobal:
		if err := job.AddJob(ctx.Table, ctx, j, name); err != nil {
			log.Warnf("fio: section %q: %v", name, err)
		}
	}

	return nextName, nextOK
}

// seekFirstSection skips leading blank/comment lines to find the file's
// first section header.
func seekFirstSection(ls *lineScanner) (string, bool) {
	for {
		line, ok := ls.next()
		if !ok {
			return "", false
		}
		if isBlankOrComment(line) {
			continue
		}
		if name, ok := parseSectionHeader(line); ok {
			return name, true
		}
	}
}

// lineScanner wraps bufio.Scanner one line at a time. The next section
// header, once read while scanning the current section's body, is handed
// straight back to Read as readSection's return value — a one-line
// lookahead carried in a local variable rather than the source's
// file-position save/restore peek (spec.md §9 "Mixed INI parsing").
type lineScanner struct {
	sc *bufio.Scanner
}

func (l *lineScanner) next() (string, bool) {
	if l.sc.Scan() {
		return l.sc.Text(), true
	}
	return "", false
}

func isBlankOrComment(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return trimmed == "" || strings.HasPrefix(trimmed, ";")
}

func parseSectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return "", false
	}
	end := strings.Index(trimmed, "]")
	if end < 0 {
		return "", false
	}
	return trimmed[1:end], true
}

func splitKV(line string) (key, val string) {
	line = strings.TrimSpace(line)
	idx := strings.Index(line, "=")
	if idx < 0 {
		return line, ""
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}
