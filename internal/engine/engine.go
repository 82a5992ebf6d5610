// Package engine resolves an ioengine name to an opaque backend handle.
//
// The actual I/O submission/completion protocol behind each handle is a peer
// subsystem and out of scope here: this package owns only registration and
// lookup, plus the feature-flag bitfield the job builder and fixups consult
// (sync-only forces iodepth=1, raw-I/O marks direct-capable engines, CPU-burn
// engines skip random-state seeding).
package engine

import "fmt"

// FeatureSet is a bitfield of capabilities an engine handle advertises.
type FeatureSet uint8

const (
	// SyncOnly means the engine issues one synchronous operation at a time;
	// the job builder forces iodepth to 1 for such engines.
	SyncOnly FeatureSet = 1 << iota
	// RawIO means the engine can honor O_DIRECT / raw block access.
	RawIO
	// CPUBurn means the engine does not perform real I/O at all — it spins
	// the CPU to simulate load. Random-state seeding skips these workers.
	CPUBurn
)

func (f FeatureSet) Has(flag FeatureSet) bool { return f&flag != 0 }

// Handle is the opaque backend object the job builder attaches to a worker
// once ioengine=NAME resolves. Operation hooks consumed by the out-of-scope
// I/O subsystem are deliberately not modeled here.
type Handle interface {
	Name() string
	Features() FeatureSet
}

type handle struct {
	name     string
	features FeatureSet
}

func (h *handle) Name() string         { return h.name }
func (h *handle) Features() FeatureSet { return h.features }

// rawIOOverride decorates a Handle to report RawIO regardless of what the
// wrapped handle natively advertises.
type rawIOOverride struct{ Handle }

func (r *rawIOOverride) Features() FeatureSet { return r.Handle.Features() | RawIO }

// WithRawIO marks h as raw-I/O capable, for a worker whose direct=1 was
// honored on an engine that doesn't natively support it (direct-I/O forces
// the raw-I/O flag onto whatever backend ends up handling the worker).
func WithRawIO(h Handle) Handle {
	if h.Features().Has(RawIO) {
		return h
	}
	return &rawIOOverride{Handle: h}
}

type factory func() Handle

var registry = map[string]factory{}

func register(name string, features FeatureSet) {
	registry[name] = func() Handle { return &handle{name: name, features: features} }
}

func init() {
	register("sync", SyncOnly)
	register("psync", SyncOnly)
	register("libaio", RawIO)
	register("io_uring", RawIO)
	register("mmap", 0)
	register("splice", 0)
	register("null", 0)
	register("cpuio", CPUBurn)
}

// Register adds or replaces a named backend. Intended for the out-of-scope
// I/O subsystem to plug in real engines without this package knowing their
// implementation.
func Register(name string, features FeatureSet) {
	register(name, features)
}

// Lookup resolves a backend by name, as invoked by the ioengine= custom
// schema parser.
func Lookup(name string) (Handle, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown ioengine %q", name)
	}
	return f(), nil
}

// Names returns the currently registered engine names, in no particular
// order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
