package sequence

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/metrics"
)

// Option configures a generation run.
type Option func(*options)

type options struct {
	rng     *rand.Rand
	logger  *slog.Logger
	metrics *metrics.Generation
	count   *int
}

// WithRand sets the random source. The run takes ownership of rng; do not
// share it with concurrent runs.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed makes the run reproducible: the same seed and configuration always
// yield the same population.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = newRand(seed) }
}

// newRand returns the PCG source for seed. The same seed always yields the
// same stream.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records run outcomes on m.
func WithMetrics(m *metrics.Generation) Option {
	return func(o *options) { o.metrics = m }
}

// WithCount overrides uiConfig.numSequences.
func WithCount(n int) Option {
	return func(o *options) { o.count = &n }
}

// generator holds the per-run balancing state of every random and
// latinSquare block, keyed by structural path.
type generator struct {
	rng     *rand.Rand
	bags    map[string]*fairBag
	squares map[string]*latinPool
	fired   int
}

// Generate resolves cfg's ordering template into a population of
// cfg.UIConfig.SequenceCount() participant sequences.
//
// Every sequence mirrors the template's nesting with random order, sampling
// and interruption positions resolved, and ends with exactly one ir.EndStep.
// The configuration is checked before anything is generated; a violated
// constraint returns a *ConfigError and no sequences.
func Generate(cfg *ir.StudyConfig, opts ...Option) ([]*ir.Sequence, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	count := cfg.UIConfig.SequenceCount()
	if o.count != nil {
		count = *o.count
	}
	if count < 1 {
		o.metrics.RecordInvalid()
		return nil, &ConfigError{
			Code:    ErrCodeInvalidCount,
			Path:    "uiConfig",
			Field:   "numSequences",
			Message: fmt.Sprintf("must be at least 1, got %d", count),
		}
	}

	if err := Check(&cfg.Sequence); err != nil {
		o.metrics.RecordInvalid()
		o.logger.Warn("sequence configuration rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	g := &generator{
		rng:     o.rng,
		bags:    make(map[string]*fairBag),
		squares: make(map[string]*latinPool),
	}

	seqs := make([]*ir.Sequence, count)
	steps := make([]int, count)
	for i := range seqs {
		seq := g.resolve(&cfg.Sequence, ir.RootPath)
		seq.Components = append(seq.Components, ir.LeafEntry(ir.EndStep))
		seqs[i] = seq
		steps[i] = countLeaves(seq)
	}

	elapsed := time.Since(start)
	o.metrics.RecordSuccess(elapsed, steps, g.fired)
	o.logger.Info("sequences generated",
		"count", count,
		"random_blocks", len(g.bags),
		"latin_square_blocks", len(g.squares),
		"interruptions", g.fired,
		"elapsed", elapsed,
	)
	return seqs, nil
}

// resolve realizes block for one participant.
func (g *generator) resolve(block *ir.OrderObject, path string) *ir.Sequence {
	k := emittedCount(block)

	var picks []int
	switch block.Order {
	case ir.OrderRandom:
		picks = g.bag(path, len(block.Components)).draw(k, g.rng)
	case ir.OrderLatinSquare:
		picks = g.square(path, len(block.Components)).next(g.rng)[:k]
	default:
		picks = make([]int, k)
		for i := range picks {
			picks[i] = i
		}
	}

	entries := make([]ir.SequenceEntry, 0, len(picks))
	for _, idx := range picks {
		c := block.Components[idx]
		if c.Block != nil {
			entries = append(entries, ir.BlockEntry(g.resolve(c.Block, ChildPath(path, idx))))
			continue
		}
		entries = append(entries, ir.LeafEntry(c.Leaf))
	}

	entries, fired := applyInterruptions(entries, block.Interruptions, g.rng)
	g.fired += fired

	return &ir.Sequence{Order: block.Order, OrderPath: path, Components: entries}
}

func (g *generator) bag(path string, n int) *fairBag {
	b, ok := g.bags[path]
	if !ok {
		b = newFairBag(n)
		g.bags[path] = b
	}
	return b
}

func (g *generator) square(path string, n int) *latinPool {
	p, ok := g.squares[path]
	if !ok {
		p = newLatinPool(n)
		g.squares[path] = p
	}
	return p
}

// Check verifies that every block under root can be generated. It returns
// the first violated constraint as a *ConfigError.
func Check(root *ir.OrderObject) error {
	return checkBlock(root, ir.RootPath)
}

func checkBlock(block *ir.OrderObject, path string) error {
	if !ir.ValidOrderKinds[block.Order] {
		return &ConfigError{
			Code:    ErrCodeInvalidOrder,
			Path:    path,
			Field:   "order",
			Message: fmt.Sprintf("order must be one of fixed, random, latinSquare; got %q", block.Order),
		}
	}

	if block.NumSamples != nil {
		k := *block.NumSamples
		if k < 1 || k > len(block.Components) {
			return &ConfigError{
				Code:    ErrCodeInvalidSamples,
				Path:    path,
				Field:   "numSamples",
				Message: fmt.Sprintf("must be between 1 and %d (number of components), got %d", len(block.Components), k),
			}
		}
	}

	for i, c := range block.Components {
		if c.Block == nil && c.Leaf == ir.EndStep {
			return reservedStep(path, fmt.Sprintf("components[%d]", i))
		}
	}

	n := emittedCount(block)
	for i, in := range block.Interruptions {
		field := fmt.Sprintf("interruptions[%d]", i)
		if !ir.ValidSpacings[in.Spacing] {
			return &ConfigError{
				Code:    ErrCodeInvalidInterruption,
				Path:    path,
				Field:   field + ".spacing",
				Message: fmt.Sprintf("spacing must be even or random, got %q", in.Spacing),
			}
		}
		if len(in.Components) == 0 {
			return &ConfigError{
				Code:    ErrCodeInvalidInterruption,
				Path:    path,
				Field:   field + ".components",
				Message: "interruption has no components",
			}
		}
		for j, step := range in.Components {
			if step == ir.EndStep {
				return reservedStep(path, fmt.Sprintf("%s.components[%d]", field, j))
			}
		}
		if in.NumInterruptions < 1 || in.NumInterruptions > n {
			return &ConfigError{
				Code:    ErrCodeInvalidInterruption,
				Path:    path,
				Field:   field + ".numInterruptions",
				Message: fmt.Sprintf("must be between 1 and %d (components emitted by the block), got %d", n, in.NumInterruptions),
			}
		}
	}

	for i, c := range block.Components {
		if c.Block == nil {
			continue
		}
		if err := checkBlock(c.Block, ChildPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func reservedStep(path, field string) error {
	return &ConfigError{
		Code:    ErrCodeReservedStep,
		Path:    path,
		Field:   field,
		Message: fmt.Sprintf("%q is reserved for the terminal step", ir.EndStep),
	}
}
