package bpe

import "github.com/agentstation/subword/internal/merge"

// config is the accumulated result of applying every Option.
type config struct {
	pattern       string
	variant       Variant
	workers       int
	progress      merge.ProgressFunc
	cacheSize     int
	baseTokens    []string
	mergeStrategy MergeStrategy
}

func defaultConfig() config {
	return config{
		variant:   BBPE,
		workers:   defaultWorkers,
		cacheSize: 0,
	}
}

// Option is a functional option for configuring a Tokenizer.
type Option func(*config) error

// WithPattern sets the pre-tokenizer regex pattern. If not set, the
// GPT-4-style default pattern is used.
func WithPattern(pattern string) Option {
	return func(c *config) error {
		if pattern == "" {
			return newErr(InputValidation, "with_pattern", errEmptyPattern)
		}
		c.pattern = pattern
		return nil
	}
}

// WithVariant selects BBPE (default) or CharBPE id-ification.
func WithVariant(v Variant) Option {
	return func(c *config) error {
		c.variant = v
		return nil
	}
}

// WithWorkers bounds Phase 1's counting fan-out. Values <= 1 make
// training sequential.
func WithWorkers(n int) Option {
	return func(c *config) error {
		c.workers = n
		return nil
	}
}

// WithProgress registers a callback invoked once per completed merge
// during training.
func WithProgress(fn merge.ProgressFunc) Option {
	return func(c *config) error {
		c.progress = fn
		return nil
	}
}

// WithCacheSize bounds the per-pre-token encode result cache. 0 disables
// caching; a negative size is an error.
func WithCacheSize(size int) Option {
	return func(c *config) error {
		if size < 0 {
			return newErrf(InputValidation, "with_cache_size", "cache size must be >= 0, got %d", size)
		}
		c.cacheSize = size
		return nil
	}
}

// WithBaseTokens seeds additional tokens into the vocabulary before
// training begins, alongside the byte/scalar seed. Useful for carrying
// forward a fixed set of multi-byte tokens (e.g. frequent whole words) a
// caller wants guaranteed a single id regardless of corpus frequency.
func WithBaseTokens(tokens []string) Option {
	return func(c *config) error {
		c.baseTokens = append(c.baseTokens, tokens...)
		return nil
	}
}

// WithMergeStrategy selects the encode-path merge-application algorithm.
// Greedy is the default; RankPriority is the strictly-correct, slower
// opt-in alternative.
func WithMergeStrategy(s MergeStrategy) Option {
	return func(c *config) error {
		c.mergeStrategy = s
		return nil
	}
}
