package pipeline

import (
	"context"
)

// Session regenerates mosaics from fixed options under changing seeds. It
// backs interactive hosts: reseed on demand, advance along the follow-up
// seeds, or tweak options and redraw the current seed.
//
// A Session is not safe for concurrent use.
type Session struct {
	runner *Runner
	opts   Options
	last   *Result
}

// NewSession returns a session over runner for opts. Nothing is generated
// until Current, Reseed, or Advance is called.
func NewSession(runner *Runner, opts Options) *Session {
	return &Session{runner: runner, opts: opts}
}

// Options returns the options of the next run, with defaults applied once
// anything has been generated.
func (s *Session) Options() Options { return s.opts }

// Last returns the most recent result, or nil.
func (s *Session) Last() *Result { return s.last }

// Current returns the latest result, generating it first if needed.
func (s *Session) Current(ctx context.Context) (*Result, error) {
	if s.last != nil {
		return s.last, nil
	}
	return s.run(ctx)
}

// Reseed generates seed in place of the current mosaic. On failure the
// session keeps its previous seed and result.
func (s *Session) Reseed(ctx context.Context, seed uint32) (*Result, error) {
	prevSeed, prevResult := s.opts.Seed, s.last
	s.opts.Seed = seed
	res, err := s.run(ctx)
	if err != nil {
		s.opts.Seed, s.last = prevSeed, prevResult
		return nil, err
	}
	return res, nil
}

// Advance reseeds with the follow-up seed of the current mosaic.
func (s *Session) Advance(ctx context.Context) (*Result, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.Reseed(ctx, cur.Mosaic.NextSeed)
}

// Update applies fn to the options and regenerates the current seed. If
// the new options are invalid the previous options and result are kept.
func (s *Session) Update(ctx context.Context, fn func(*Options)) (*Result, error) {
	prev, prevResult := s.opts, s.last
	fn(&s.opts)
	s.opts.validated = false
	res, err := s.run(ctx)
	if err != nil {
		s.opts, s.last = prev, prevResult
		return nil, err
	}
	return res, nil
}

func (s *Session) run(ctx context.Context) (*Result, error) {
	s.runner.inheritLogger(&s.opts)
	if err := s.opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res, err := s.runner.Execute(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	s.last = res
	return res, nil
}
