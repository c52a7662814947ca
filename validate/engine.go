package validate

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cilforge/cilmeta/cil"
	"github.com/cilforge/cilmeta/errors"
	"github.com/cilforge/cilmeta/loader"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the validation engine's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger installs a logger. Call before the first Run.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Engine runs the validator set selected by its config.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine. A zero MaxInheritanceDepth falls back to
// the default limit.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxInheritanceDepth <= 0 {
		cfg.MaxInheritanceDepth = DefaultMaxInheritanceDepth
	}
	return &Engine{cfg: cfg}
}

// validator is one named, independent check over a subject.
type validator[T any] struct {
	name    string
	fatal   bool
	enabled func(Config) bool
	run     func(T, Config) []errors.Violation
}

// abortError is the fail-fast sentinel used to stop a run early.
type abortError struct{}

func (abortError) Error() string { return "fatal violation" }

// runValidators fans the enabled validators out over an errgroup. Each
// validator owns its result slot, so collection needs no lock; results
// are flattened in declaration order to keep output deterministic.
func runValidators[T any](vs []validator[T], cfg Config, subject T) error {
	results := make([][]errors.Violation, len(vs))
	var g errgroup.Group
	for i, v := range vs {
		i, v := i, v
		if !v.enabled(cfg) {
			continue
		}
		g.Go(func() error {
			found := v.run(subject, cfg)
			for j := range found {
				found[j].Validator = v.name
				found[j].Fatal = v.fatal
			}
			results[i] = found
			if cfg.FailFast && v.fatal && len(found) > 0 {
				return abortError{}
			}
			return nil
		})
	}
	// The only error a validator goroutine returns is the fail-fast
	// sentinel; the violations themselves are in the result slots.
	_ = g.Wait()

	var all []errors.Violation
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return nil
	}
	return &errors.ValidationError{Violations: all}
}

// Raw runs the structural validators over a parsed image.
func (e *Engine) Raw(img *cil.Image) error {
	start := time.Now()
	err := runValidators(rawValidators, e.cfg, img)
	Logger().Debug("raw validation complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("clean", err == nil))
	return err
}

// Owned runs the semantic validators over a resolved assembly.
func (e *Engine) Owned(asm *loader.Assembly) error {
	start := time.Now()
	err := runValidators(ownedValidators, e.cfg, asm)
	Logger().Debug("owned validation complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("clean", err == nil))
	return err
}

// Run validates both representations, merging the violation sets. asm
// may be nil when only the raw image is available. Under FailFast a
// fatal raw violation skips the owned pass.
func (e *Engine) Run(img *cil.Image, asm *loader.Assembly) error {
	rawErr := e.Raw(img)
	if asm == nil {
		return rawErr
	}
	var rawVE *errors.ValidationError
	if rawErr != nil {
		if !errors.As(rawErr, &rawVE) {
			return rawErr
		}
		if e.cfg.FailFast && rawVE.HasFatal() {
			return rawErr
		}
	}

	ownedErr := e.Owned(asm)
	if ownedErr == nil {
		return rawErr
	}
	var ownedVE *errors.ValidationError
	if !errors.As(ownedErr, &ownedVE) {
		return ownedErr
	}
	if rawVE == nil {
		return ownedErr
	}
	return &errors.ValidationError{
		Violations: append(rawVE.Violations, ownedVE.Violations...),
	}
}

func violation(tok cil.Token, format string, args ...any) errors.Violation {
	return errors.Violation{Token: tok.Value(), Detail: fmt.Sprintf(format, args...)}
}

func violationAt(format string, args ...any) errors.Violation {
	return errors.Violation{Detail: fmt.Sprintf(format, args...)}
}
