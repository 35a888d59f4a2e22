// SPDX-License-Identifier: MIT

// Package checking provides composable value checkers.
//
// A Checker combines up to four constraint families: kinds (what a value
// may be), literals (exact values it may take), a number line (where a
// numeric value may lie) and rules (arbitrary predicates). Checkers carry
// an optional default, converter and nil replacement, merge into richer
// checkers, and report every violated constraint at once.
//
// Most checkers are built from the constructors in this package, for
// example Int, NumberInRange or StartsWith, and combined with Merge:
//
//	port, err := checking.IntInRange(1, 65535).Merge(checking.NonZero())
package checking

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/checkings/checkings/numberline"
)

// Rule checks a single value and returns nil when it passes.
type Rule func(value any) error

// Converter transforms a value before validation.
type Converter func(value any) (any, error)

// logger receives normalization warnings. Disabled by default; services
// route it into their structured logger at startup.
var logger = zerolog.Nop()

// SetLogger routes normalization warnings to l. Call once at startup,
// before checkers are used.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Checker validates values against its configured constraint families.
// Build with New or the package constructors; combine with Merge. A Checker
// must not be copied after first use.
type Checker struct {
	defaultValue   any
	hasDefault     bool
	defaultFactory func() any
	line           *numberline.Line
	literals       []any
	hasLiterals    bool
	kinds          []Kind
	hasKinds       bool
	converter      Converter
	rules          []Rule
	replaceNil     bool
	buildErr       error

	normOnce    sync.Once
	normErr     error
	normIssues  []string
	normLine    *numberline.Line
	normLits    []any
	normHasLits bool
	normKinds   []Kind
}

// Option configures a Checker built by New.
type Option func(*Checker)

// WithDefault sets the value Apply falls back to when given NoValue.
// Slice and map defaults are shallow-cloned on every use.
func WithDefault(v any) Option {
	return func(c *Checker) {
		c.defaultValue = v
		c.hasDefault = true
	}
}

// WithDefaultFactory sets a function producing the fallback value.
func WithDefaultFactory(f func() any) Option {
	return func(c *Checker) { c.defaultFactory = f }
}

// WithLine constrains numeric values to the given number line.
func WithLine(l numberline.Line) Option {
	return func(c *Checker) { c.line = &l }
}

// WithLiterals constrains the value to the given literals.
func WithLiterals(literals ...any) Option {
	return func(c *Checker) {
		c.literals = append(c.literals, literals...)
		c.hasLiterals = true
	}
}

// WithKinds constrains the value to the given kinds.
func WithKinds(kinds ...Kind) Option {
	return func(c *Checker) {
		c.kinds = append(c.kinds, kinds...)
		c.hasKinds = true
	}
}

// WithConverter transforms the value before validation. Defaults are not
// converted.
func WithConverter(conv Converter) Option {
	return func(c *Checker) { c.converter = conv }
}

// WithRules adds custom rules.
func WithRules(rules ...Rule) Option {
	return func(c *Checker) { c.rules = append(c.rules, rules...) }
}

// WithReplaceNil makes Apply treat nil like an absent value, resolving the
// default instead.
func WithReplaceNil() Option {
	return func(c *Checker) { c.replaceNil = true }
}

// New builds a checker from the given options.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// The builder methods below configure a constructor-built checker in place
// and return it for chaining. They must be called before the checker's
// first use; later calls have no effect.

// Default sets the value Apply falls back to when given NoValue.
func (c *Checker) Default(v any) *Checker {
	c.defaultValue = v
	c.hasDefault = true
	return c
}

// DefaultFactory sets a function producing the fallback value.
func (c *Checker) DefaultFactory(f func() any) *Checker {
	c.defaultFactory = f
	return c
}

// Convert sets the converter applied to supplied values before validation.
func (c *Checker) Convert(conv Converter) *Checker {
	c.converter = conv
	return c
}

// ReplaceNil makes Apply treat nil like an absent value.
func (c *Checker) ReplaceNil() *Checker {
	c.replaceNil = true
	return c
}

// And adds custom rules to the checker.
func (c *Checker) And(rules ...Rule) *Checker {
	c.rules = append(c.rules, rules...)
	return c
}

// Merge combines two checkers into a new one. Number lines union, literals,
// kinds and rules concatenate, nil replacement carries over when either
// side has it. Defaults and converters are exclusive: merging two checkers
// that both carry one fails.
func (c *Checker) Merge(other *Checker) (*Checker, error) {
	out := &Checker{}

	switch {
	case (c.hasDefault || c.defaultFactory != nil) && (other.hasDefault || other.defaultFactory != nil):
		return nil, errors.New("cannot merge two default values")
	case c.hasDefault || c.defaultFactory != nil:
		out.defaultValue, out.hasDefault, out.defaultFactory = c.defaultValue, c.hasDefault, c.defaultFactory
	default:
		out.defaultValue, out.hasDefault, out.defaultFactory = other.defaultValue, other.hasDefault, other.defaultFactory
	}

	switch {
	case c.converter != nil && other.converter != nil:
		return nil, errors.New("cannot merge two converters")
	case c.converter != nil:
		out.converter = c.converter
	default:
		out.converter = other.converter
	}

	switch {
	case c.line != nil && other.line != nil:
		merged := c.line.Union(*other.line)
		out.line = &merged
	case c.line != nil:
		l := *c.line
		out.line = &l
	case other.line != nil:
		l := *other.line
		out.line = &l
	}

	out.literals = concat(c.literals, other.literals)
	out.hasLiterals = c.hasLiterals || other.hasLiterals
	out.kinds = concat(c.kinds, other.kinds)
	out.hasKinds = c.hasKinds || other.hasKinds
	out.rules = concat(c.rules, other.rules)
	out.replaceNil = c.replaceNil || other.replaceNil
	if c.buildErr != nil {
		out.buildErr = c.buildErr
	} else {
		out.buildErr = other.buildErr
	}

	return out, nil
}

// MustMerge is Merge that panics on conflict, for statically known
// combinations.
func (c *Checker) MustMerge(other *Checker) *Checker {
	merged, err := c.Merge(other)
	if err != nil {
		panic("checking: " + err.Error())
	}
	return merged
}

func concat[T any](a, b []T) []T {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Err reports whether the checker's configuration is usable at all. It is
// the same error Validate and Apply would return before looking at any
// value.
func (c *Checker) Err() error {
	c.normalize()
	return c.normErr
}

// Issues returns the normalization notes, such as literals dropped for not
// matching any configured kind. The notes are also logged at warn level.
func (c *Checker) Issues() []string {
	c.normalize()
	out := make([]string, len(c.normIssues))
	copy(out, c.normIssues)
	return out
}

// normalize resolves the raw configuration into the state validation runs
// against. It runs once; merged checkers normalize independently.
func (c *Checker) normalize() {
	c.normOnce.Do(func() {
		err := c.doNormalize()
		if err != nil {
			c.normErr = fmt.Errorf("%w: %w", ErrInvalidChecker, err)
		}
		for _, issue := range c.normIssues {
			logger.Warn().Str("event", "checker.normalize").Msg(issue)
		}
	})
}

func (c *Checker) doNormalize() error {
	if c.buildErr != nil {
		return c.buildErr
	}

	if c.line != nil {
		if c.line.IsEmpty() {
			return errors.New("number line is empty")
		}
		l := *c.line
		c.normLine = &l
	}

	if c.hasLiterals {
		c.normHasLits = true
		c.normLits = dedupLiterals(c.literals)
		if len(c.normLits) == 0 {
			return errors.New("literals are empty")
		}
	}

	if c.hasKinds {
		c.normKinds = dedupKinds(c.kinds)
		if len(c.normKinds) == 0 {
			return errors.New("kinds are empty")
		}

		if c.normHasLits {
			kept := c.normLits[:0:0]
			for _, lit := range c.normLits {
				if kindIn(KindOf(lit), c.normKinds) {
					kept = append(kept, lit)
				}
			}
			if len(kept) == 0 {
				return errors.New("no literals are of the required kind")
			}
			if len(kept) != len(c.normLits) {
				c.normIssues = append(c.normIssues,
					"some literals are not of the required kind, they are removed from literals")
			}
			c.normLits = kept

			keptKinds := c.normKinds[:0:0]
			for _, k := range c.normKinds {
				matched := false
				for _, lit := range c.normLits {
					if KindOf(lit) == k {
						matched = true
						break
					}
				}
				if matched {
					keptKinds = append(keptKinds, k)
				}
			}
			if len(keptKinds) != len(c.normKinds) {
				c.normIssues = append(c.normIssues,
					"some kinds are not present in literals, they are removed from kinds")
			}
			c.normKinds = keptKinds
		}

		if c.normLine != nil && !kindIn(KindInt, c.normKinds) && !kindIn(KindFloat, c.normKinds) {
			c.normLine = nil
			c.normIssues = append(c.normIssues,
				"number line is not used because kinds do not contain int or float")
		}
	}

	return nil
}

func dedupLiterals(in []any) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		seen := false
		for _, kept := range out {
			if literalEqual(kept, v) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

func dedupKinds(in []Kind) []Kind {
	out := make([]Kind, 0, len(in))
	for _, k := range in {
		if !kindIn(k, out) {
			out = append(out, k)
		}
	}
	return out
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, v := range kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Validate checks value against every configured constraint family and
// returns a CheckError listing all violations. name labels the value in the
// error message.
func (c *Checker) Validate(value any, name string) error {
	c.normalize()
	if c.normErr != nil {
		return c.normErr
	}

	var errs []error
	if err := c.checkKind(value); err != nil {
		errs = append(errs, err)
	}
	if err := c.checkLiteral(value); err != nil {
		errs = append(errs, err)
	}
	if err := c.checkLine(value); err != nil {
		errs = append(errs, err)
	}
	if err := c.checkRules(value); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &CheckError{Name: name, Value: value, errs: errs}
	}
	return nil
}

// Apply runs the full pipeline: resolve the default when value is NoValue
// (or nil with nil replacement on), convert, validate, and return the final
// value.
func (c *Checker) Apply(value any, name string) (any, error) {
	c.normalize()
	if c.normErr != nil {
		return nil, c.normErr
	}

	if IsNoValue(value) || (value == nil && c.replaceNil) {
		def, ok := c.resolveDefault()
		if !ok {
			return nil, fmt.Errorf("no value given and no default value for `%s`", name)
		}
		value = def
		name = fmt.Sprintf("default of `%s`", name)
	} else if c.converter != nil {
		converted, err := c.converter(value)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", name, err)
		}
		value = converted
	}

	if err := c.Validate(value, name); err != nil {
		return nil, err
	}
	return value, nil
}

func (c *Checker) hasAnyDefault() bool {
	return c.hasDefault || c.defaultFactory != nil
}

func (c *Checker) resolveDefault() (any, bool) {
	if c.defaultFactory != nil {
		return c.defaultFactory(), true
	}
	if !c.hasDefault {
		return nil, false
	}
	return cloneValue(c.defaultValue), true
}

// cloneValue shallow-copies slices and maps so a shared default cannot be
// mutated through a returned value.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMap(rv.Type())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	}
	return v
}

func (c *Checker) checkKind(value any) error {
	if len(c.normKinds) == 0 {
		return nil
	}
	got := KindOf(value)
	for _, k := range c.normKinds {
		if got == k {
			return nil
		}
	}
	names := make([]any, len(c.normKinds))
	for i, k := range c.normKinds {
		names[i] = k.String()
	}
	return fmt.Errorf("value (%s) must be one of the following kinds: %s", got, tupleStr(names))
}

func (c *Checker) checkLiteral(value any) error {
	if !c.normHasLits {
		return nil
	}
	for _, lit := range c.normLits {
		if literalEqual(lit, value) {
			return nil
		}
	}
	return fmt.Errorf("value (%v) must be one of the following: %s", value, tupleStr(c.normLits))
}

func (c *Checker) checkLine(value any) error {
	if c.normLine == nil {
		return nil
	}
	f, ok := numericValue(value)
	if !ok {
		// The kind family already reports non-numeric values when kinds are
		// configured.
		if len(c.normKinds) > 0 {
			return nil
		}
		return fmt.Errorf("cannot check for kind %s in NumberLine, only int and float are allowed", KindOf(value))
	}
	return c.normLine.Check(f)
}

func (c *Checker) checkRules(value any) error {
	if len(c.rules) == 0 {
		return nil
	}
	var errs []error
	for _, rule := range c.rules {
		if err := rule(value); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &RuleError{errs: errs}
	}
	return nil
}
