package linekeeper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/trviph/linekeeper/macro"
)

// Upper bound for the width parameter of the counter macro.
const maxCounterWidth = 64

// generatorState is the only state that changes between renders of a [NameGenerator].
type generatorState struct {
	counter uint64
	now     func() time.Time
	stamp   time.Time
}

// StartRender samples the clock once so all date macros of a render agree.
func (s *generatorState) StartRender() {
	s.stamp = s.now().UTC()
}

// FinishRender advances the counter once per render.
func (s *generatorState) FinishRender() {
	s.counter++
}

// A NameGenerator renders successive names from a macro template.
//
// Supported macros:
//
//	%COUNTER:W% or %NUM:W%  the counter, left-padded with zeros to at least W digits
//	%YEAR% %MONTH% %DAY%    the UTC date of the render
//	%HOUR% %MINUTE% %SECOND% the UTC time of the render
//	%%                      a literal '%'
//
// A NameGenerator is not safe for concurrent use.
type NameGenerator struct {
	engine *macro.Engine
	state  *generatorState
}

// NewNameGenerator returns a [NameGenerator] for template whose counter starts at counter.
// If now is nil, [time.Now] is used.
func NewNameGenerator(template string, counter uint64, now func() time.Time) *NameGenerator {
	if now == nil {
		now = time.Now
	}
	state := &generatorState{counter: counter, now: now}
	g := &NameGenerator{
		engine: macro.New(template, macro.NewRegistry(), state),
		state:  state,
	}
	g.engine.Register("", func(string) string { return "%" })
	g.engine.Register("COUNTER", g.counterMacro)
	g.engine.Register("NUM", g.counterMacro)
	g.engine.Register("YEAR", g.dateMacro(func(t time.Time) int { return t.Year() }, 4))
	g.engine.Register("MONTH", g.dateMacro(func(t time.Time) int { return int(t.Month()) }, 2))
	g.engine.Register("DAY", g.dateMacro(func(t time.Time) int { return t.Day() }, 2))
	g.engine.Register("HOUR", g.dateMacro(func(t time.Time) int { return t.Hour() }, 2))
	g.engine.Register("MINUTE", g.dateMacro(func(t time.Time) int { return t.Minute() }, 2))
	g.engine.Register("SECOND", g.dateMacro(func(t time.Time) int { return t.Second() }, 2))
	return g
}

// Register adds a macro or overrides a built-in one.
func (g *NameGenerator) Register(name string, handler macro.Handler) {
	g.engine.Register(name, handler)
}

// Generate renders the next name and advances the counter.
func (g *NameGenerator) Generate() string {
	return g.engine.Render()
}

// Counter returns the counter value the next [NameGenerator.Generate] will use.
func (g *NameGenerator) Counter() uint64 {
	return g.state.counter
}

// Glob returns a pattern matching every name the generator can produce,
// assuming the macros listed in static always render the same text.
func (g *NameGenerator) Glob(static ...string) string {
	return g.engine.Glob(append(append([]string(nil), static...), "")...)
}

// Continue counting from counter.
func (g *NameGenerator) seek(counter uint64) {
	g.state.counter = counter
}

func (g *NameGenerator) counterMacro(param string) string {
	width, err := strconv.ParseUint(param, 10, 0)
	if err != nil || width == 0 {
		width = 1
	}
	if width > maxCounterWidth {
		width = maxCounterWidth
	}
	return fmt.Sprintf("%0*d", int(width), g.state.counter)
}

func (g *NameGenerator) dateMacro(field func(time.Time) int, width int) macro.Handler {
	return func(string) string {
		return fmt.Sprintf("%0*d", width, field(g.state.stamp))
	}
}
