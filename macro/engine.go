package macro

import "strings"

// A Handler resolves a macro parameter into its replacement text.
type Handler func(param string) string

// A Registry maps macro names to handlers.
// Names are case-sensitive and the last registration for a name wins.
// A Registry is not safe for concurrent use.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds handler to name, replacing any previous handler.
func (r *Registry) Register(name string, handler Handler) {
	r.handlers[name] = handler
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Lifecycle brackets every full render of an [Engine].
// StartRender runs once before the first token is resolved, FinishRender once after the last.
type Lifecycle interface {
	StartRender()
	FinishRender()
}

type noLifecycle struct{}

func (noLifecycle) StartRender()  {}
func (noLifecycle) FinishRender() {}

// An Engine renders a template that was lexed once at construction.
type Engine struct {
	tokens    []Token
	registry  *Registry
	lifecycle Lifecycle
}

// New lexes text and returns an [Engine] resolving macros through registry.
// A nil registry is replaced by an empty one, a nil lifecycle by a no-op.
func New(text string, registry *Registry, lifecycle Lifecycle) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	if lifecycle == nil {
		lifecycle = noLifecycle{}
	}
	return &Engine{
		tokens:    Lex(text),
		registry:  registry,
		lifecycle: lifecycle,
	}
}

// Register binds handler to name in the engine's registry.
func (e *Engine) Register(name string, handler Handler) {
	e.registry.Register(name, handler)
}

// Tokens returns a copy of the lexed template.
func (e *Engine) Tokens() []Token {
	return append([]Token(nil), e.tokens...)
}

// Render resolves every token and concatenates the results.
// Unknown macros resolve to the empty string.
func (e *Engine) Render() string {
	e.lifecycle.StartRender()
	defer e.lifecycle.FinishRender()

	var sb strings.Builder
	for _, t := range e.tokens {
		if t.Kind == Literal {
			sb.WriteString(t.Text)
			continue
		}
		if h, ok := e.registry.Lookup(t.Name); ok {
			sb.WriteString(h(t.Param))
		}
	}
	return sb.String()
}

// Glob renders the template as a [path/filepath.Match] pattern.
// Macros named in static are resolved through their handlers, every other macro becomes "*".
// Lifecycle hooks are not invoked.
func (e *Engine) Glob(static ...string) string {
	var sb strings.Builder
	for _, t := range e.tokens {
		if t.Kind == Literal {
			sb.WriteString(t.Text)
			continue
		}
		if isStatic(t.Name, static) {
			if h, ok := e.registry.Lookup(t.Name); ok {
				sb.WriteString(h(t.Param))
			}
			continue
		}
		sb.WriteByte('*')
	}
	return sb.String()
}

func isStatic(name string, static []string) bool {
	for _, s := range static {
		if s == name {
			return true
		}
	}
	return false
}
