package macro

import (
	"errors"
	"fmt"
	"strings"
)

// A Kind tells whether a [Token] holds literal text or a macro reference.
type Kind int

const (
	// Literal tokens are copied verbatim into the rendered output.
	Literal Kind = iota
	// Macro tokens are resolved through a [Registry] at render time.
	Macro
)

// Delimiter opens and closes a macro inside a template.
const Delimiter = '%'

// ErrUnterminated is reported by [Validate] when a template ends inside a macro.
var ErrUnterminated = errors.New("unterminated macro")

// A Token is one unit of a lexed template.
// For a Literal token only Text is set.
// For a Macro token Text holds the raw macro body, which is split on the first ':' into Name and Param.
type Token struct {
	Kind  Kind
	Text  string
	Name  string
	Param string
}

func literal(text string) Token {
	return Token{Kind: Literal, Text: text}
}

func macro(body string) Token {
	name, param, _ := strings.Cut(body, ":")
	return Token{Kind: Macro, Text: body, Name: name, Param: param}
}

func (t Token) String() string {
	if t.Kind == Literal {
		return t.Text
	}
	return string(Delimiter) + t.Text + string(Delimiter)
}

// Lex splits text into literal and macro tokens.
//
// Every '%' toggles between literal mode and macro mode.
// Empty literal spans are dropped, empty macros are kept since "%%" is the escape for a literal '%'.
// A macro left open at the end of text is dropped. Lex never fails.
func Lex(text string) []Token {
	var tokens []Token
	start := 0
	inMacro := false
	for i := 0; i < len(text); i++ {
		if text[i] != Delimiter {
			continue
		}
		if inMacro {
			tokens = append(tokens, macro(text[start:i]))
		} else if start < i {
			tokens = append(tokens, literal(text[start:i]))
		}
		start = i + 1
		inMacro = !inMacro
	}
	if !inMacro && start < len(text) {
		tokens = append(tokens, literal(text[start:]))
	}
	return tokens
}

// Validate reports an error wrapping [ErrUnterminated] if text ends inside a macro.
// Lex silently drops such a macro, Validate is for callers that prefer to reject the template.
func Validate(text string) error {
	open := -1
	for i := 0; i < len(text); i++ {
		if text[i] != Delimiter {
			continue
		}
		if open < 0 {
			open = i
		} else {
			open = -1
		}
	}
	if open >= 0 {
		return fmt.Errorf("invalid template %q at offset %d, caused by %w", text, open, ErrUnterminated)
	}
	return nil
}
