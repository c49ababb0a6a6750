package macro

import (
	"errors"
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Token
	}{
		{
			name: "empty",
			text: "",
		},
		{
			name: "literal only",
			text: "/tmp/test.txt",
			want: []Token{literal("/tmp/test.txt")},
		},
		{
			name: "macro with parameter",
			text: "/tmp/test-%NUM:4%.txt",
			want: []Token{
				literal("/tmp/test-"),
				{Kind: Macro, Text: "NUM:4", Name: "NUM", Param: "4"},
				literal(".txt"),
			},
		},
		{
			name: "only the first colon splits",
			text: "%TEST:a:b%",
			want: []Token{{Kind: Macro, Text: "TEST:a:b", Name: "TEST", Param: "a:b"}},
		},
		{
			name: "escape is an empty macro",
			text: "a%%b",
			want: []Token{literal("a"), {Kind: Macro}, literal("b")},
		},
		{
			name: "adjacent macros",
			text: "%YEAR%%MONTH%",
			want: []Token{
				{Kind: Macro, Text: "YEAR", Name: "YEAR"},
				{Kind: Macro, Text: "MONTH", Name: "MONTH"},
			},
		},
		{
			name: "unterminated macro is dropped",
			text: "log-%NUM:4",
			want: []Token{literal("log-")},
		},
		{
			name: "lone delimiter",
			text: "%",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lex(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lex(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	text := "Test %TEST:MY%%% macro"
	var got string
	for _, tok := range Lex(text) {
		got += tok.String()
	}
	if got != text {
		t.Errorf("joined tokens = %q, want %q", got, text)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "literal", text: "plain.txt"},
		{name: "closed macro", text: "a-%NUM:2%.txt"},
		{name: "escape", text: "100%%"},
		{name: "unterminated", text: "a-%NUM", wantErr: true},
		{name: "unterminated after escape", text: "%%%", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrUnterminated) {
					t.Errorf("Validate(%q) = %v, want ErrUnterminated", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%q) failed: %v", tt.text, err)
			}
		})
	}
}
