package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/scroll/layout"
)

// 行首的 # 一律是注释；参数位置上的 #rgb、#rrggbb 与 #rrggbbaa 才是颜色。
var (
	blank = []lexer.Rule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
	}
	values = []lexer.Rule{
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
	}

	dslLexer = lexer.MustStateful(lexer.Rules{
		"Root": rules(blank, []lexer.Rule{
			{Name: "Newline", Pattern: `\n+`},
			{Name: "Symbol", Pattern: `;`},
			{Name: "Ident", Pattern: identPattern, Action: lexer.Push("Args")},
		}, values),
		"Args": rules(blank, []lexer.Rule{
			{Name: "Newline", Pattern: `\n+`, Action: lexer.Pop()},
			{Name: "Symbol", Pattern: `;`, Action: lexer.Pop()},
			{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		}, values, []lexer.Rule{
			{Name: "Ident", Pattern: identPattern},
		}),
	})

	scriptParser = participle.MustBuild[scriptAST](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

const identPattern = `[A-Za-z_][A-Za-z0-9_-]*`

func rules(groups ...[]lexer.Rule) []lexer.Rule {
	var out []lexer.Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// scriptAST 是语法树根节点；语句之间用换行或分号分隔。
type scriptAST struct {
	Statements []*statementAST `parser:"( Newline | ';' )* ( @@ ( Newline | ';' )* )*"`
}

type statementAST struct {
	Pos  lexer.Position `parser:""`
	Name string         `parser:"@Ident"`
	Args []*Arg         `parser:"@@*"`
}

// Arg is a single statement argument.
type Arg struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String" json:"string,omitempty"`
	Number *Pixels        `parser:"| @Number" json:"number,omitempty"`
	Color  *string        `parser:"| @Color" json:"color,omitempty"`
	Ident  *string        `parser:"| @Ident" json:"ident,omitempty"`
}

// Kind reports which alternative the argument holds.
func (a *Arg) Kind() Kind {
	switch {
	case a == nil:
		return 0
	case a.String != nil:
		return KindString
	case a.Number != nil:
		return KindNumber
	case a.Color != nil:
		return KindColor
	case a.Ident != nil:
		return KindIdent
	}
	return 0
}

// Text returns the argument as written (strings unquoted).
func (a *Arg) Text() string {
	switch a.Kind() {
	case KindString:
		return string(*a.String)
	case KindNumber:
		return strconv.Itoa(int(*a.Number))
	case KindColor:
		return *a.Color
	case KindIdent:
		return *a.Ident
	}
	return ""
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Pixels 是换算到整数像素的长度，可写作 36、36px、27pt、10mm 或 1in。
type Pixels int

// Capture implements participle.Capture.
func (p *Pixels) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("number capture requires value")
	}
	l, ok := layout.ParseLength(values[0])
	if !ok {
		return fmt.Errorf("无效的长度 %q", values[0])
	}
	*p = Pixels(l.Pixels())
	return nil
}

// Parse parses and checks an edit script from r. name is used in positions.
func Parse(name string, r io.Reader) (*Script, error) {
	ast, err := scriptParser.Parse(name, r)
	if err != nil {
		return nil, err
	}
	return build(ast)
}

// ParseString parses and checks an edit script held in a string.
func ParseString(input string) (*Script, error) {
	ast, err := scriptParser.ParseString("", input)
	if err != nil {
		return nil, err
	}
	return build(ast)
}
