package dsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind is a bit set of argument kinds.
type Kind uint8

const (
	KindString Kind = 1 << iota
	KindNumber
	KindColor
	KindIdent
)

func (k Kind) String() string {
	var parts []string
	for _, c := range []struct {
		k    Kind
		name string
	}{{KindString, "string"}, {KindNumber, "number"}, {KindColor, "color"}, {KindIdent, "identifier"}} {
		if k&c.k != 0 {
			parts = append(parts, c.name)
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, "|")
}

// Script is a checked edit script.
type Script struct {
	Statements []*Statement `json:"statements"`
}

// Statement 是一条已校验的指令：位置参数在前，随后是 key value 形式的选项。
type Statement struct {
	Pos     lexer.Position  `json:"-"`
	Name    string          `json:"name"`
	Args    []*Arg          `json:"args,omitempty"`
	Options map[string]*Arg `json:"options,omitempty"`
}

// Arg returns positional argument i, or nil.
func (s *Statement) Arg(i int) *Arg {
	if i < 0 || i >= len(s.Args) {
		return nil
	}
	return s.Args[i]
}

// Count returns the first numeric positional argument, or def when absent.
func (s *Statement) Count(def int) int {
	for _, a := range s.Args {
		if a.Number != nil {
			return int(*a.Number)
		}
	}
	return def
}

// Option returns a named option, or nil.
func (s *Statement) Option(name string) *Arg { return s.Options[name] }

// Errorf builds an error carrying the statement position.
func (s *Statement) Errorf(format string, args ...any) error {
	return &Error{Pos: s.Pos, Msg: fmt.Sprintf(format, args...)}
}

// Error is a positioned script error.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

type commandSpec struct {
	args     []Kind // 位置参数，每个位置可接受的类型
	required int
	options  map[string]Kind
}

var commands = map[string]commandSpec{
	"font": {
		args: []Kind{KindString},
		options: map[string]Kind{
			"size":   KindNumber,
			"engine": KindIdent,
			"style":  KindIdent | KindString,
			"name":   KindIdent | KindString,
			"color":  KindColor,
		},
	},
	"color":     {args: []Kind{KindColor}, required: 1},
	"wrap":      {args: []Kind{KindNumber | KindIdent, KindIdent}, required: 1},
	"type":      {args: []Kind{KindString}, required: 1},
	"return":    {args: []Kind{KindNumber}},
	"tab":       {args: []Kind{KindNumber}},
	"backspace": {args: []Kind{KindNumber}},
	"set":       {args: []Kind{KindString}, required: 1},
	"clear":     {},
	"relayout":  {},
	"snapshot":  {args: []Kind{KindString}, required: 1},
}

// Commands lists the statement names understood by the checker.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func build(ast *scriptAST) (*Script, error) {
	out := &Script{}
	for _, st := range ast.Statements {
		s, err := check(st)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, s)
	}
	return out, nil
}

func check(st *statementAST) (*Statement, error) {
	s := &Statement{Pos: st.Pos, Name: strings.ToLower(st.Name)}
	spec, ok := commands[s.Name]
	if !ok {
		return nil, s.Errorf("未知指令 %q（可用：%s）", st.Name, strings.Join(Commands(), ", "))
	}

	rest := st.Args
	for i := 0; i < len(spec.args) && len(rest) > 0; i++ {
		a := rest[0]
		if _, isOpt := spec.options[a.Text()]; isOpt && a.Kind() == KindIdent {
			break
		}
		if a.Kind()&spec.args[i] == 0 {
			if i < spec.required {
				return nil, &Error{Pos: a.Pos, Msg: fmt.Sprintf("%s 的第 %d 个参数应为 %s", s.Name, i+1, spec.args[i])}
			}
			break
		}
		s.Args = append(s.Args, a)
		rest = rest[1:]
	}
	if len(s.Args) < spec.required {
		return nil, s.Errorf("%s 至少需要 %d 个参数", s.Name, spec.required)
	}

	for len(rest) > 0 {
		key := rest[0]
		kind, ok := spec.options[key.Text()]
		if !ok || key.Kind() != KindIdent {
			return nil, &Error{Pos: key.Pos, Msg: fmt.Sprintf("%s 不接受参数 %q", s.Name, key.Text())}
		}
		if len(rest) < 2 {
			return nil, &Error{Pos: key.Pos, Msg: fmt.Sprintf("选项 %s 缺少取值", key.Text())}
		}
		val := rest[1]
		if val.Kind()&kind == 0 {
			return nil, &Error{Pos: val.Pos, Msg: fmt.Sprintf("选项 %s 的取值应为 %s", key.Text(), kind)}
		}
		if s.Options == nil {
			s.Options = map[string]*Arg{}
		}
		s.Options[key.Text()] = val
		rest = rest[2:]
	}
	return s, nil
}
