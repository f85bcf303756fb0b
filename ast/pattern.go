package ast

import (
	"github.com/flux-lang/flux/token"
)

// Pattern is the interface for all pattern nodes used in `match` arms and
// pattern-binding `let` statements.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything and binds nothing: `_`.
type WildcardPattern struct {
	Token token.Token
}

func (p *WildcardPattern) patternNode()        {}
func (p *WildcardPattern) TokenLiteral() string { return p.Token.Literal }
func (p *WildcardPattern) String() string       { return "_" }
func (p *WildcardPattern) Span() token.Span      { return p.Token.Span }

// LiteralPattern matches a literal value (integer, float, boolean or string).
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (p *LiteralPattern) patternNode()        {}
func (p *LiteralPattern) TokenLiteral() string { return p.Token.Literal }
func (p *LiteralPattern) String() string       { return p.Value.String() }
func (p *LiteralPattern) Span() token.Span      { return p.Value.Span() }

// IdentifierPattern binds the matched value to a name.
type IdentifierPattern struct {
	Token token.Token
	Name  string
}

func (p *IdentifierPattern) patternNode()        {}
func (p *IdentifierPattern) TokenLiteral() string { return p.Token.Literal }
func (p *IdentifierPattern) String() string       { return p.Name }
func (p *IdentifierPattern) Span() token.Span      { return p.Token.Span }

// SomePattern matches `Some(p)`.
type SomePattern struct {
	Token token.Token
	Inner Pattern
	span  token.Span
}

func NewSomePattern(tok token.Token, inner Pattern, span token.Span) *SomePattern {
	return &SomePattern{Token: tok, Inner: inner, span: span}
}

func (p *SomePattern) patternNode()        {}
func (p *SomePattern) TokenLiteral() string { return p.Token.Literal }
func (p *SomePattern) String() string       { return "Some(" + p.Inner.String() + ")" }
func (p *SomePattern) Span() token.Span      { return p.span }

// NonePattern matches the none value.
type NonePattern struct {
	Token token.Token
}

func (p *NonePattern) patternNode()        {}
func (p *NonePattern) TokenLiteral() string { return p.Token.Literal }
func (p *NonePattern) String() string       { return "None" }
func (p *NonePattern) Span() token.Span      { return p.Token.Span }

// LeftPattern matches `Left(p)`.
type LeftPattern struct {
	Token token.Token
	Inner Pattern
	span  token.Span
}

func NewLeftPattern(tok token.Token, inner Pattern, span token.Span) *LeftPattern {
	return &LeftPattern{Token: tok, Inner: inner, span: span}
}

func (p *LeftPattern) patternNode()        {}
func (p *LeftPattern) TokenLiteral() string { return p.Token.Literal }
func (p *LeftPattern) String() string       { return "Left(" + p.Inner.String() + ")" }
func (p *LeftPattern) Span() token.Span      { return p.span }

// RightPattern matches `Right(p)`.
type RightPattern struct {
	Token token.Token
	Inner Pattern
	span  token.Span
}

func NewRightPattern(tok token.Token, inner Pattern, span token.Span) *RightPattern {
	return &RightPattern{Token: tok, Inner: inner, span: span}
}

func (p *RightPattern) patternNode()        {}
func (p *RightPattern) TokenLiteral() string { return p.Token.Literal }
func (p *RightPattern) String() string       { return "Right(" + p.Inner.String() + ")" }
func (p *RightPattern) Span() token.Span      { return p.span }

// ConsPattern matches a non-empty list, binding its head and tail: `[h | t]`.
type ConsPattern struct {
	Token token.Token
	Head  Pattern
	Tail  Pattern
	span  token.Span
}

func NewConsPattern(tok token.Token, head, tail Pattern, span token.Span) *ConsPattern {
	return &ConsPattern{Token: tok, Head: head, Tail: tail, span: span}
}

func (p *ConsPattern) patternNode()        {}
func (p *ConsPattern) TokenLiteral() string { return p.Token.Literal }
func (p *ConsPattern) String() string       { return "[" + p.Head.String() + " | " + p.Tail.String() + "]" }
func (p *ConsPattern) Span() token.Span      { return p.span }

// EmptyListPattern matches the empty list: `[]`.
type EmptyListPattern struct {
	Token token.Token
}

func (p *EmptyListPattern) patternNode()        {}
func (p *EmptyListPattern) TokenLiteral() string { return p.Token.Literal }
func (p *EmptyListPattern) String() string       { return "[]" }
func (p *EmptyListPattern) Span() token.Span      { return p.Token.Span }
