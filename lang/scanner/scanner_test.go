package scanner

import (
	"testing"

	"github.com/mna/loxvm/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) []token.Token {
	var s Scanner
	s.Init(src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanPunctuation(t *testing.T) {
	toks := scanAll("(){};,.+-*!= == <= >= < > !")
	require.Equal(t, []token.Kind{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.SEMICOLON, token.COMMA, token.DOT, token.PLUS, token.MINUS, token.STAR,
		token.BANG_EQUAL, token.EQUAL_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
		token.LESS, token.GREATER, token.BANG, token.EOF,
	}, kinds(toks))
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks := scanAll("var x = foo and classy")
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENTIFIER, token.EQUAL, token.IDENTIFIER, token.AND,
		token.IDENTIFIER, token.EOF,
	}, kinds(toks))
	require.Equal(t, "classy", toks[5].Lexeme)
}

func TestScanNumber(t *testing.T) {
	toks := scanAll("123 4.5")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "4.5", toks[1].Lexeme)
}

func TestScanString(t *testing.T) {
	toks := scanAll(`"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", Unquote(toks[0].Lexeme))
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(`"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "unterminated string")
}

func TestScanLineComment(t *testing.T) {
	toks := scanAll("1 // a comment\n2")
	require.Equal(t, []token.Kind{token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
}

func TestScanEmbeddedNewlineInString(t *testing.T) {
	toks := scanAll("\"a\nb\" 2")
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, 2, toks[1].Line)
}
