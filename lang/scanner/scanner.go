// Package scanner tokenizes Lox source text for the compiler to consume. It
// is a collaborator of the compiler, not one of the four core subsystems: it
// exposes a minimal contract (Init, then repeated calls to Scan) and leaves
// all parsing and code generation to lang/compiler.
package scanner

import (
	"strings"

	"github.com/mna/loxvm/lang/token"
)

// Scanner turns a source buffer into a stream of tokens, one at a time. The
// zero value is not usable; call Init first.
type Scanner struct {
	src  string
	line int

	start   int // start offset of the lexeme being scanned
	current int // offset of the next unread byte
}

// Init resets the scanner to tokenize src from the beginning.
func (s *Scanner) Init(src string) {
	s.src = src
	s.line = 1
	s.start = 0
	s.current = 0
}

// Scan returns the next token in the source. Whitespace and line comments
// are skipped. An invalid character or an unterminated string produces a
// token.ILLEGAL token whose Lexeme holds the diagnostic message. The end of
// the source always yields a single token.EOF, after which further calls
// keep returning token.EOF.
func (s *Scanner) Scan() token.Token {
	s.skipIgnored()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LEFT_PAREN)
	case ')':
		return s.make(token.RIGHT_PAREN)
	case '{':
		return s.make(token.LEFT_BRACE)
	case '}':
		return s.make(token.RIGHT_BRACE)
	case ';':
		return s.make(token.SEMICOLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		return s.make(s.ifMatch('=', token.BANG_EQUAL, token.BANG))
	case '=':
		return s.make(s.ifMatch('=', token.EQUAL_EQUAL, token.EQUAL))
	case '<':
		return s.make(s.ifMatch('=', token.LESS_EQUAL, token.LESS))
	case '>':
		return s.make(s.ifMatch('=', token.GREATER_EQUAL, token.GREATER))
	case '"':
		return s.string()
	}

	return s.errorTok("unexpected character: " + string(c))
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) ifMatch(want byte, yes, no token.Kind) token.Kind {
	if s.atEnd() || s.src[s.current] != want {
		return no
	}
	s.current++
	return yes
}

func (s *Scanner) skipIgnored() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		case '/':
			if s.peekNext() == '/' {
				for !s.atEnd() && s.peek() != '\n' {
					s.current++
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}
	if s.atEnd() {
		return s.errorTok("unterminated string")
	}
	s.current++ // the closing quote
	return s.make(token.STRING)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.current++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++ // the '.'
		for isDigit(s.peek()) {
			s.current++
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	lexeme := s.src[s.start:s.current]
	return s.makeKind(token.LookupIdent(lexeme), lexeme)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return s.makeKind(kind, s.src[s.start:s.current])
}

func (s *Scanner) makeKind(kind token.Kind, lexeme string) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Line: s.line}
}

func (s *Scanner) errorTok(msg string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: msg, Line: s.line}
}

// unquote strips the surrounding double quotes from a STRING token's lexeme.
func unquote(lexeme string) string {
	return strings.TrimSuffix(strings.TrimPrefix(lexeme, `"`), `"`)
}

// Unquote exposes unquote to callers outside the package (the compiler,
// building a string constant from a STRING token).
func Unquote(lexeme string) string { return unquote(lexeme) }
