package lexer

import (
	"strings"
	"unicode"

	"github.com/quarrydb/quarry/internal/dberr"
)

// Lexer is a single-pass, peekable rune scanner over SQL text (spec §4.6),
// grounded on original_source/src/sql/parser/lexer.rs's Peekable<Chars>
// design, adapted to Go's rune-slice idiom instead of an iterator adaptor.
type Lexer struct {
	runes []rune
	pos   int
}

// New returns a Lexer over sql.
func New(sql string) *Lexer {
	return &Lexer{runes: []rune(sql)}
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.runes) {
		return 0, false
	}
	return l.runes[l.pos], true
}

func (l *Lexer) nextIf(pred func(rune) bool) (rune, bool) {
	c, ok := l.peek()
	if !ok || !pred(c) {
		return 0, false
	}
	l.pos++
	return c, true
}

func (l *Lexer) nextWhile(pred func(rune) bool) string {
	var sb strings.Builder
	for {
		c, ok := l.nextIf(pred)
		if !ok {
			break
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func (l *Lexer) eraseWhitespace() {
	l.nextWhile(unicode.IsSpace)
}

// Tokenize scans the full input into tokens, failing on the first
// unrecognized character or malformed literal.
func Tokenize(sql string) ([]Token, error) {
	l := New(sql)
	var tokens []Token
	for {
		tok, ok, err := l.scan()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if c, ok := l.peek(); ok {
		return nil, dberr.Parsef("unexpected character %q", c)
	}
	return tokens, nil
}

func (l *Lexer) scan() (Token, bool, error) {
	l.eraseWhitespace()
	c, ok := l.peek()
	if !ok {
		return Token{}, false, nil
	}
	switch {
	case c == '\'':
		tok, err := l.scanString()
		return tok, true, err
	case unicode.IsDigit(c):
		return l.scanNumber(), true, nil
	case unicode.IsLetter(c):
		return l.scanIdent(), true, nil
	default:
		tok, ok := l.scanSymbol()
		if !ok {
			return Token{}, false, nil
		}
		return tok, true, nil
	}
}

func (l *Lexer) scanString() (Token, error) {
	if _, ok := l.nextIf(func(c rune) bool { return c == '\'' }); !ok {
		return Token{}, dberr.Parsef("expected opening quote")
	}
	var sb strings.Builder
	for {
		c, ok := l.peek()
		if !ok {
			return Token{}, dberr.Parsef("unexpected end of string")
		}
		l.pos++
		if c == '\'' {
			break
		}
		sb.WriteRune(c)
	}
	return stringToken(sb.String()), nil
}

func (l *Lexer) scanNumber() Token {
	num := l.nextWhile(unicode.IsDigit)
	if dot, ok := l.nextIf(func(c rune) bool { return c == '.' }); ok {
		num += string(dot)
		num += l.nextWhile(unicode.IsDigit)
	}
	return numberToken(num)
}

func (l *Lexer) scanIdent() Token {
	first, _ := l.nextIf(unicode.IsLetter)
	value := string(first)
	value += l.nextWhile(func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
	})
	upper := strings.ToUpper(value)
	if kw, ok := KeywordFromIdent(upper); ok {
		return keywordToken(kw)
	}
	return identToken(strings.ToLower(value))
}

func (l *Lexer) scanSymbol() (Token, bool) {
	c, ok := l.peek()
	if !ok {
		return Token{}, false
	}
	var kind TokenKind
	switch c {
	case '*':
		kind = TokenAsterisk
	case '(':
		kind = TokenOpenParen
	case ')':
		kind = TokenCloseParen
	case ',':
		kind = TokenComma
	case ';':
		kind = TokenSemicolon
	case '+':
		kind = TokenPlus
	case '-':
		kind = TokenMinus
	case '/':
		kind = TokenSlash
	case '=':
		kind = TokenEqual
	case '>':
		kind = TokenGreaterThan
	case '<':
		kind = TokenLessThan
	default:
		return Token{}, false
	}
	l.pos++
	return Token{Kind: kind}, true
}
