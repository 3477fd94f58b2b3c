package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeEliminatesWhitespace(t *testing.T) {
	toks, err := Tokenize("   sel ect   *  from t    ;")
	require.NoError(t, err)
	require.Len(t, toks, 6)
	assert.Equal(t, identToken("sel"), toks[0])
	assert.Equal(t, identToken("ect"), toks[1])
	assert.Equal(t, Token{Kind: TokenAsterisk}, toks[2])
	assert.Equal(t, keywordToken(From), toks[3])
	assert.Equal(t, identToken("t"), toks[4])
	assert.Equal(t, Token{Kind: TokenSemicolon}, toks[5])
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	toks, err := Tokenize("select * from T where a = 1")
	require.NoError(t, err)
	require.Len(t, toks, 8)
	assert.Equal(t, keywordToken(Select), toks[0])
	assert.Equal(t, identToken("t"), toks[3])
	assert.Equal(t, keywordToken(Where), toks[4])
}

func TestTokenizeIdentLowercased(t *testing.T) {
	toks, err := Tokenize("MyTable")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, identToken("mytable"), toks[0])
}

func TestTokenizeNumbers(t *testing.T) {
	toks, err := Tokenize("1 23 4.5 0.1")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, numberToken("1"), toks[0])
	assert.Equal(t, numberToken("23"), toks[1])
	assert.Equal(t, numberToken("4.5"), toks[2])
	assert.Equal(t, numberToken("0.1"), toks[3])
}

func TestTokenizeString(t *testing.T) {
	toks, err := Tokenize("'hello world'")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, stringToken("hello world"), toks[0])
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize("'hello")
	require.Error(t, err)
}

func TestTokenizePunctuation(t *testing.T) {
	toks, err := Tokenize("(),;*+-/=><")
	require.NoError(t, err)
	kinds := []TokenKind{
		TokenOpenParen, TokenCloseParen, TokenComma, TokenSemicolon,
		TokenAsterisk, TokenPlus, TokenMinus, TokenSlash, TokenEqual,
		TokenGreaterThan, TokenLessThan,
	}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		assert.Equal(t, k, toks[i].Kind)
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("select $")
	require.Error(t, err)
}

func TestTokenizeCreateTableStatement(t *testing.T) {
	toks, err := Tokenize("CREATE TABLE t (a INT PRIMARY KEY, b TEXT DEFAULT 'vv');")
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	assert.Equal(t, keywordToken(Create), toks[0])
	assert.Equal(t, keywordToken(Table), toks[1])
	assert.Equal(t, identToken("t"), toks[2])
}
