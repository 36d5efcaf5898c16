package lexer

import (
	"testing"

	"github.com/cqsql/cq/token"
	"github.com/stretchr/testify/require"
)

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{
			input:    "SELECT * FROM users",
			expected: []token.Token{token.SELECT, token.STAR, token.FROM, token.IDENT, token.EOF},
		},
		{
			input: "SELECT id, name FROM users WHERE id = 1",
			expected: []token.Token{
				token.SELECT, token.IDENT, token.COMMA, token.IDENT, token.FROM,
				token.IDENT, token.WHERE, token.IDENT, token.EQ, token.INT, token.EOF,
			},
		},
		{
			input:    "age >= 20 AND age <= 35",
			expected: []token.Token{token.IDENT, token.GE, token.INT, token.AND, token.IDENT, token.LE, token.INT, token.EOF},
		},
		{
			input:    "a <> b != c",
			expected: []token.Token{token.IDENT, token.NEQ, token.IDENT, token.NEQ, token.IDENT, token.EOF},
		},
		{
			input:    "x & y | z ^ 1",
			expected: []token.Token{token.IDENT, token.AMP, token.IDENT, token.PIPE, token.IDENT, token.CARET, token.INT, token.EOF},
		},
		{
			input:    "3.14",
			expected: []token.Token{token.FLOAT, token.EOF},
		},
		{
			input: "'it''s fine'",
			// no escape interpretation: the doubled quote closes the
			// first literal and opens a second one.
			expected: []token.Token{token.STRING, token.STRING, token.EOF},
		},
	}

	for _, tt := range tests {
		l := New(tt.input)
		for i, want := range tt.expected {
			item := l.Next()
			require.Equalf(t, want, item.Type, "token %d of %q", i, tt.input)
		}
	}
}

func TestLexerComments(t *testing.T) {
	l := New("SELECT 1 -- trailing comment\nFROM t /* block\ncomment */ WHERE x = 1")
	var types []token.Token
	for {
		it := l.Next()
		types = append(types, it.Type)
		if it.Type == token.EOF {
			break
		}
	}
	require.Equal(t, []token.Token{
		token.SELECT, token.INT, token.FROM, token.IDENT, token.WHERE, token.IDENT, token.EQ, token.INT, token.EOF,
	}, types)
}

func TestLexerSilentlySkipsUnknownChars(t *testing.T) {
	l := New("a @ b")
	require.Equal(t, token.IDENT, l.Next().Type)
	require.Equal(t, token.IDENT, l.Next().Type)
	require.Equal(t, token.EOF, l.Next().Type)
}

func TestLexerPeek(t *testing.T) {
	l := New("SELECT FROM")
	require.Equal(t, token.SELECT, l.Peek().Type)
	require.Equal(t, token.SELECT, l.Next().Type)
	require.Equal(t, token.FROM, l.Next().Type)
}
