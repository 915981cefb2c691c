package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKeywordsAndIdent(t *testing.T) {
	l := New("t.cor", "fn is object foo\n")
	toks := l.Tokenize()
	require.Equal(t, []Kind{FN, IS, OBJECT, IDENT, NEWLINE, EOF}, kinds(toks))
	require.Equal(t, "foo", toks[3].Lexeme)
}

func TestTokenizeIndentDedent(t *testing.T) {
	l := New("t.cor", "fn answer\n  return 42\nfn other\n  return 1\n")
	toks := l.Tokenize()
	got := kinds(toks)

	require.Contains(t, got, INDENT)
	require.Contains(t, got, DEDENT)

	// The first DEDENT must arrive before the second `fn`.
	var dedentIdx, secondFnIdx int
	for i, k := range got {
		if k == DEDENT && dedentIdx == 0 {
			dedentIdx = i
		}
	}
	for i := dedentIdx + 1; i < len(toks); i++ {
		if toks[i].Kind == FN {
			secondFnIdx = i
			break
		}
	}
	require.Less(t, dedentIdx, secondFnIdx)
}

func TestTokenizeBlankLinesDoNotEmitNewline(t *testing.T) {
	l := New("t.cor", "object Point\n  x\n\n  y\n")
	toks := l.Tokenize()
	// Exactly one NEWLINE between "x" and "y": the blank line contributes none.
	var newlineCount int
	seenX := false
	for _, tok := range toks {
		if tok.Kind == IDENT && tok.Lexeme == "x" {
			seenX = true
			continue
		}
		if seenX && tok.Kind == IDENT && tok.Lexeme == "y" {
			break
		}
		if seenX && tok.Kind == NEWLINE {
			newlineCount++
		}
	}
	require.Equal(t, 1, newlineCount)
}

func TestTokenizeIntegerBases(t *testing.T) {
	l := New("t.cor", "0x1F b101 42 3.14\n")
	toks := l.Tokenize()
	require.Equal(t, INTEGER, toks[0].Kind)
	require.Equal(t, "0x1F", toks[0].Lexeme)
	require.Equal(t, INTEGER, toks[1].Kind)
	require.Equal(t, "b101", toks[1].Lexeme)
	require.Equal(t, INTEGER, toks[2].Kind)
	require.Equal(t, FLOAT, toks[3].Kind)
	require.Equal(t, "3.14", toks[3].Lexeme)
}

func TestTokenizeInterpolatedString(t *testing.T) {
	l := New("t.cor", "'hello {name}'\n")
	toks := l.Tokenize()
	require.Equal(t, INTERPOLATED_STR, toks[0].Kind)
}

func TestTokenizePlainString(t *testing.T) {
	l := New("t.cor", "'hello'\n")
	toks := l.Tokenize()
	require.Equal(t, STRING, toks[0].Kind)
}

func TestTokenizeIllegalByteRecordedAsError(t *testing.T) {
	l := New("t.cor", "`\n")
	toks := l.Tokenize()
	require.Equal(t, ILLEGAL, toks[0].Kind)
	require.Len(t, l.Errors(), 1)
}

func TestTokenizeCompoundAssignOperators(t *testing.T) {
	l := New("t.cor", "+= -= *= /=\n")
	toks := l.Tokenize()
	require.Equal(t, []Kind{PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, NEWLINE, EOF}, kinds(toks))
}

func TestTokenizeEOFAlwaysTerminates(t *testing.T) {
	l := New("t.cor", "")
	toks := l.Tokenize()
	require.Equal(t, EOF, toks[len(toks)-1].Kind)
}
