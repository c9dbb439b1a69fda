package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromage/internal/fromage"
)

func TestParseAToolsLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want fromage.Entry
	}{
		{"empty", "", fromage.Empty()},
		{"string", `s[1] = "Hello"`, fromage.Str(1, "Hello")},
		{"message", `m[2] = "World"`, fromage.Msg(2, "World")},
		{"empty value", `s[3] = ""`, fromage.Str(3, "")},
		{"tag followed by junk", `str  [4]="x"`, fromage.Str(4, "x")},
		{"junk between bracket and quote", `m[5]:= "y"`, fromage.Msg(5, "y")},
		{"trailing text ignored", `s[6] = "z" ; trailing`, fromage.Str(6, "z")},
		{"separator kept in value", `s[7] = "a, b; c"`, fromage.Str(7, "a, b; c")},
		{"max id", `s[18446744073709551615] = "max"`, fromage.Str(18446744073709551615, "max")},
		{"unicode value", `s[8] = "Привет"`, fromage.Str(8, "Привет")},
		{"comment", "; a note", fromage.Comment("a note")},
		{"comment keeps spaces", ";   indented", fromage.Comment("  indented")},
		{"bare semicolon", ";", fromage.Comment("")},
		{"comment without space", ";note", fromage.Comment("note")},
		{"double semicolon", ";;s[1] = \"x\"", fromage.Comment(";s[1] = \"x\"")},
		{"ignored string", `;s[9] = "off"`, fromage.Ignore(fromage.Str(9, "off"))},
		{"ignored message", `;m[10] = "off"`, fromage.Ignore(fromage.Msg(10, "off"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAToolsLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAToolsLine_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"no bracket", `s1 = "x"`, errMissingOpenBracket},
		{"no closing bracket", `s[12 = "x"`, errMissingCloseBracket},
		{"non numeric id", `s[abc] = "x"`, errBadID},
		{"empty id", `s[] = "x"`, errBadID},
		{"negative id", `s[-1] = "x"`, errBadID},
		{"id overflow", `s[18446744073709551616] = "x"`, errBadID},
		{"no opening quote", `s[1] = x`, errMissingOpenQuote},
		{"no closing quote", `s[1] = "x`, errMissingCloseQuote},
		{"unknown tag", `x[1] = "x"`, errUnknownTag},
		{"bad ignored line", `;s[1 = "x"`, errMissingCloseBracket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAToolsLine(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAToolsParser_IgnoredMatchesPlain(t *testing.T) {
	plain, err := parseAToolsLine(`s[42] = "Answer"`)
	require.NoError(t, err)
	ignored, err := parseAToolsLine(`;s[42] = "Answer"`)
	require.NoError(t, err)

	assert.True(t, ignored.Ignored)
	assert.False(t, plain.Ignored)
	assert.Equal(t, plain.Kind, ignored.Kind)
	assert.Equal(t, plain.ID, ignored.ID)
	assert.Equal(t, plain.Text, ignored.Text)
}

func TestAToolsParser_ManySemicolons(t *testing.T) {
	line := strings.Repeat(";", 100000) + `s[1] = "x"`
	got, err := parseAToolsLine(line)
	require.NoError(t, err)
	assert.Equal(t, fromage.Comment(line[1:]), got)
}

func TestAToolsParser_RecoversAfterBadLine(t *testing.T) {
	input := strings.Join([]string{
		`s[1] = "Hello"`,
		`s[12 = "x"`,
		`m[2] = "World"`,
	}, "\n")

	entries, bad := drain(t, NewAToolsParser(strings.NewReader(input)))

	assert.Equal(t, []fromage.Entry{fromage.Str(1, "Hello"), fromage.Msg(2, "World")}, entries)
	require.Len(t, bad, 1)
	assert.Equal(t, 2, bad[0].Line)
	assert.Equal(t, `s[12 = "x"`, bad[0].Text)
}

func TestAToolsParser_DuplicateIDsKeepOrder(t *testing.T) {
	input := "s[1] = \"a\"\ns[1] = \"b\"\nm[1] = \"c\"\n"
	entries, bad := drain(t, NewAToolsParser(strings.NewReader(input)))
	assert.Empty(t, bad)
	assert.Equal(t, []fromage.Entry{fromage.Str(1, "a"), fromage.Str(1, "b"), fromage.Msg(1, "c")}, entries)
}
