package loremaker

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVQuotedCells(t *testing.T) {
	got := ParseCSV("a,\"b,c\"\n\"d\ne\",f")
	assert.Equal(t, [][]string{{"a", "b,c"}, {"d\ne", "f"}}, got)
}

func TestParseCSVMatchesEncodingCSV(t *testing.T) {
	inputs := []string{
		"a,\"b,c\"\n\"d\ne\",f",
		"Character,Powers\n\"Ama \"\"Sunshield\"\" Serwaa\",\"Flight, Light: 8\"\n",
		"x,,z\n,,\"\"\n1,2,3",
		"name\n\"multi\nline\nbio\"\n",
	}
	for _, in := range inputs {
		want, err := csv.NewReader(strings.NewReader(in)).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, want, ParseCSV(in), "input %q", in)
	}
}

func TestParseCSVDropsCarriageReturns(t *testing.T) {
	got := ParseCSV("a,b\r\nc,\"d\r\ne\"\r\n")
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d\ne"}}, got)
}

func TestParseCSVEmptyInput(t *testing.T) {
	assert.Empty(t, ParseCSV(""))
}

func TestDropBlankRows(t *testing.T) {
	rows := [][]string{{"a"}, {"", "  "}, {}, {"b", ""}}
	assert.Equal(t, [][]string{{"a"}, {"b", ""}}, DropBlankRows(rows))
}
