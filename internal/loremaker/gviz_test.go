package loremaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gvizBody = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","reqId":"0","status":"ok","table":{"cols":[{"id":"A","label":"Character","type":"string"},{"id":"B","label":"Powers","type":"string"},{"id":"C","label":"","type":"number"}],"rows":[{"c":[{"v":"Mystic Man"},{"v":"Spellcraft:9"},{"v":3.0,"f":"3"}]},{"c":[{"v":"Ama Serwaa"},null,{"v":2.5}]},{"c":[null,{"v":null},{"v":true}]}]}});`

func TestParseGviz(t *testing.T) {
	rows, err := ParseGviz([]byte(gvizBody))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Character", "Powers", ""},
		{"Mystic Man", "Spellcraft:9", "3"},
		{"Ama Serwaa", "", "2.5"},
		{"", "", "true"},
	}, rows)
}

func TestParseGvizWithoutLabels(t *testing.T) {
	body := `cb({"status":"ok","table":{"cols":[{"id":"A","label":""},{"id":"hero_id","label":""}],"rows":[{"c":[{"v":"Mystic Man"},{"v":"7"}]}]}})`
	rows, err := ParseGviz([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", "hero_id"}, {"Mystic Man", "7"}}, rows)

	body = `cb({"status":"ok","table":{"cols":[{"id":"A","label":""},{"id":"B"}],"rows":[{"c":[{"v":"Mystic Man"},{"v":"7"}]}]}});`
	rows, err = ParseGviz([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Mystic Man", "7"}}, rows)
}

func TestParseGvizErrors(t *testing.T) {
	_, err := ParseGviz([]byte("<html><body>sign in</body></html>"))
	assert.ErrorIs(t, err, ErrEnvelope)

	_, err = ParseGviz([]byte(`cb({"status":"error","errors":[{"reason":"invalid_query","message":"INVALID_QUERY","detailed_message":"Invalid sheet Lore"}]});`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid sheet Lore")

	_, err = ParseGviz([]byte(`cb({not json});`))
	assert.Error(t, err)

	_, err = ParseGviz([]byte(`cb({"status":"ok"});`))
	assert.Error(t, err)
}

func TestEncodeGvizRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Character", "Faction"},
		{"Mystic Man", "Night Council"},
		{"Ama Serwaa"},
	}
	body, err := EncodeGviz("0", rows)
	require.NoError(t, err)

	got, err := ParseGviz(body)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Character", "Faction"},
		{"Mystic Man", "Night Council"},
		{"Ama Serwaa", ""},
	}, got)
}

func TestEncodeGvizError(t *testing.T) {
	_, err := ParseGviz(EncodeGvizError("0", "invalid_query", "Invalid sheet name: Nope"))
	assert.EqualError(t, err, "gviz error: Invalid sheet name: Nope")
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "Z", columnLetter(25))
	assert.Equal(t, "AA", columnLetter(26))
	assert.Equal(t, "AZ", columnLetter(51))
}
