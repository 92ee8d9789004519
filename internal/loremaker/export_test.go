package loremaker

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHeaderResolves(t *testing.T) {
	m := ResolveColumns(ExportHeader())
	for _, field := range []string{FieldID, FieldSlug, FieldName, FieldPowers, FieldCover, GalleryField(1), GalleryField(GalleryFields)} {
		_, ok := m.Index(field)
		assert.True(t, ok, field)
	}
}

func TestExportReimport(t *testing.T) {
	chars := SampleCharacters(testDay)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(ExportHeader()))
	for _, c := range chars {
		require.NoError(t, w.Write(ExportRow(c)))
	}
	w.Flush()
	require.NoError(t, w.Error())

	again := BuildCharacters(ParseCSV(buf.String()), testDay)
	assert.Equal(t, chars, again)
}
