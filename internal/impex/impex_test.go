package impex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroyagi/yakumemo/internal/models"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`[
	  {"japanese": "晴れ", "chinese": "晴天"},
	  {"japanese": "雨", "chinese": "雨"},
	  {"japanese": "欠けている"},
	  {"chinese": "孤立"}
	]`)

	got := Parse(data)
	require.Len(t, got, 2)
	assert.Equal(t, Candidate{Japanese: "晴れ", Chinese: "晴天"}, got[0])
	assert.Equal(t, Candidate{Japanese: "雨", Chinese: "雨"}, got[1])
}

func TestParseDelimitedTripleBar(t *testing.T) {
	data := []byte("晴れ|||晴天\nおはよう|||早上好\n")
	got := Parse(data)
	require.Len(t, got, 2)
	assert.Equal(t, "晴れ", got[0].Japanese)
	assert.Equal(t, "早上好", got[1].Chinese)
}

func TestParseDelimitedTab(t *testing.T) {
	data := []byte("晴れ\t晴天\nno-separator-line\n\n雨\t雨\r\n")
	got := Parse(data)
	require.Len(t, got, 2)
	assert.Equal(t, "晴天", got[0].Chinese)
	assert.Equal(t, "雨", got[1].Japanese)
}

func TestParseTripleBarWinsOverTab(t *testing.T) {
	got := Parse([]byte("a\tb|||c\td"))
	require.Len(t, got, 1)
	assert.Equal(t, "a\tb", got[0].Japanese)
	assert.Equal(t, "c\td", got[0].Chinese)
}

func TestExportRoundTrip(t *testing.T) {
	corpus := []models.TranslationPair{
		{ID: 1, SourceText: "晴れ", TargetText: "晴天"},
		{ID: 2, SourceText: "こんにちは", TargetText: "你好"},
	}

	data, err := Export(corpus)
	require.NoError(t, err)

	got := Parse(data)
	require.Len(t, got, len(corpus))
	for i, c := range got {
		assert.Equal(t, corpus[i].SourceText, c.Japanese)
		assert.Equal(t, corpus[i].TargetText, c.Chinese)
	}
}

func TestExportEmptyCorpus(t *testing.T) {
	data, err := Export(nil)
	require.NoError(t, err)
	assert.Empty(t, Parse(data))
}
