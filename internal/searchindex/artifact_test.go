package searchindex

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/godocsearch/internal/fingerprint"
)

func TestIndexEntry_JSON(t *testing.T) {
	tests := []struct {
		name  string
		entry IndexEntry
		want  string
	}{
		{
			name:  "module without snippet",
			entry: IndexEntry{Fingerprint: fingerprint.Fingerprint{3}, TiebreakerBonus: 0.5, Path: "a.html", OwnerName: "A"},
			want:  `[[3],0.5,"a.html","A"]`,
		},
		{
			name:  "module with snippet",
			entry: IndexEntry{Fingerprint: fingerprint.Fingerprint{3}, TiebreakerBonus: 0.5, Path: "a.html", OwnerName: "A", DescriptionSnippet: "Hi"},
			want:  `[[3],0.5,"a.html","A",null,"Hi"]`,
		},
		{
			name:  "member without snippet",
			entry: IndexEntry{Fingerprint: fingerprint.Fingerprint{}, TiebreakerBonus: 0.25, Path: "a.html#m", OwnerName: "A", MemberLabel: "#m()"},
			want:  `[[],0.25,"a.html#m","A","#m()"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.entry)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var decoded IndexEntry
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.entry, decoded)
		})
	}
}

func TestIndexEntry_PreservesBonusPrecision(t *testing.T) {
	a := ComputeTiebreakerBonus("X", "x", "xx")
	b := ComputeTiebreakerBonus("Y", "x", "x")
	require.NotEqual(t, a, b)

	for _, bonus := range []float64{a, b} {
		data, err := json.Marshal(IndexEntry{Fingerprint: fingerprint.Fingerprint{1}, TiebreakerBonus: bonus, Path: "p", OwnerName: "o"})
		require.NoError(t, err)
		var decoded IndexEntry
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, bonus, decoded.TiebreakerBonus)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	artifact, err := NewBuilder().Build(fooBarEntries())
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatScript} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, artifact.Encode(&buf, format))
			if format == FormatScript {
				assert.True(t, strings.HasPrefix(buf.String(), "var search_data = {"))
			}

			decoded, err := Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, artifact, decoded)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `var search_data = nope;`},
		{"missing entries", `{"ngrams": {}, "weights": []}`},
		{"missing weights", `{"ngrams": {}, "entries": []}`},
		{"position beyond weights", `{"ngrams": {"abc": 1}, "weights": [1], "entries": []}`},
		{"unused position", `{"ngrams": {"abc": 1}, "weights": [1, 1], "entries": []}`},
		{"shared position", `{"ngrams": {"abc": 0, "abd": 0, "abe": 1}, "weights": [1, 1], "entries": []}`},
		{"zero weight", `{"ngrams": {"abc": 0}, "weights": [0], "entries": []}`},
		{"short entry", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[1], 0.1, "p"]]}`},
		{"long entry", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[1], 0.1, "p", "o", null, "s", "x"]]}`},
		{"null path", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[1], 0.1, null, "o"]]}`},
		{"trailing zero byte", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[1, 0], 0.1, "p", "o"]]}`},
		{"bit beyond weights", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[2], 0.1, "p", "o"]]}`},
		{"bonus too large", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[1], 1.5, "p", "o"]]}`},
		{"empty path", `{"ngrams": {"abc": 0}, "weights": [1], "entries": [[[1], 0.1, "", "o"]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedArtifact)
		})
	}
}

func TestWriteFileAndLoad(t *testing.T) {
	artifact, err := NewBuilder().Build(fooBarEntries())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "js", "search_index.js")

	n, err := artifact.WriteFile(path, FormatForPath(path))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, n, info.Size())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, artifact, loaded)

	_, err = Load(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("javascript")
	require.NoError(t, err)
	assert.Equal(t, FormatScript, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatForPath("out/index.JSON"))
	assert.Equal(t, FormatScript, FormatForPath("out/search_index.js"))
}
