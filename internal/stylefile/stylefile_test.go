package stylefile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/styles/pkg/types"
)

func sepia() Document {
	return Document{
		Name:        "sepia",
		Description: "warm & brown",
		Items: []types.StyleItem{
			{Num: 1, Module: 3, Operation: "colorout", OpParams: []byte{0x01, 0x02}, Enabled: true, BlendopParams: []byte{}, BlendopVersion: 7},
			{Num: 0, Module: 1, Operation: "exposure", OpParams: []byte{0xde, 0xad, 0xbe, 0xef}, BlendopParams: []byte{0x00, 0xff}, BlendopVersion: 7, MultiPriority: 1, MultiName: "1"},
		},
	}
}

func TestMarshal_Golden(t *testing.T) {
	data, err := Marshal(sepia())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sepia", data)
}

func TestRoundTrip(t *testing.T) {
	doc := sepia()
	data, err := Marshal(doc)
	require.NoError(t, err)

	got, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, doc.Name, got.Name)
	assert.Equal(t, doc.Description, got.Description)
	require.Len(t, got.Items, 2)

	assert.Equal(t, types.EncodedStyleItem{
		Num: 1, Module: 3, Operation: "colorout", OpParams: "0102", Enabled: true,
		BlendopVersion: 7,
	}, got.Items[0])
	assert.Equal(t, types.EncodedStyleItem{
		Num: 0, Module: 1, Operation: "exposure", OpParams: "deadbeef",
		BlendopParams: "00ff", BlendopVersion: 7, MultiPriority: 1, MultiName: "1",
	}, got.Items[1])
}

func TestMarshal_Latin1(t *testing.T) {
	doc := Document{Name: "café ☀", Description: "line\nbreak <b>"}
	data, err := Marshal(doc)
	require.NoError(t, err)

	assert.True(t, bytes.Contains(data, []byte("caf\xe9 &#9728;")), "é is one byte, ☀ a reference")
	assert.False(t, bytes.Contains(data, []byte("\xc3\xa9")), "no UTF-8 in output")

	got, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "café ☀", got.Name)
	assert.Equal(t, "line\nbreak <b>", got.Description)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, p *Parsed)
	}{
		{
			name: "case-insensitive element names",
			input: `<?xml version="1.0"?><DARKTABLE_STYLE><Info><NAME>x</NAME></Info>` +
				`<Style><Plugin><NUM>4</NUM><Operation>sharpen</Operation><ENABLED>1</ENABLED></Plugin></Style></DARKTABLE_STYLE>`,
			check: func(t *testing.T, p *Parsed) {
				assert.Equal(t, "x", p.Name)
				require.Len(t, p.Items, 1)
				assert.Equal(t, 4, p.Items[0].Num)
				assert.Equal(t, "sharpen", p.Items[0].Operation)
				assert.True(t, p.Items[0].Enabled)
			},
		},
		{
			name: "lenient integers",
			input: `<s><info><name>x</name></info><style><plugin>` +
				`<num> 12abc</num><module>-3</module><blendop_version>seven</blendop_version>` +
				`<multi_priority></multi_priority><enabled>yes</enabled></plugin></style></s>`,
			check: func(t *testing.T, p *Parsed) {
				require.Len(t, p.Items, 1)
				it := p.Items[0]
				assert.Equal(t, 12, it.Num)
				assert.Equal(t, -3, it.Module)
				assert.Zero(t, it.BlendopVersion)
				assert.Zero(t, it.MultiPriority)
				assert.False(t, it.Enabled)
			},
		},
		{
			name: "multi_name does not leak into the header",
			input: `<s><info><name>outer</name><description>d</description></info>` +
				`<style><plugin><multi_name>inner</multi_name><name>stray</name></plugin></style></s>`,
			check: func(t *testing.T, p *Parsed) {
				assert.Equal(t, "outer", p.Name)
				assert.Equal(t, "d", p.Description)
				require.Len(t, p.Items, 1)
				assert.Equal(t, "inner", p.Items[0].MultiName)
			},
		},
		{
			name:  "unknown elements are ignored",
			input: `<s><info><name>x</name><author>me</author></info><extra><plugin></plugin></extra></s>`,
			check: func(t *testing.T, p *Parsed) {
				assert.Equal(t, "x", p.Name)
				assert.Len(t, p.Items, 1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(strings.NewReader(tt.input))
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for name, input := range map[string]string{
		"unclosed":     `<s><info><name>x</name></info><style><plugin><num>1</num>`,
		"mismatched":   `<s><info><name>x</info></s>`,
		"empty":        ``,
		"missing name": `<s><info><description>d</description></info></s>`,
		"bad charset":  `<?xml version="1.0" encoding="x-no-such-charset"?><s><info><name>x</name></info></s>`,
	} {
		t.Run(name, func(t *testing.T) {
			p, err := Decode(strings.NewReader(input))
			assert.ErrorIs(t, err, types.ErrParseFailure)
			assert.Nil(t, p)
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	doc := sepia()

	path, err := Save(dir, doc, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sepia.dtstyle"), path)

	_, err = Save(dir, doc, false)
	assert.ErrorIs(t, err, types.ErrOverwriteRefused)

	doc.Description = "changed"
	_, err = Save(dir, doc, true)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Description)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSave_MissingDir(t *testing.T) {
	_, err := Save(filepath.Join(t.TempDir(), "nope"), sepia(), true)
	assert.ErrorIs(t, err, types.ErrIOFailure)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.dtstyle"))
	assert.ErrorIs(t, err, types.ErrIOFailure)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a_b_c.dtstyle", FileName(`a/b\c`))
	assert.Equal(t, "café.dtstyle", FileName("café"))
}
