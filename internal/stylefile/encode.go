package stylefile

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/mesh-intelligence/styles/internal/paramcodec"
	"github.com/mesh-intelligence/styles/pkg/types"
)

// Document is the in-memory form of a style file.
type Document struct {
	Name        string
	Description string
	Items       []types.StyleItem // written in slice order
}

// Encode writes doc to w.
func Encode(w io.Writer, doc Document) error {
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Marshal returns the ISO-8859-1 encoded document bytes.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=%q?>\n", types.StyleFileCharset)
	fmt.Fprintf(&buf, "<%s version=%q>", types.StyleFileRootName, types.StyleFileVersion)

	buf.WriteString("<info>")
	element(&buf, "name", doc.Name)
	element(&buf, "description", doc.Description)
	buf.WriteString("</info>")

	buf.WriteString("<style>")
	for _, it := range doc.Items {
		buf.WriteString("<plugin>")
		element(&buf, "num", strconv.Itoa(it.Num))
		element(&buf, "module", strconv.Itoa(it.Module))
		element(&buf, "operation", it.Operation)
		element(&buf, "op_params", paramcodec.Encode(it.OpParams))
		element(&buf, "enabled", enabledText(it.Enabled))
		element(&buf, "blendop_params", paramcodec.Encode(it.BlendopParams))
		element(&buf, "blendop_version", strconv.Itoa(it.BlendopVersion))
		element(&buf, "multi_priority", strconv.Itoa(it.MultiPriority))
		element(&buf, "multi_name", it.MultiName)
		buf.WriteString("</plugin>")
	}
	buf.WriteString("</style>")

	fmt.Fprintf(&buf, "</%s>\n", types.StyleFileRootName)

	out, err := charmap.ISO8859_1.NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", types.StyleFileCharset, err)
	}
	return out, nil
}

func element(buf *bytes.Buffer, name, text string) {
	buf.WriteByte('<')
	buf.WriteString(name)
	buf.WriteByte('>')
	escapeText(buf, text)
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

// escapeText writes s as XML character data. Runes the output charset cannot
// represent become numeric character references; control characters XML
// does not allow are dropped.
func escapeText(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case r > 0xFF:
			xml.EscapeText(buf, []byte(s[start:i]))
			fmt.Fprintf(buf, "&#%d;", r)
			start = i + w
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			xml.EscapeText(buf, []byte(s[start:i]))
			start = i + w
		}
		i += w
	}
	xml.EscapeText(buf, []byte(s[start:]))
}

func enabledText(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
