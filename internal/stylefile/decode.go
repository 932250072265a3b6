package stylefile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// Parsed is a decoded style document. Blobs are kept in their text form;
// the store decodes them when the items are saved.
type Parsed struct {
	Name        string
	Description string
	Items       []types.EncodedStyleItem // in document order
}

// parseState tracks where the decoder is in the document.
type parseState int

const (
	stateOutside parseState = iota
	stateInHeaderField
	stateInPlugin
	stateInPluginField
)

type parser struct {
	state parseState
	field string          // lower-cased name of the open field element
	text  strings.Builder // character data of the open field
	doc   Parsed
	cur   types.EncodedStyleItem
}

// Decode reads a style document from r. Element names match
// case-insensitively and unknown elements are ignored. Integer fields that
// are not numeric read as 0. Any XML error abandons the whole document.
func Decode(r io.Reader) (*Parsed, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader

	p := &parser{}
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrParseFailure, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.start(strings.ToLower(t.Name.Local))
		case xml.EndElement:
			p.end(strings.ToLower(t.Name.Local))
		case xml.CharData:
			if p.state == stateInHeaderField || p.state == stateInPluginField {
				p.text.Write(t)
			}
		}
	}

	if p.doc.Name == "" {
		return nil, fmt.Errorf("%w: style has no name", types.ErrParseFailure)
	}
	return &p.doc, nil
}

func (p *parser) start(name string) {
	switch p.state {
	case stateOutside:
		switch name {
		case "plugin":
			p.state = stateInPlugin
			p.cur = types.EncodedStyleItem{}
		case "name", "description":
			p.state = stateInHeaderField
			p.field = name
			p.text.Reset()
		}
	case stateInPlugin:
		p.state = stateInPluginField
		p.field = name
		p.text.Reset()
	}
}

func (p *parser) end(name string) {
	switch p.state {
	case stateInHeaderField:
		if name != p.field {
			return
		}
		if name == "name" {
			p.doc.Name += p.text.String()
		} else {
			p.doc.Description += p.text.String()
		}
		p.state = stateOutside
	case stateInPluginField:
		if name != p.field {
			return
		}
		p.setField(name, p.text.String())
		p.state = stateInPlugin
	case stateInPlugin:
		if name == "plugin" {
			p.doc.Items = append(p.doc.Items, p.cur)
			p.state = stateOutside
		}
	}
}

func (p *parser) setField(name, text string) {
	it := &p.cur
	switch name {
	case "num":
		it.Num = atoi(text)
	case "module":
		it.Module = atoi(text)
	case "operation":
		it.Operation = text
	case "op_params":
		it.OpParams = strings.TrimSpace(text)
	case "enabled":
		it.Enabled = atoi(text) != 0
	case "blendop_params":
		it.BlendopParams = strings.TrimSpace(text)
	case "blendop_version":
		it.BlendopVersion = atoi(text)
	case "multi_priority":
		it.MultiPriority = atoi(text)
	case "multi_name":
		it.MultiName = text
	}
}

// atoi parses a leading decimal integer the way C's atoi does: leading
// whitespace and a sign are accepted, parsing stops at the first non-digit,
// and text with no digits reads as 0.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<31 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
