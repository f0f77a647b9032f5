package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var ErrMalformedEnvelope = errors.New("malformed soap envelope")

// Envelope is a decoded inbound call.
type Envelope struct {
	Method Method
	// Name is the local name of the first Body child as sent.
	Name   string
	params map[string]string
}

// Param returns a parameter by local name, ignoring case. Missing parameters
// read as empty.
func (e *Envelope) Param(name string) string {
	return e.params[strings.ToLower(name)]
}

func (e *Envelope) Params() map[string]string {
	out := make(map[string]string, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

var encodingDecl = regexp.MustCompile(`(?i)^\s*<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)

// legacyCharsets are the single-byte encodings desktop agents have been seen
// to declare.
var legacyCharsets = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
}

// toUTF8 transcodes body when its declaration names a legacy charset, so
// byte offsets taken while decoding line up with the returned text.
func toUTF8(body []byte) (string, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	m := encodingDecl.FindSubmatch(body)
	if m == nil {
		return string(body), nil
	}
	enc, ok := legacyCharsets[strings.ToLower(string(m[1]))]
	if !ok {
		return string(body), nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedEnvelope, m[1], err)
	}
	return string(out), nil
}

func newDecoder(doc string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec
}

// Decode reads the method and its parameters out of a SOAP request. Element
// prefixes are ignored. A parameter carrying raw markup instead of escaped
// text is returned as that markup.
func Decode(body []byte) (*Envelope, error) {
	doc, err := toUTF8(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedEnvelope)
	}

	env := &Envelope{params: map[string]string{}}
	dec := newDecoder(doc)
	inBody := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !inBody {
			inBody = strings.EqualFold(start.Name.Local, "Body")
			continue
		}
		env.Name = start.Name.Local
		env.Method = Lookup(start.Name.Local)
		if err := readParams(dec, doc, env.params); err != nil {
			return nil, err
		}
		break
	}

	if env.Method == MethodUnknown {
		env.Method = Detect(doc)
	}
	return env, nil
}

func readParams(dec *xml.Decoder, doc string, params map[string]string) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			val, err := readValue(dec, doc)
			if err != nil {
				return err
			}
			params[strings.ToLower(t.Name.Local)] = val
		case xml.EndElement:
			return nil
		}
	}
}

// readValue consumes one parameter element, positioned just after its start
// tag, and returns its text or its raw inner markup.
func readValue(dec *xml.Decoder, doc string) (string, error) {
	begin := dec.InputOffset()
	var text strings.Builder
	depth, markup := 1, false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			markup = true
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		}
	}
	if !markup {
		return text.String(), nil
	}
	raw := doc[begin:dec.InputOffset()]
	if i := strings.LastIndex(raw, "</"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw), nil
}
