package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docsections/internal/doctree"
)

// RecoveryKind tags the outcome of RecoverSections.
type RecoveryKind int

const (
	// Unparseable means no non-empty array could be recovered.
	Unparseable RecoveryKind = iota
	// Parsed means Records holds at least one element.
	Parsed
	// Malformed means a bracket span was found but is not valid JSON.
	Malformed
)

func (k RecoveryKind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("RecoveryKind(%d)", int(k))
}

// Recovery is the result of salvaging a JSON array from a model answer.
type Recovery struct {
	Kind    RecoveryKind
	Records []doctree.Record // set when Kind == Parsed
	Text    string           // the original answer, set unless Kind == Parsed
	Stage   string           // "json" or "permissive" when parsed
	Err     error            // decode error, set when Kind == Malformed
}

// arrayRe matches the first '[' through the last ']' across newlines.
var arrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// RecoverSections pulls a non-empty array out of free-form model output.
// The greedy bracket span is decoded as strict JSON; a span that does not
// decode is Malformed. Only when the answer has no span at all is a
// permissive parse of near-JSON attempted. Elements are returned exactly
// as written.
func RecoverSections(content string) Recovery {
	if span := arrayRe.FindString(content); span != "" {
		recs, err := parseStrict(span)
		if err != nil {
			return Recovery{Kind: Malformed, Text: content, Err: fmt.Errorf("decode model output: %w", err)}
		}
		return recovered(recs, "json", content)
	}

	recs, err := parsePermissive(content)
	if err != nil {
		return Recovery{Kind: Unparseable, Text: content}
	}
	return recovered(recs, "permissive", content)
}

func recovered(recs []doctree.Record, stage, content string) Recovery {
	if len(recs) == 0 {
		return Recovery{Kind: Unparseable, Text: content}
	}
	return Recovery{Kind: Parsed, Records: recs, Stage: stage}
}

func parseStrict(s string) ([]doctree.Record, error) {
	var recs []doctree.Record
	if err := json.Unmarshal([]byte(s), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

var errNotFlowSequence = errors.New("permissive parse: not a flow sequence")

// parsePermissive accepts Python-literal-like lists: single-quoted strings,
// trailing commas, None/True/False. Only a flow-style sequence at the root
// is accepted, so prose and YAML block lists never count as sections.
func parsePermissive(s string) ([]doctree.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.TrimSpace(s)), &doc); err != nil {
		return nil, fmt.Errorf("permissive parse: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, errNotFlowSequence
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode || root.Style&yaml.FlowStyle == 0 {
		return nil, errNotFlowSequence
	}

	recs := make([]doctree.Record, 0, len(root.Content))
	for _, item := range root.Content {
		var buf bytes.Buffer
		if err := writeJSON(&buf, item); err != nil {
			return nil, err
		}
		recs = append(recs, doctree.Record(buf.Bytes()))
	}
	return recs, nil
}

// writeJSON renders a YAML node as JSON, keeping mapping key order.
func writeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.ScalarNode:
		return writeScalar(buf, n)

	case yaml.AliasNode:
		return fmt.Errorf("permissive parse: alias at line %d", n.Line)
	}
	return fmt.Errorf("permissive parse: unexpected node kind %d at line %d", n.Kind, n.Line)
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	quoted := n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0
	if !quoted && n.Value == "None" {
		buf.WriteString("null")
		return nil
	}

	var out []byte
	var err error
	switch n.ShortTag() {
	case "!!null":
		out = []byte("null")
	case "!!bool", "!!int", "!!float":
		var v any
		if err = n.Decode(&v); err != nil {
			return err
		}
		out, err = json.Marshal(v)
	default:
		out, err = json.Marshal(n.Value)
	}
	if err != nil {
		return err
	}
	buf.Write(out)
	return nil
}
