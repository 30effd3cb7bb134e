package story

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Serialize.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// document is the serialized form of a parsed story.
type document struct {
	Version   string     `json:"version" yaml:"version"`
	Source    string     `json:"source,omitempty" yaml:"source,omitempty"`
	Sentences []Sentence `json:"sentences" yaml:"sentences"`
}

// Serialize renders a story as indented JSON or YAML.
func Serialize(st Story, source, format string) ([]byte, error) {
	if st == nil {
		st = Story{}
	}
	doc := document{Version: "1", Source: source, Sentences: st}
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
}

// Deserialize reads a story back from its JSON form.
func Deserialize(data []byte) (Story, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Sentences, nil
}
