package adapters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"go.yaml.in/yaml/v3"
)

// jsonNumber matches number literals that encoding/json accepts verbatim.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// numberLiteral returns raw as a json.Number when it can be carried to JSON
// unchanged, so "1.10" does not collapse to 1.1.
func numberLiteral(raw string) (json.Number, bool) {
	s := strings.TrimPrefix(strings.ReplaceAll(raw, "_", ""), "+")
	if !jsonNumber.MatchString(s) {
		return "", false
	}
	return json.Number(s), true
}

// yamlToJSON converts a YAML document to JSON, keeping numeric scalars as
// written.
func yamlToJSON(body []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(body, &root); err != nil {
		return nil, err
	}
	v, err := yamlValue(&root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	}

	switch n.ShortTag() {
	case "!!int", "!!float":
		if num, ok := numberLiteral(n.Value); ok {
			return num, nil
		}
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

// tomlToJSON converts a TOML document to JSON. Values come from the regular
// decoder; number literals are then put back as written.
func tomlToJSON(body []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	numbers, err := tomlNumbers(body)
	if err != nil {
		return nil, err
	}
	for _, n := range numbers {
		setPath(doc, n.path, n.value)
	}
	return json.Marshal(doc)
}

type tomlNumber struct {
	path  []any // string keys and int indexes
	value json.Number
}

// tomlNumbers collects the number literals of body by their location.
func tomlNumbers(body []byte) ([]tomlNumber, error) {
	var (
		p      unstable.Parser
		out    []tomlNumber
		table  []any
		arrays = map[string]int{}
	)
	p.Reset(body)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			table = keyPath(nil, e.Key())
		case unstable.ArrayTable:
			table = keyPath(nil, e.Key())
			id := fmt.Sprint(table...)
			table = append(table, arrays[id])
			arrays[id]++
		case unstable.KeyValue:
			out = collectNumbers(out, keyPath(table, e.Key()), e.Value())
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

func keyPath(prefix []any, it unstable.Iterator) []any {
	path := append([]any{}, prefix...)
	for it.Next() {
		path = append(path, string(it.Node().Data))
	}
	return path
}

func collectNumbers(out []tomlNumber, path []any, v *unstable.Node) []tomlNumber {
	switch v.Kind {
	case unstable.Float, unstable.Integer:
		if num, ok := numberLiteral(string(v.Data)); ok {
			out = append(out, tomlNumber{path: path, value: num})
		}
	case unstable.Array:
		it := v.Children()
		for i := 0; it.Next(); i++ {
			out = collectNumbers(out, append(append([]any{}, path...), i), it.Node())
		}
	case unstable.InlineTable:
		it := v.Children()
		for it.Next() {
			kv := it.Node()
			out = collectNumbers(out, keyPath(path, kv.Key()), kv.Value())
		}
	}
	return out
}

// setPath replaces the value at path within doc, if that location exists.
func setPath(doc any, path []any, value any) {
	for i, step := range path {
		last := i == len(path)-1
		switch node := doc.(type) {
		case map[string]any:
			key, ok := step.(string)
			if !ok {
				return
			}
			if last {
				if _, exists := node[key]; exists {
					node[key] = value
				}
				return
			}
			doc = node[key]
		case []any:
			idx, ok := step.(int)
			if !ok || idx >= len(node) {
				return
			}
			if last {
				node[idx] = value
				return
			}
			doc = node[idx]
		case []map[string]any:
			idx, ok := step.(int)
			if !ok || idx >= len(node) || last {
				return
			}
			doc = node[idx]
		default:
			return
		}
	}
}
