package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/catql/pkg/model"
)

// document is the keyed file layout: a mapping with an items list.
type document struct {
	Items []*model.Item `yaml:"items"`
}

// Load reads items from YAML or JSON. The input is either a list of items
// or a mapping with an "items" list. An empty input is an empty catalog.
func Load(r io.Reader) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	var items []*model.Item
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("catalog: decode: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("catalog: decode: %w", err)
		}
		items = doc.Items
	default:
		return nil, fmt.Errorf("catalog: line %d: expected a list of items or a mapping", node.Line)
	}

	for i, it := range items {
		if it == nil || it.ID == "" {
			return nil, fmt.Errorf("catalog: item %d: missing id", i)
		}
		normalize(it)
	}
	return New(items...), nil
}

// LoadFile reads a catalog file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// normalize fills defaults for fields left out of the file: requirements
// without a range accept any version, capabilities without a namespace are
// item capabilities.
func normalize(it *model.Item) {
	for i := range it.Requires {
		r := &it.Requires[i]
		if r.Range == (model.VersionRange{}) {
			r.Range = model.AnyVersion
		}
		if r.Namespace == "" {
			r.Namespace = model.NamespaceItem
		}
	}
	for i := range it.Provides {
		if it.Provides[i].Namespace == "" {
			it.Provides[i].Namespace = model.NamespaceItem
		}
	}
}
