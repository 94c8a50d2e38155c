package pipelinedef

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/pointflow/errors"
)

// rootKey is the only member allowed at the document root.
const rootKey = "pipeline"

// Format is the syntax of a pipeline document.
type Format int

const (
	// FormatAuto detects JSON by its first significant character.
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// parseDocument decodes data into a node tree and returns the descriptor
// sequence under the root "pipeline" member.
func parseDocument(data []byte, format Format) (*yaml.Node, error) {
	if format == FormatAuto {
		format = detectFormat(data)
	}
	if format == FormatJSON {
		// ToJSON blanks comments in place, so line numbers survive.
		data = jsonc.ToJSON(data)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.DocumentSyntax("malformed pipeline document").WithCause(err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.DocumentSyntax("empty pipeline document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, at(errors.DocumentSyntax("root element must be an object"), root, -1)
	}
	if len(root.Content) != 2 || root.Content[0].Value != rootKey {
		return nil, at(errors.DocumentSyntax(fmt.Sprintf("root element must hold exactly one %q member", rootKey)), root, -1)
	}

	seq := root.Content[1]
	if seq.Kind != yaml.SequenceNode {
		return nil, at(errors.DocumentSyntax(fmt.Sprintf("%q must be an array", rootKey)), seq, -1)
	}
	if len(seq.Content) == 0 {
		return nil, at(errors.DocumentSyntax(fmt.Sprintf("%q has no stages", rootKey)), seq, -1)
	}
	return seq, nil
}

func detectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return FormatJSON
	}
	switch trimmed[0] {
	case '{', '[', '/':
		return FormatJSON
	}
	return FormatYAML
}

// at attaches the position of node, and the descriptor index when known, to
// err.
func at(err *errors.AppError, node *yaml.Node, index int) *errors.AppError {
	if index >= 0 {
		err.WithDetail("index", index)
	}
	if node != nil {
		err.WithDetail("line", node.Line)
		err.WithDetail("column", node.Column)
	}
	return err
}

// scalarValue returns a node's value as a trimmed string, or false if the
// node is not a scalar.
func scalarValue(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.ScalarNode {
		return "", false
	}
	return strings.TrimSpace(node.Value), true
}

// optionValue converts a member value to an option value: scalars become
// trimmed strings, structured members are decoded as-is.
func optionValue(node *yaml.Node) (any, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if v, ok := scalarValue(node); ok {
		return v, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
