package adapter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

type javascriptAdapter struct{}

func (javascriptAdapter) EntitiesOf(path string, source []byte) ([]Entity, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	entities := walkECMAScript(tree.RootNode(), path, source)
	return entities, nil
}

// walkECMAScript extracts class bodies, methods, function declarations, and
// variable-bound function/arrow expressions. It is shared between the
// JavaScript and TypeScript adapters since both grammars expose the same
// node shapes for these constructs; TypeScript-only constructs (interfaces,
// type aliases) are type-only and excluded by not being matched here.
func walkECMAScript(root *sitter.Node, path string, source []byte) []Entity {
	var entities []Entity
	var walk func(n *sitter.Node, className string)
	walk = func(n *sitter.Node, className string) {
		switch n.Type() {
		case "class_declaration":
			nameNode := n.ChildByFieldName("name")
			cname := ""
			if nameNode != nil {
				cname = nameNode.Content(source)
				entities = append(entities, newEntity(path, KindClassBody, cname,
					int(n.StartByte()), int(n.EndByte()), source))
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), cname)
			}
			return
		case "method_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(source)
				if className != "" {
					name = className + "." + name
				}
				entities = append(entities, newEntity(path, KindMethod, name,
					int(n.StartByte()), int(n.EndByte()), source))
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), "")
			}
			return
		case "function_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(source)
				entities = append(entities, newEntity(path, KindFunction, name,
					int(n.StartByte()), int(n.EndByte()), source))
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), "")
			}
			return
		case "variable_declarator":
			nameNode := n.ChildByFieldName("name")
			valueNode := n.ChildByFieldName("value")
			if nameNode != nil && valueNode != nil &&
				(valueNode.Type() == "arrow_function" || valueNode.Type() == "function") {
				name := nameNode.Content(source)
				entities = append(entities, newEntity(path, KindFunction, name,
					int(valueNode.StartByte()), int(valueNode.EndByte()), source))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), className)
		}
	}
	walk(root, "")
	return entities
}
