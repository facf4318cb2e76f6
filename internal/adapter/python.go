package adapter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type pythonAdapter struct{}

// EntitiesOf walks a Python source file, emitting a class_body Entity per
// class_definition, a method Entity per function_definition nested directly
// inside a class body, a function Entity per top-level function_definition,
// and a function Entity per lambda bound to a name by assignment.
func (pythonAdapter) EntitiesOf(path string, source []byte) ([]Entity, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var entities []Entity
	var walk func(n *sitter.Node, className string)
	walk = func(n *sitter.Node, className string) {
		switch n.Type() {
		case "class_definition":
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
		case "function_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(source)
				kind := KindFunction
				if className != "" {
					name = className + "." + name
					kind = KindMethod
				}
				entities = append(entities, newEntity(path, kind, name,
					int(n.StartByte()), int(n.EndByte()), source))
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), "")
			}
			return
		case "assignment":
			leftNode := n.ChildByFieldName("left")
			rightNode := n.ChildByFieldName("right")
			if leftNode != nil && rightNode != nil && rightNode.Type() == "lambda" {
				name := leftNode.Content(source)
				entities = append(entities, newEntity(path, KindFunction, name,
					int(rightNode.StartByte()), int(rightNode.EndByte()), source))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), className)
		}
	}
	walk(tree.RootNode(), "")
	return entities, nil
}
