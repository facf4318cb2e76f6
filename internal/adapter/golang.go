package adapter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

type goAdapter struct{}

// EntitiesOf walks a Go source file and emits one Entity per function
// declaration and per method declaration. No other node kind is emitted:
// type declarations are excluded, and so are var/const declarations,
// including those bound to a function literal (var f = func() {...}).
func (goAdapter) EntitiesOf(path string, source []byte) ([]Entity, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var entities []Entity
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(source)
				entities = append(entities, newEntity(path, KindFunction, name,
					int(n.StartByte()), int(n.EndByte()), source))
			}
		case "method_declaration":
			nameNode := n.ChildByFieldName("name")
			recvNode := n.ChildByFieldName("receiver")
			if nameNode != nil {
				name := nameNode.Content(source)
				if typeName := goReceiverTypeName(recvNode, source); typeName != "" {
					name = typeName + "." + name
				}
				entities = append(entities, newEntity(path, KindMethod, name,
					int(n.StartByte()), int(n.EndByte()), source))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return entities, nil
}

// goReceiverTypeName extracts "Foo" from a receiver parameter list like
// "(f *Foo)" or "(f Foo)".
func goReceiverTypeName(recv *sitter.Node, source []byte) string {
	if recv == nil || recv.NamedChildCount() == 0 {
		return ""
	}
	decl := recv.NamedChild(0)
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	text := typeNode.Content(source)
	return strings.TrimPrefix(text, "*")
}
