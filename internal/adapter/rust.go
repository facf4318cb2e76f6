package adapter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

type rustAdapter struct{}

// EntitiesOf emits a method Entity per function_item nested inside an
// impl_item's body (named "Type.method"), and a function Entity per
// top-level function_item. struct_item, enum_item, and mod_item are
// type-only and excluded.
func (rustAdapter) EntitiesOf(path string, source []byte) ([]Entity, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var entities []Entity
	var walk func(n *sitter.Node, implName string)
	walk = func(n *sitter.Node, implName string) {
		switch n.Type() {
		case "impl_item":
			iname := ""
			if typeNode := n.ChildByFieldName("type"); typeNode != nil {
				iname = typeNode.Content(source)
			}
			if body := n.ChildByFieldName("body"); body != nil {
				for i := 0; i < int(body.ChildCount()); i++ {
					walk(body.Child(i), iname)
				}
			}
			return
		case "function_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(source)
				kind := KindFunction
				if implName != "" {
					name = implName + "." + name
					kind = KindMethod
				}
				entities = append(entities, newEntity(path, kind, name,
					int(n.StartByte()), int(n.EndByte()), source))
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), "")
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), implName)
		}
	}
	walk(tree.RootNode(), "")
	return entities, nil
}
