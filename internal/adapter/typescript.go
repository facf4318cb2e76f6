package adapter

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

type typescriptAdapter struct{}

// EntitiesOf reuses walkECMAScript since TypeScript's class/function/method
// node shapes match JavaScript's; interface_declaration and type_alias
// nodes are type-only and simply never matched by that walk.
func (typescriptAdapter) EntitiesOf(path string, source []byte) ([]Entity, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return walkECMAScript(tree.RootNode(), path, source), nil
}
