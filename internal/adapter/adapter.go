package adapter

import (
	"fmt"

	"swesmith/internal/profile"
)

// LanguageAdapter parses one source file into its flat sequence of code
// entities. Every variant must obey the rules in the package doc: walk
// function-like nodes only, exclude type-only declarations, and produce
// byte-exact spans.
type LanguageAdapter interface {
	EntitiesOf(path string, source []byte) ([]Entity, error)
}

// New returns the LanguageAdapter for lang. Adding a language means adding a
// case here and a new file implementing LanguageAdapter, not registering a
// plugin at runtime.
func New(lang profile.Language) (LanguageAdapter, error) {
	switch lang {
	case profile.LanguageGo:
		return goAdapter{}, nil
	case profile.LanguagePython:
		return pythonAdapter{}, nil
	case profile.LanguageJavaScript:
		return javascriptAdapter{}, nil
	case profile.LanguageTypeScript:
		return typescriptAdapter{}, nil
	case profile.LanguageRust:
		return rustAdapter{}, nil
	default:
		return nil, fmt.Errorf("adapter: unsupported language %q", lang)
	}
}

// newEntity builds an Entity spanning node's byte range in source.
func newEntity(path string, kind Kind, name string, lo, hi int, source []byte) Entity {
	return Entity{
		File:    path,
		Lo:      lo,
		Hi:      hi,
		Kind:    kind,
		Name:    name,
		SrcCode: string(source[lo:hi]),
	}
}
