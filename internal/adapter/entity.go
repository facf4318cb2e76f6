// Package adapter implements the Language Adapter: one per source language,
// each turning a parsed tree into a flat sequence of code entities with
// byte-exact spans. See adapter.go for the sum-type dispatcher chosen by a
// repository profile's language tag.
package adapter

// Kind identifies what kind of syntactic unit an Entity represents.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClassBody Kind = "class_body"
)

// Entity is a syntactic unit with an executable body: a function, a method,
// a variable-bound function expression, or a class body. Lo/Hi are
// half-open byte offsets into the source file; SrcCode must equal the file
// contents over [Lo, Hi) exactly, so that splicing SrcCode back into the
// file at [Lo, Hi) reproduces the original bytes.
type Entity struct {
	File    string
	Lo, Hi  int
	Kind    Kind
	Name    string
	SrcCode string
}
