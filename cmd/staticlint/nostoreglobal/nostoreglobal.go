// Package nostoreglobal reports package-level variables that hold a
// storage backend or a record store. Those must be passed explicitly to
// whoever needs them.
package nostoreglobal

import (
	"go/ast"
	"go/token"
	"go/types"
	"regexp"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "nostoreglobal",
	Doc:  "prohibits package-level variables holding storage backends or stores",
	Run:  run,
}

var storeTypeName = regexp.MustCompile(`(DB|Storage|Store)$`)

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}

			for _, spec := range gen.Specs {
				for _, name := range spec.(*ast.ValueSpec).Names {
					if name.Name == "_" {
						continue
					}
					obj := pass.TypesInfo.Defs[name]
					if obj == nil {
						continue
					}
					if typeName, ok := storeType(obj.Type()); ok {
						pass.Reportf(
							name.Pos(),
							"package-level variable %s holds %s, pass it explicitly instead",
							name.Name,
							typeName,
						)
					}
				}
			}
		}
	}
	return nil, nil
}

func storeType(t types.Type) (string, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok {
		return "", false
	}

	name := named.Obj().Name()
	return name, storeTypeName.MatchString(name)
}
