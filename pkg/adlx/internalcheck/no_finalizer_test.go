package internalcheck

import (
	"fmt"
	"go/ast"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Disposal is caller driven everywhere in this module. A finalizer would
// tie native release to garbage collection timing, which the native
// library cannot tolerate, so registering one anywhere is a defect.
func TestNoFinalizers(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedFiles | packages.NeedName,
	}

	pkgs, err := packages.Load(cfg, "github.com/epinter/adlxwrapper/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var findings []string

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			fset := pkg.Fset
			ast.Inspect(file, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				selector, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}

				obj := pkg.TypesInfo.Uses[selector.Sel]
				if obj == nil || obj.Pkg() == nil {
					return true
				}
				if obj.Pkg().Path() == "runtime" && obj.Name() == "SetFinalizer" {
					pos := fset.Position(call.Pos())
					findings = append(findings, fmt.Sprintf("%s: runtime.SetFinalizer is forbidden; disposal is caller driven", pos))
				}
				return true
			})
		}
	}

	if len(findings) > 0 {
		t.Fatalf("finalizer policy violation:\n%s", strings.Join(findings, "\n"))
	}
}
