package internalcheck

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Raw pointer arithmetic is confined to the dispatch chokepoint and the
// fake backend that mirrors it. Everything above talks to native memory
// through bindings.Ref and the typed getters.
var unsafeAllowed = map[string]bool{
	"github.com/epinter/adlxwrapper/internal/bindings": true,
	"github.com/epinter/adlxwrapper/pkg/adlx/mockadlx": true,
}

func TestUnsafeConfinedToBindings(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedFiles | packages.NeedName,
	}

	pkgs, err := packages.Load(cfg, "github.com/epinter/adlxwrapper/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var findings []string

	for _, pkg := range pkgs {
		if unsafeAllowed[pkg.PkgPath] {
			continue
		}
		for _, file := range pkg.Syntax {
			for _, imp := range file.Imports {
				path, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					continue
				}
				if path == "unsafe" {
					pos := pkg.Fset.Position(imp.Pos())
					findings = append(findings, fmt.Sprintf("%s: unsafe import outside the bindings chokepoint", pos))
				}
			}
		}
	}

	if len(findings) > 0 {
		t.Fatalf("unsafe confinement violation:\n%s", strings.Join(findings, "\n"))
	}
}
