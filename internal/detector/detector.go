// Package detector decides which routing frameworks a project uses by
// looking at its imports.
package detector

import (
	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// crateFrameworks maps the root crate of an import to the framework it signals.
var crateFrameworks = map[string]model.Framework{
	"axum":      model.FrameworkAxum,
	"actix_web": model.FrameworkActix,
}

// Detect returns the set of frameworks imported anywhere in files, including
// use declarations inside inline modules and function bodies. An empty set
// means nothing was detected.
func Detect(files []*syntax.File) model.FrameworkSet {
	found := model.FrameworkSet{}
	for _, f := range files {
		syntax.Inspect(f, func(n syntax.Node) bool {
			if u, ok := n.(*syntax.UseItem); ok {
				checkRoot(u.Tree, found)
			}
			return true
		})
	}
	return found
}

// checkRoot inspects the first segment of every path in tree. Groups at the
// root fan out; a glob carries no crate name.
func checkRoot(tree syntax.UseTree, found model.FrameworkSet) {
	var name string
	switch t := tree.(type) {
	case *syntax.UsePath:
		name = t.Name
	case *syntax.UseName:
		name = t.Name
	case *syntax.UseRename:
		name = t.Name
	case *syntax.UseGroup:
		for _, sub := range t.Trees {
			checkRoot(sub, found)
		}
		return
	default:
		return
	}
	if fw, ok := crateFrameworks[name]; ok {
		found.Add(fw)
	}
}
