package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// prefixVisitor records method names together with the depth of enclosing
// closures, the way route extractors thread scope through Walk.
type prefixVisitor struct {
	depth int
	seen  *[]string
}

func (v prefixVisitor) Visit(n Node) Visitor {
	switch n := n.(type) {
	case *MethodCallExpr:
		*v.seen = append(*v.seen, n.Method+"@"+string(rune('0'+v.depth)))
	case *ClosureExpr:
		return prefixVisitor{depth: v.depth + 1, seen: v.seen}
	}
	return v
}

func TestWalk(t *testing.T) {
	src := `
mod inner {
    fn a() { x.one(); }
}
impl S {
    fn b(&self) {
        let f = |y| y.two(|z| z.three());
        match q { _ => q.four() }
    }
}
const C: u8 = m.five();
`
	t.Run("should reach method calls in modules, impls, closures and consts", func(t *testing.T) {
		f := mustParse(t, src)
		var seen []string
		Walk(prefixVisitor{seen: &seen}, f)
		assert.Equal(t, []string{"one@0", "two@1", "three@2", "four@0", "five@0"}, seen)
	})

	t.Run("should stop descending when Inspect returns false", func(t *testing.T) {
		f := mustParse(t, src)
		var fns []string
		calls := 0
		Inspect(f, func(n Node) bool {
			switch n := n.(type) {
			case *FnItem:
				fns = append(fns, n.Sig.Name)
				return n.Sig.Name != "b"
			case *MethodCallExpr:
				calls++
			}
			return true
		})
		assert.Equal(t, []string{"a", "b"}, fns)
		assert.Equal(t, 2, calls)
	})
}
