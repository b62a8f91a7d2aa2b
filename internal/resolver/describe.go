package resolver

import (
	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// Unknown is the name given to types that cannot be described, such as
// tuples and function pointers.
const Unknown = "unknown"

// transparent lists the smart pointers that serialize as their contents.
var transparent = map[string]bool{
	"Box": true,
	"Rc":  true,
	"Arc": true,
	"Cow": true,
}

// Describe turns a type expression into a TypeDescriptor. Option and Vec
// become wrapper nodes, smart pointers and references are unwrapped, and
// slices and arrays are treated as Vec.
func Describe(t syntax.Type) model.TypeDescriptor {
	switch t := t.(type) {
	case *syntax.PathType:
		seg := t.Path.Last()
		if seg == nil || t.QSelf != nil {
			return model.NewType(Unknown)
		}
		if len(seg.Args) > 0 {
			switch {
			case seg.Name == "Option":
				return model.OptionOf(Describe(seg.Args[0]))
			case seg.Name == "Vec":
				return model.VecOf(Describe(seg.Args[0]))
			case transparent[seg.Name]:
				return Describe(seg.Args[0])
			}
		}
		var args []model.TypeDescriptor
		for _, a := range seg.Args {
			args = append(args, Describe(a))
		}
		return model.NewType(seg.Name, args...)
	case *syntax.RefType:
		return Describe(t.Elem)
	case *syntax.SliceType:
		return model.VecOf(Describe(t.Elem))
	case *syntax.ArrayType:
		return model.VecOf(Describe(t.Elem))
	}
	return model.NewType(Unknown)
}
