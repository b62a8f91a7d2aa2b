// Package resolver looks up the declarations behind type names in the
// parsed sources.
package resolver

import (
	"log/slog"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// primitives are the scalar types that never need a declaration.
var primitives = map[string]bool{
	"String": true, "str": true, "char": true, "bool": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true,
}

// IsPrimitive reports whether name is a scalar type.
func IsPrimitive(name string) bool {
	return primitives[name]
}

// Resolver maps type names to their declarations. Results are cached for
// the lifetime of the Resolver; a name that is requested while it is being
// resolved yields a KindGeneric placeholder.
type Resolver struct {
	files  []*syntax.File
	logger *slog.Logger
	cache  map[string]*model.ResolvedType
	guard  map[string]bool
}

// New returns a Resolver over files. Files are searched in order.
func New(files []*syntax.File, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		files:  files,
		logger: logger,
		cache:  map[string]*model.ResolvedType{},
		guard:  map[string]bool{},
	}
}

// Resolve returns the declaration of name, or nil if no struct or enum of
// that name exists.
func (r *Resolver) Resolve(name string) *model.ResolvedType {
	return r.resolve(name, false)
}

// ResolveNested resolves td, its generic arguments and, for records resolved
// by this call, the types of their fields. Records already in the cache are
// not walked again.
func (r *Resolver) ResolveNested(td model.TypeDescriptor) {
	if !IsPrimitive(td.Name) && !td.IsOption && !td.IsVec {
		r.resolve(td.Name, true)
	}
	for _, arg := range td.GenericArgs {
		r.ResolveNested(arg)
	}
}

func (r *Resolver) resolve(name string, deep bool) *model.ResolvedType {
	if rt, ok := r.cache[name]; ok {
		return rt
	}
	if r.guard[name] {
		r.logger.Debug("Circular reference detected", "type", name)
		return &model.ResolvedType{Name: name, Kind: model.KindGeneric}
	}
	r.guard[name] = true
	defer delete(r.guard, name)

	var rt *model.ResolvedType
	switch {
	case IsPrimitive(name):
		rt = &model.ResolvedType{Name: name, Kind: model.KindPrimitive}
	default:
		if st := r.findStruct(name); st != nil {
			rt = r.parseStruct(st)
			if deep {
				for _, f := range rt.Fields {
					r.ResolveNested(f.Type)
				}
			}
		} else if en := r.findEnum(name); en != nil {
			rt = parseEnum(en)
		} else {
			r.logger.Debug("Could not resolve type", "type", name)
		}
	}
	r.cache[name] = rt
	return rt
}

func (r *Resolver) findStruct(name string) *syntax.StructItem {
	var found *syntax.StructItem
	r.find(func(it syntax.Item) bool {
		st, ok := it.(*syntax.StructItem)
		if ok && st.Name == name {
			found = st
		}
		return found != nil
	})
	return found
}

func (r *Resolver) findEnum(name string) *syntax.EnumItem {
	var found *syntax.EnumItem
	r.find(func(it syntax.Item) bool {
		en, ok := it.(*syntax.EnumItem)
		if ok && en.Name == name {
			found = en
		}
		return found != nil
	})
	return found
}

// find calls match on the items of each file until it returns true. A
// file's top-level items are tried before its inline modules, which are
// searched depth-first.
func (r *Resolver) find(match func(syntax.Item) bool) {
	for _, f := range r.files {
		if findIn(f.Items, match) {
			return
		}
	}
}

func findIn(items []syntax.Item, match func(syntax.Item) bool) bool {
	for _, it := range items {
		if match(it) {
			return true
		}
	}
	for _, it := range items {
		if mod, ok := it.(*syntax.ModItem); ok && findIn(mod.Items, match) {
			return true
		}
	}
	return false
}

func (r *Resolver) parseStruct(st *syntax.StructItem) *model.ResolvedType {
	container := parseSerde(st.Attrs)
	rt := &model.ResolvedType{Name: st.Name, Kind: model.KindStruct}
	if container.rename != nil {
		rt.Rename = *container.rename
	}
	if st.Kind != syntax.NamedFields {
		return rt
	}
	for _, f := range st.Fields {
		opts := parseSerde(f.Attrs)
		td := Describe(f.Type)
		name := f.Name
		switch {
		case opts.rename != nil:
			name = *opts.rename
		case container.renameAll != "":
			name = applyRenameAll(name, container.renameAll, false)
		}
		rt.Fields = append(rt.Fields, model.FieldDef{
			Name:     name,
			Type:     td,
			Optional: td.IsOption,
			Attrs:    opts.attrs(),
		})
	}
	r.logger.Debug("Parsed struct", "type", st.Name, "fields", len(rt.Fields))
	return rt
}

func parseEnum(en *syntax.EnumItem) *model.ResolvedType {
	container := parseSerde(en.Attrs)
	rt := &model.ResolvedType{Name: en.Name, Kind: model.KindEnum}
	if container.rename != nil {
		rt.Rename = *container.rename
	}
	for _, v := range en.Variants {
		opts := parseSerde(v.Attrs)
		if opts.skip {
			continue
		}
		name := v.Name
		switch {
		case opts.rename != nil:
			name = *opts.rename
		case container.renameAll != "":
			name = applyRenameAll(name, container.renameAll, true)
		}
		rt.Variants = append(rt.Variants, name)
	}
	return rt
}
