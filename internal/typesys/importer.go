package typesys

import (
	"fmt"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"

	"class-composer/internal/common"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// TypeID identifies a Go declared type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "class-composer/fixtures/zoo"
	Name    string // e.g., "Animal"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Qualified returns the name the importer binds the type under, e.g. "zoo.Animal".
func (t TypeID) Qualified() string {
	return common.Qualify(t.PkgPath, t.Name)
}

// Field is the attribute value recorded for an imported struct field.
type Field struct {
	Type string            // type expression relative to the declaring package
	Tag  reflect.StructTag // raw struct tag
}

// Method is the attribute value recorded for an imported method.
type Method struct {
	Signature string
}

// Importer builds Types from exported Go struct declarations.
//
// Embedded structs that are themselves imported become bases in field order;
// other exported fields and declared methods become attributes.
type Importer struct {
	registry *Registry
	meta     *Meta
}

// NewImporter creates an importer binding into registry. Types are built
// with TypeMeta.
func NewImporter(registry *Registry) *Importer {
	return &Importer{registry: registry, meta: TypeMeta}
}

type pendingStruct struct {
	id     TypeID
	named  *types.Named
	st     *types.Struct
	pkg    *types.Package
	embeds []int
}

// LoadPackages loads the given package patterns and binds every exported
// struct under its qualified name. It returns the imported IDs in
// construction order.
func (im *Importer) LoadPackages(patterns ...string) ([]TypeID, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	var pending []*pendingStruct
	index := make(map[TypeID]int)

	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			typeName, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !typeName.Exported() || typeName.IsAlias() {
				continue
			}

			named, ok := typeName.Type().(*types.Named)
			if !ok {
				continue
			}

			st, ok := named.Underlying().(*types.Struct)
			if !ok {
				continue
			}

			id := TypeID{PkgPath: pkg.PkgPath, Name: name}
			index[id] = len(pending)
			pending = append(pending, &pendingStruct{id: id, named: named, st: st, pkg: pkg.Types})
		}
	}

	for _, p := range pending {
		for i := 0; i < p.st.NumFields(); i++ {
			f := p.st.Field(i)
			if !f.Embedded() {
				continue
			}

			if j, ok := index[embeddedID(f.Type())]; ok {
				p.embeds = append(p.embeds, j)
			}
		}
	}

	order, err := embedOrder(pending)
	if err != nil {
		return nil, err
	}

	built := make([]*Type, len(pending))
	ids := make([]TypeID, 0, len(order))

	for _, i := range order {
		p := pending[i]

		bases := make([]*Type, 0, len(p.embeds))
		for _, j := range p.embeds {
			bases = append(bases, built[j])
		}

		t, err := im.meta.New(p.id.Name, bases, im.attrsOf(p, index))
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", p.id, err)
		}

		built[i] = t
		im.registry.Bind(p.id.Qualified(), t)
		ids = append(ids, p.id)
	}

	return ids, nil
}

func (im *Importer) attrsOf(p *pendingStruct, index map[TypeID]int) *Attrs {
	qualifier := types.RelativeTo(p.pkg)
	attrs := NewAttrs()

	for i := 0; i < p.st.NumFields(); i++ {
		f := p.st.Field(i)
		if !f.Exported() {
			continue
		}

		if f.Embedded() {
			if _, ok := index[embeddedID(f.Type())]; ok {
				continue
			}
		}

		attrs.Set(f.Name(), Field{
			Type: types.TypeString(f.Type(), qualifier),
			Tag:  reflect.StructTag(p.st.Tag(i)),
		})
	}

	for i := 0; i < p.named.NumMethods(); i++ {
		m := p.named.Method(i)
		if !m.Exported() {
			continue
		}

		attrs.Set(m.Name(), Method{Signature: types.TypeString(m.Type(), qualifier)})
	}

	return attrs
}

// embeddedID returns the TypeID of an embedded field type, looking through
// one pointer.
func embeddedID(t types.Type) TypeID {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return TypeID{}
	}

	return TypeID{PkgPath: named.Obj().Pkg().Path(), Name: named.Obj().Name()}
}
