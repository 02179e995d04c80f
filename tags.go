package fracpack

import (
	"reflect"
	"strings"
)

// TagName is the struct tag key read by the registry.
//
// On a field: `fracpack:"name"` renames it, `fracpack:"-"` skips it and
// `fracpack:",ref"` makes a pointer field transparent.
// On a blank field, `_ struct{} `fracpack:",frozen,customjson"``, the options
// apply to the enclosing struct: frozen, customjson, tuple, union.
const TagName = "fracpack"

type structOptions struct {
	frozen     bool
	customJSON bool
	tuple      bool
	union      bool
}

type fieldTag struct {
	name string
	skip bool
	ref  bool
}

func parseTag(tag string) (string, []string) {
	name, rest, _ := strings.Cut(tag, ",")
	if rest == "" {
		return name, nil
	}
	return name, strings.Split(rest, ",")
}

func structOptionsOf(rt reflect.Type) structOptions {
	var so structOptions
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Name != "_" {
			continue
		}
		_, opts := parseTag(sf.Tag.Get(TagName))
		for _, o := range opts {
			switch o {
			case "frozen":
				so.frozen = true
			case "customjson":
				so.customJSON = true
			case "tuple":
				so.tuple = true
			case "union":
				so.union = true
			}
		}
	}
	return so
}

func fieldTagOf(sf reflect.StructField) fieldTag {
	name, opts := parseTag(sf.Tag.Get(TagName))
	if name == "-" && len(opts) == 0 {
		return fieldTag{skip: true}
	}
	ft := fieldTag{name: name}
	if ft.name == "" {
		ft.name = lowerCamel(sf.Name)
	}
	for _, o := range opts {
		if o == "ref" {
			ft.ref = true
		}
	}
	return ft
}

// wireFields lists the exported, non-skipped fields of rt in declaration order.
func wireFields(rt reflect.Type) ([]reflect.StructField, []fieldTag) {
	var fields []reflect.StructField
	var tags []fieldTag
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Name == "_" || !sf.IsExported() {
			continue
		}
		ft := fieldTagOf(sf)
		if ft.skip {
			continue
		}
		fields = append(fields, sf)
		tags = append(tags, ft)
	}
	return fields, tags
}
