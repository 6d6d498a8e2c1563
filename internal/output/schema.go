// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

// maxSchemaDepth limits the depth of schema walking to prevent infinite
// recursion.
const maxSchemaDepth = 1

// DumpSchema writes a sorted list of the attribute names available on the
// provided result type to the writer. If w is nil, os.Stdout is used. The AWS
// SDK result structs carry no serialization tags, so exported field names are
// the attribute names, exactly as they appear in --output=raw JSON.
func DumpSchema(prefix string, typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w,
		`Attributes directly available to the --attrs flag. For the complete
document, use --output=raw.`)
	fmt.Fprintln(w, "")

	names := dumpSchemaWalker(prefix, typ, 0)
	if len(names) == 0 {
		log.Debugf("No fields found for type: %s", typ.Name())
		return
	}

	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

// dumpSchemaWalker recursively walks a struct type discovering exported
// fields, joining nested names with dots.
func dumpSchemaWalker(holder string, typ reflect.Type, depth int) []string {
	names := make([]string, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		log.Debugf("field: %s, type: %s in %s", field.Name, field.Type, field.PkgPath)

		name := field.Name
		if holder != "" {
			name = holder + "." + name
		}

		// Prefer a json tag when one exists (capture records carry them).
		if tagValue, ok := field.Tag.Lookup("json"); ok {
			tagName := strings.Split(tagValue, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
				if holder != "" {
					name = holder + "." + tagName
				}
			}
		}

		names = append(names, name)

		if depth < maxSchemaDepth {
			switch field.Type.Kind() {
			case reflect.Struct:
				if field.Type.PkgPath() != "time" {
					names = append(names, dumpSchemaWalker(name, field.Type, depth+1)...)
				}
			case reflect.Ptr:
				if field.Type.Elem().Kind() == reflect.Struct && field.Type.Elem().PkgPath() != "time" {
					names = append(names, dumpSchemaWalker(name, field.Type.Elem(), depth+1)...)
				}
			}
		}
	}

	return names
}
