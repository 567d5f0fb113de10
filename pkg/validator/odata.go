/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"regexp"
	"sort"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

var (
	odataIDPattern      = regexp.MustCompile(`^(\/.*)+(#([a-zA-Z0-9_.-]*\.)+[a-zA-Z0-9_.-]*)?$`)
	odataContextPattern = regexp.MustCompile(`^/redfish/v1/\$metadata#([a-zA-Z0-9_.-]*\.)[a-zA-Z0-9_.-]*`)
	odataTypePattern    = regexp.MustCompile(`^#([a-zA-Z0-9_.-]*\.)+[a-zA-Z0-9_.-]*$`)
)

// odata checks the protocol annotations of one object. The @odata.id of the
// resource root is also compared with the URI it was fetched from.
func (p *pass) odata(path string, payload map[string]any, tree *catalog.TypeTree) {
	keys := make([]string, 0, 4)
	for k := range payload {
		if strings.Contains(k, "@odata.") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := payload[k]
		term := k[strings.Index(k, "@odata."):]
		e := result.Entry{
			Path:   joinPath(path, k),
			Value:  result.DisplayValue(val, true),
			Type:   "odata annotation",
			Exists: true,
		}
		v := passing()
		s, isString := val.(string)

		switch term {
		case "@odata.id":
			switch {
			case !isString || !odataIDPattern.MatchString(s):
				v.fail(result.ClassOdataError, "invalid @odata.id %s", e.Value)
			case path == "" && p.rootURI != "" && !sameURI(s, p.rootURI):
				v.warn(result.ClassOdataError, "@odata.id %s does not match the URI %s", s, p.rootURI)
			}
			if isString && path == "" && s != "/redfish/v1/" && strings.HasSuffix(s, "/") {
				v.warn(result.ClassOdataError, "@odata.id %s has a trailing slash", s)
			}
		case "@odata.count":
			if _, integral, ok := number(val); !ok || !integral {
				v.fail(result.ClassOdataError, "@odata.count must be an integer, got %s", jsonKind(val))
			}
		case "@odata.context":
			if !isString || !odataContextPattern.MatchString(s) {
				v.warn(result.ClassOdataError, "@odata.context %s is not a metadata reference", e.Value)
			}
		case "@odata.type":
			if !isString || !odataTypePattern.MatchString(s) {
				v.fail(result.ClassOdataError, "invalid @odata.type %s", e.Value)
			}
		case "@odata.nextLink":
			if !isString {
				v.fail(result.ClassOdataError, "@odata.nextLink must be a string, got %s", jsonKind(val))
				break
			}
			p.link(Link{URI: s, Name: e.Path, Type: tree.Leaf().QualifiedName(), Kind: LinkNextPage})
		case "@odata.etag":
			if !isString {
				v.fail(result.ClassOdataError, "@odata.etag must be a string, got %s", jsonKind(val))
			}
		}
		p.add(v.entry(e))
	}
}

// sameURI compares URIs ignoring a trailing slash on the service root.
func sameURI(a, b string) bool {
	norm := func(s string) string {
		if s == "/redfish/v1/" {
			return "/redfish/v1"
		}
		return s
	}
	return norm(a) == norm(b)
}
