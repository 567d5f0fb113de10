/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"errors"
	"sort"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

var actionKeys = map[string]bool{
	"target":                             true,
	"title":                              true,
	"@Redfish.ActionInfo":                true,
	"@Redfish.OperationApplyTimeSupport": true,
}

var allowableAnnotations = []string{
	"@Redfish.AllowableValues",
	"@Redfish.AllowableNumbers",
	"@Redfish.AllowablePattern",
}

// action validates one #Namespace.Action member of an Actions object.
func (p *pass) action(path, key string, value any, oem bool) {
	e := result.Entry{
		Path:   joinPath(path, key),
		Value:  result.DisplayValue(value, true),
		Type:   "action",
		Exists: true,
	}
	v := passing()

	if oem && !p.v.oemCheck {
		e.Outcome = result.OutcomeSkip
		e.Message = "OEM checks are disabled"
		p.add(e)
		return
	}

	name := strings.TrimPrefix(key, "#")
	def, err := p.v.cat.Action(name)
	if err != nil {
		var missing *catalog.MissingSchemaError
		if errors.As(err, &missing) && strings.HasPrefix(missing.Reason, "no schema family") {
			v.warn(result.ClassSchemaError, "no schema declares %s", name)
		} else {
			v.fail(result.ClassActionError, "%s is not an action of %s", catalog.TypeName(name), catalog.NamespaceOf(name))
		}
		def = nil
	}

	if !oem {
		p.checkActionScope(&v, def, name)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		v.fail(result.ClassActionError, "%s must be an object, got %s", key, jsonKind(value))
		p.add(v.entry(e))
		return
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch {
		case actionKeys[k]:
		case isAllowable(k):
			p.checkAllowable(&v, def, k, obj[k])
		default:
			v.fail(result.ClassActionError, "%s is not allowed in action %s", k, name)
		}
	}

	if title, has := obj["title"]; has {
		if _, ok := title.(string); !ok {
			v.fail(result.ClassTypeMismatch, "title of %s must be a string, got %s", name, jsonKind(title))
		}
	}

	switch target, has := obj["target"]; {
	case !has:
		v.fail(result.ClassActionError, "action %s has no target", name)
	default:
		uri, ok := target.(string)
		if !ok {
			v.fail(result.ClassTypeMismatch, "target of %s must be a string, got %s", name, jsonKind(target))
			break
		}
		segment := "/Actions/" + name
		if oem {
			segment = "/Actions/Oem/" + name
		}
		want := strings.TrimSuffix(p.owner, "/") + segment
		switch {
		case p.owner == "" || uri == want:
		case uri == want+"/":
			v.warn(result.ClassActionError, "target %s has a trailing slash", uri)
		default:
			v.fail(result.ClassActionError, "target %s should be %s", uri, want)
		}
		p.link(Link{URI: uri, Name: e.Path + ".target", Kind: LinkActionTarget})
	}

	if info, has := obj["@Redfish.ActionInfo"]; has {
		uri, ok := info.(string)
		if !ok {
			v.fail(result.ClassActionError, "@Redfish.ActionInfo of %s must be a string, got %s", name, jsonKind(info))
		} else {
			p.link(Link{
				URI:          uri,
				Name:         e.Path + ".@Redfish.ActionInfo",
				Type:         "ActionInfo.ActionInfo",
				Kind:         LinkActionInfo,
				InAnnotation: true,
			})
		}
	}

	p.add(v.entry(e))
}

// checkActionScope rejects standard actions bound to another schema family
// and actions newer than the resource revision.
func (p *pass) checkActionScope(v *verdict, def *catalog.TypeDef, name string) {
	if p.resourceNamespace == "" {
		return
	}
	base := catalog.BaseNamespace(p.resourceNamespace)
	if ns := catalog.BaseNamespace(catalog.NamespaceOf(name)); ns != base {
		v.fail(result.ClassActionError, "%s is not allowed in a %s resource", name, base)
		return
	}
	if def == nil {
		return
	}
	life := def.Lifecycle
	if ver, ok := catalog.ParseVersion(p.resourceNamespace); ok && !life.VersionAdded.IsZero() && life.VersionAdded.Compare(ver) > 0 {
		v.fail(result.ClassActionError, "%s requires resource version %s or higher", name, life.VersionAdded)
	}
	if life.Deprecated {
		msg := life.DeprecatedMessage
		if msg == "" {
			msg = "no replacement given"
		}
		v.warn(result.ClassDeprecatedProperty, "%s is deprecated: %s", name, msg)
	}
}

func isAllowable(key string) bool {
	for _, a := range allowableAnnotations {
		if strings.Contains(key, a) {
			return true
		}
	}
	return false
}

// checkAllowable checks Parameter@Redfish.AllowableValues style keys.
func (p *pass) checkAllowable(v *verdict, def *catalog.TypeDef, key string, value any) {
	param, annotation, _ := strings.Cut(key, "@")
	if annotation == "Redfish.AllowablePattern" {
		if _, ok := value.(string); !ok {
			v.fail(result.ClassTypeMismatch, "%s must be a string, got %s", key, jsonKind(value))
		}
	} else if _, ok := value.([]any); !ok {
		v.fail(result.ClassTypeMismatch, "%s must be an array, got %s", key, jsonKind(value))
	}
	if def != nil && param != "" && def.Property(param) == nil {
		v.warn(result.ClassActionError, "%s is not a parameter of %s", param, def.QualifiedName())
	}
}
