/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

// nullCollectionAllowed names collection properties that services report as
// null when unset.
var nullCollectionAllowed = map[string]bool{
	"EventDestination.v1_0_0.HttpHeaderProperty": true,
}

// genericTargets accept a reference to any resource.
var genericTargets = map[string]bool{
	"Resource.ItemOrCollection":   true,
	"Resource.ResourceCollection": true,
	"Resource.Item":               true,
	"Resource.Resource":           true,
}

// value validates a present property value, collection or single.
func (p *pass) value(inst Instance, siblings map[string]any) {
	prop := inst.Prop
	e := result.Entry{
		Path:   inst.Path,
		Value:  result.DisplayValue(inst.Value, true),
		Type:   displayType(inst.Type),
		Exists: true,
	}
	v := passing()
	arr, isArray := inst.Value.([]any)

	switch {
	case prop.Collection && inst.Value == nil:
		if !nullCollectionAllowed[catalog.StripCollection(prop.Type)] {
			v.fail(result.ClassNullNotAllowed, "%s is a collection and may not be null, use an empty array", prop.Name)
		}
		p.record(inst, v, e)
		return
	case prop.Collection && !isArray:
		v.fail(result.ClassTypeMismatch, "%s is a collection, got %s", prop.Name, jsonKind(inst.Value))
		p.record(inst, v, e)
		return
	case !prop.Collection && isArray:
		v.fail(result.ClassTypeMismatch, "%s is not a collection, got an array", prop.Name)
		p.record(inst, v, e)
		return
	}

	if !prop.Collection {
		p.element(inst, siblings)
		return
	}

	e.Value = fmt.Sprintf("%s (size: %d)", result.DisplayArray, len(arr))
	p.record(inst, v, e)

	limit, limited := p.collectionLimit(inst)
	for i, el := range arr {
		if p.cancelled() {
			return
		}
		child := inst.element(i, el)
		if limited && i >= limit {
			p.add(result.Entry{
				Path:    child.Path,
				Value:   result.DisplayValue(el, true),
				Type:    displayType(inst.Type),
				Exists:  true,
				Outcome: result.OutcomeSkip,
				Message: fmt.Sprintf("not tested, collection limit %d reached", limit),
			})
			continue
		}
		p.element(child, siblings)
	}
}

// collectionLimit applies to the Members of a resource collection whose
// member type is limited.
func (p *pass) collectionLimit(inst Instance) (int, bool) {
	if inst.Path != "Members" || inst.Type.Kind != catalog.ResolvedEntity || len(p.v.collectionLimits) == 0 {
		return 0, false
	}
	member, ok := strings.CutSuffix(catalog.BaseNamespace(p.resourceNamespace), "Collection")
	if !ok {
		return 0, false
	}
	limit, ok := p.v.collectionLimits[member]
	return limit, ok
}

// record adds the entry for inst, turning a pass into a deprecation warning
// for present deprecated properties.
func (p *pass) record(inst Instance, v verdict, e result.Entry) {
	prop := inst.Prop
	if !inst.InCollection && prop.Lifecycle.Deprecated && !prop.Required {
		msg := prop.Lifecycle.DeprecatedMessage
		if msg == "" {
			msg = "no replacement given"
		}
		if !prop.Lifecycle.DeprecatedVersion.IsZero() {
			v.warn(result.ClassDeprecatedProperty, "%s is deprecated since %s: %s", prop.Name, prop.Lifecycle.DeprecatedVersion, msg)
		} else {
			v.warn(result.ClassDeprecatedProperty, "%s is deprecated: %s", prop.Name, msg)
		}
	}
	p.add(v.entry(e))
}

// element validates one value by resolved kind.
func (p *pass) element(inst Instance, siblings map[string]any) {
	switch inst.Type.Kind {
	case catalog.ResolvedComplex:
		p.complexValue(inst)
	case catalog.ResolvedEntity:
		p.entityValue(inst)
	default:
		p.scalarValue(inst, siblings)
	}
}

func (p *pass) baseEntry(inst Instance) result.Entry {
	t := displayType(inst.Type)
	if inst.InCollection {
		t = strings.TrimPrefix(t, "array of: ")
	}
	return result.Entry{
		Path:   inst.Path,
		Value:  result.DisplayValue(inst.Value, true),
		Type:   t,
		Exists: true,
	}
}

func (p *pass) complexValue(inst Instance) {
	e := p.baseEntry(inst)
	v := passing()

	obj, ok := inst.Value.(map[string]any)
	switch {
	case inst.Value == nil:
		if !inst.Prop.Nullable {
			v.fail(result.ClassNullNotAllowed, "%s may not be null", inst.Name)
		}
		p.record(inst, v, e)
		return
	case !ok:
		v.fail(result.ClassTypeMismatch, "%s must be an object, got %s", inst.Name, jsonKind(inst.Value))
		p.record(inst, v, e)
		return
	}

	tree, f := p.castComplex(inst.Type.Tree, obj, underOem(inst.Path))
	if f != nil {
		v.apply(f)
		if v.failed() {
			p.record(inst, v, e)
			return
		}
	}
	if !p.v.oemCheck && tree.ContainsName("Resource", "OemObject") {
		e.Outcome = result.OutcomeSkip
		e.Message = "OEM checks are disabled"
		p.add(e)
		return
	}
	p.record(inst, v, e)
	p.object(inst.Path, obj, tree, Excerpt{})
}

// castComplex uses the object's own @odata.type when it names the declared
// type or a type derived from it. OemObject values take any type. A type
// outside the declared hierarchy is a failure, or a warning below Oem, and
// the object keeps its declared type.
func (p *pass) castComplex(declared *catalog.TypeTree, obj map[string]any, oem bool) (*catalog.TypeTree, *finding) {
	tag, ok := obj["@odata.type"].(string)
	if !ok || !typeTag.MatchString(tag) {
		return declared, nil
	}
	def, err := p.v.cat.Lookup(tag)
	if err != nil {
		return declared, nil
	}
	leaf := declared.Leaf()
	cast := p.tree(def)
	if declared.ContainsName("Resource", "OemObject") || cast.ContainsName(catalog.BaseNamespace(leaf.Namespace), leaf.Name) {
		return cast, nil
	}
	if oem {
		return declared, warnf(result.ClassTypeMismatch, "@odata.type %s is not valid for %s", tag, leaf.QualifiedName())
	}
	return declared, failf(result.ClassTypeMismatch, "@odata.type %s is not valid for %s", tag, leaf.QualifiedName())
}

// underOem reports whether a property path descends through an Oem object.
func underOem(path string) bool {
	for _, seg := range strings.Split(path, ".") {
		if name, _, _ := strings.Cut(seg, "["); name == "Oem" {
			return true
		}
	}
	return false
}

func (p *pass) entityValue(inst Instance) {
	e := p.baseEntry(inst)
	v := passing()
	prop := inst.Prop

	if inst.Value == nil {
		if !prop.Nullable {
			v.fail(result.ClassNullNotAllowed, "%s may not be null", inst.Name)
		}
		p.record(inst, v, e)
		return
	}
	obj, ok := inst.Value.(map[string]any)
	if !ok {
		v.fail(result.ClassTypeMismatch, "%s must be a reference object, got %s", inst.Name, jsonKind(inst.Value))
		p.record(inst, v, e)
		return
	}

	if prop.Excerpt == catalog.ExcerptContains {
		p.record(inst, v, e)
		p.inline(inst, obj, Excerpt{Copy: true, Tags: prop.ExcerptTags})
		return
	}
	if prop.AutoExpand {
		p.record(inst, v, e)
		p.inline(inst, obj, Excerpt{})
		return
	}

	raw, has := obj["@odata.id"]
	if !has {
		if !inst.Excerpt.Copy {
			v.fail(result.ClassTypeMismatch, "reference object has no @odata.id")
		}
		p.record(inst, v, e)
		return
	}
	uri, ok := raw.(string)
	if !ok {
		v.fail(result.ClassTypeMismatch, "@odata.id must be a string, got %s", jsonKind(raw))
		p.record(inst, v, e)
		return
	}
	if extra := extraKeys(obj); len(extra) > 0 {
		v.fail(result.ClassTypeMismatch, "reference object may only contain @odata.id, found %s", strings.Join(extra, ", "))
	}
	if uri != "/redfish/v1/" && strings.HasSuffix(uri, "/") {
		v.warn(result.ClassPayloadError, "link %s has a trailing slash", uri)
	}

	if p.v.oemCheck || !strings.Contains(uri, "/Oem/") {
		p.link(Link{
			URI:      uri,
			Name:     inst.Path,
			Type:     inst.elementType(),
			Kind:     LinkNavigation,
			Deferred: isDeferred(prop.Owner, prop.Name),
		})
	}
	v.apply(p.checkReference(inst, uri))
	p.record(inst, v, e)
}

func extraKeys(obj map[string]any) []string {
	var out []string
	for k := range obj {
		if k != "@odata.id" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// checkReference fetches the referenced resource and checks that its type
// derives from the declared navigation type.
func (p *pass) checkReference(inst Instance, uri string) *finding {
	expected := inst.elementType()
	if p.v.resolver == nil || genericTargets[expected] {
		return nil
	}
	payload, status, err := p.v.resolver.Resolve(p.ctx, uri)
	if err != nil || payload == nil {
		if inst.Name == "OriginOfCondition" {
			return nil
		}
		if err != nil {
			return failf(result.ClassPayloadError, "GET %s failed: %v", uri, err)
		}
		return failf(result.ClassPayloadError, "GET %s returned HTTP %d", uri, status)
	}

	tag, _ := payload["@odata.type"].(string)
	if tag == "" {
		return failf(result.ClassTypeMismatch, "%s has no @odata.type, expected %s", uri, expected)
	}
	tq := strings.TrimPrefix(tag, "#")
	def, err := p.v.cat.ResolveType(catalog.NamespaceOf(tq), catalog.TypeName(tq), catalog.ResolveOptions{Ceiling: catalog.NamespaceOf(tq)})
	if err != nil {
		return failf(result.ClassSchemaError, "%s reports type %s which is not in the schema set", uri, tag)
	}
	if !p.tree(def).ContainsName(catalog.BaseNamespace(expected), catalog.TypeName(expected)) {
		return failf(result.ClassTypeMismatch, "%s is a %s, expected %s", uri, tq, expected)
	}
	return nil
}

// inline validates an auto-expanded or excerpt copy of a resource in place.
func (p *pass) inline(inst Instance, obj map[string]any, excerpt Excerpt) {
	savedCeiling := p.ceiling
	defer func() { p.ceiling = savedCeiling }()

	tree, ok := p.effectiveType(inst.Path, obj, inst.elementType(), "")
	if !ok {
		p.add(result.Entry{
			Path:    inst.Path,
			Value:   result.DisplayObject,
			Exists:  true,
			Outcome: result.OutcomeFail,
			Message: result.Messagef(result.ClassSchemaError, "no schema found for %s", describeType(obj, inst.elementType())),
		})
		return
	}
	p.ceiling = tree.Leaf().Namespace

	if id, ok := obj["@odata.id"].(string); ok && strings.Contains(id, "#") &&
		tree.ContainsName("Resource", "ReferenceableMember") {
		p.checkFragment(joinPath(inst.Path, "@odata.id"), id, obj)
	}
	p.object(inst.Path, obj, tree, excerpt)
}

// scalarValue validates primitives, enums and type definitions.
func (p *pass) scalarValue(inst Instance, siblings map[string]any) {
	e := p.baseEntry(inst)
	v := passing()
	prop, res := inst.Prop, inst.Type

	writeOnly := prop.Permission == catalog.PermissionWrite || prop.Permission == catalog.PermissionNone
	if inst.Value == nil {
		if !prop.Nullable && !writeOnly {
			v.fail(result.ClassNullNotAllowed, "%s may not be null", inst.Name)
		}
		p.record(inst, v, e)
		return
	}

	if writeOnly {
		v.fail(result.ClassPermissionError, "%s is %s and must read as null", inst.Name, prop.Permission)
	}
	if s, ok := inst.Value.(string); ok {
		if s == "" && prop.Permission == catalog.PermissionRead {
			v.warn(result.ClassPayloadError, "empty string on read-only property %s", inst.Name)
		}
		if strings.EqualFold(s, "null") {
			v.warn(result.ClassPayloadError, "string %q where JSON null is probably meant", s)
		}
	}

	switch res.Kind {
	case catalog.ResolvedEnum:
		v.apply(p.checkEnum(res.Def, res.Members, inst.Value))
	case catalog.ResolvedAlias:
		if len(res.Members) > 0 {
			v.apply(p.checkEnum(res.Def, res.Members, inst.Value))
		} else {
			v.apply(p.checkPrimitive(res.Primitive, inst.Value, p.facets(inst, mergeFacets(prop.Facets, res.Facets), siblings)))
		}
	default:
		v.apply(p.checkPrimitive(res.Primitive, inst.Value, p.facets(inst, prop.Facets, siblings)))
	}
	p.record(inst, v, e)
}

// facets adds the DurableName pattern chosen by the DurableNameFormat
// sibling.
func (p *pass) facets(inst Instance, f catalog.Facets, siblings map[string]any) catalog.Facets {
	if inst.Name != "DurableName" {
		return f
	}
	format, _ := siblings["DurableNameFormat"].(string)
	if pattern, ok := durableNamePatterns[format]; ok {
		f.Pattern = pattern
	}
	return f
}
