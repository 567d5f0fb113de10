/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"sort"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

// annotationNamespaces are the namespaces a payload annotation may use.
var annotationNamespaces = map[string]bool{
	"odata":      true,
	"Redfish":    true,
	"Privileges": true,
	"Message":    true,
}

// annotationLinkTerms hold links whose targets are not regular resources.
var annotationLinkTerms = map[string]bool{
	"Settings":               true,
	"ActionInfo":             true,
	"CollectionCapabilities": true,
}

// object validates the members of one JSON object against tree. Declared
// properties are visited in schema order, the remaining keys sorted.
func (p *pass) object(path string, payload map[string]any, tree *catalog.TypeTree, excerpt Excerpt) {
	p.odata(path, payload, tree)

	seen := make(map[string]bool, len(payload))
	for _, prop := range tree.Properties() {
		if p.cancelled() {
			return
		}
		value, exists := payload[prop.Name]
		seen[prop.Name] = exists
		p.declared(Instance{
			Path:    joinPath(path, prop.Name),
			Name:    prop.Name,
			Value:   value,
			Exists:  exists,
			Excerpt: excerpt,
			Prop:    prop,
		}, tree, payload)
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if p.cancelled() {
			return
		}
		switch {
		case strings.Contains(k, "@odata."):
			// checked by odata
		case strings.Contains(k, "@"):
			p.annotation(path, k, payload[k], payload)
		case strings.HasPrefix(k, "#") && isActionsPath(path):
			p.action(path, k, payload[k], false)
		case strings.HasPrefix(k, "#") && isOemActionsPath(path):
			p.action(path, k, payload[k], true)
		default:
			p.extra(path, k, payload[k], tree, payload)
		}
	}
}

func isActionsPath(path string) bool {
	return path == "Actions" || strings.HasSuffix(path, ".Actions")
}

func isOemActionsPath(path string) bool {
	return path == "Actions.Oem" || strings.HasSuffix(path, ".Actions.Oem")
}

// declared validates one schema property, present or not.
func (p *pass) declared(inst Instance, tree *catalog.TypeTree, siblings map[string]any) {
	prop := inst.Prop
	e := result.Entry{
		Path:   inst.Path,
		Value:  result.DisplayValue(inst.Value, inst.Exists),
		Exists: inst.Exists,
	}

	if !p.v.oemCheck && prop.Name == "Oem" {
		e.Outcome = result.OutcomeSkip
		e.Message = "OEM checks are disabled"
		p.add(e)
		return
	}

	resolved, err := p.v.cat.Resolve(prop.Type, p.ceilingFor(prop.Type, tree))
	if err == nil {
		e.Type = displayType(resolved)
	}

	if !inst.Exists {
		switch {
		case inst.Excerpt.Copy:
			e.Outcome = result.OutcomeSkip
		case p.capabilitiesTarget:
			e.Outcome = result.OutcomeSkip
			if prop.Required {
				e.Message = "required properties may be omitted in a collection capabilities resource"
			}
		case prop.Required && !prop.Lifecycle.Deprecated && prop.Excerpt != catalog.ExcerptExclusive:
			e.Outcome = result.OutcomeFail
			e.Message = result.Messagef(result.ClassRequiredMissing, "%s is required", prop.Name)
		default:
			e.Outcome = result.OutcomeSkip
		}
		p.add(e)
		return
	}

	if f := excerptViolation(inst); f != nil {
		v := passing()
		v.apply(f)
		p.add(v.entry(e))
		return
	}

	if err != nil {
		e.Outcome = result.OutcomeFail
		e.Message = result.Messagef(result.ClassSchemaError, "cannot resolve %s: %v", prop.Type, err)
		p.add(e)
		return
	}
	inst.Type = resolved
	p.value(inst, siblings)
}

// excerptViolation applies the excerpt tagging rules to a present property.
func excerptViolation(inst Instance) *finding {
	prop := inst.Prop
	if !inst.Excerpt.Copy {
		if prop.Excerpt == catalog.ExcerptExclusive {
			return failf(result.ClassExcerptError, "%s may only appear in an excerpt copy", prop.Name)
		}
		return nil
	}
	if prop.Excerpt == catalog.ExcerptNeutral {
		return failf(result.ClassExcerptError, "%s is not a valid excerpt property", prop.Name)
	}
	if !inst.Excerpt.permits(prop.ExcerptTags) {
		return failf(result.ClassExcerptError, "%s has excerpt tags %s, the copy allows %s",
			prop.Name, strings.Join(prop.ExcerptTags, ","), strings.Join(inst.Excerpt.Tags, ","))
	}
	return nil
}

// annotation validates a payload annotation such as @Redfish.Settings or
// ResetType@Redfish.AllowableValues against its term.
func (p *pass) annotation(path, key string, value any, siblings map[string]any) {
	apath := joinPath(path, key)
	term := key[strings.Index(key, "@")+1:]
	ns, _, _ := strings.Cut(term, ".")

	e := result.Entry{Path: apath, Value: result.DisplayValue(value, true), Exists: true, Outcome: result.OutcomePass}
	if !annotationNamespaces[ns] {
		e.Outcome = result.OutcomeWarn
		e.Message = result.Messagef(result.ClassPayloadError, "annotation namespace %s is not a Redfish namespace", ns)
		p.add(e)
		return
	}

	def, err := p.v.cat.Term(term)
	if err != nil || len(def.Properties) == 0 {
		e.Outcome = result.OutcomeFail
		e.Message = result.Messagef(result.ClassSchemaError, "unable to locate the definition of annotation %s", term)
		p.add(e)
		return
	}

	prop := *def.Properties[0]
	prop.Name = key
	resolved, err := p.v.cat.Resolve(prop.Type, p.ceiling)
	if err != nil {
		e.Outcome = result.OutcomeFail
		e.Message = result.Messagef(result.ClassSchemaError, "cannot resolve %s: %v", prop.Type, err)
		p.add(e)
		return
	}

	name := catalog.TypeName(term)
	if !annotationLinkTerms[name] {
		p.value(Instance{Path: apath, Name: key, Value: value, Exists: true, Prop: &prop, Type: resolved}, siblings)
		return
	}

	saved, savedCapabilities := p.inAnnotation, p.inCapabilities
	p.inAnnotation = true
	p.inCapabilities = savedCapabilities || name == "CollectionCapabilities"
	p.value(Instance{Path: apath, Name: key, Value: value, Exists: true, Prop: &prop, Type: resolved}, siblings)
	if s, ok := value.(string); ok && name == "ActionInfo" && key == "@Redfish.ActionInfo" {
		p.link(Link{URI: s, Name: apath, Type: "ActionInfo.ActionInfo", Kind: LinkActionInfo})
	}
	p.inAnnotation, p.inCapabilities = saved, savedCapabilities
}

// extra handles keys the type does not declare: dynamic properties, OEM
// content, additional properties and unknown keys.
func (p *pass) extra(path, key string, value any, tree *catalog.TypeTree, siblings map[string]any) {
	kpath := joinPath(path, key)

	if dp := tree.DynamicPattern(); dp != nil {
		re, err := p.v.pattern(dp.Pattern)
		if err == nil && re.MatchString(key) {
			prop := &catalog.PropertyDef{
				Name:     key,
				Type:     dp.Type,
				Owner:    tree.Leaf().QualifiedName(),
				Nullable: true,
			}
			resolved, rerr := p.v.cat.Resolve(dp.Type, p.ceilingFor(dp.Type, tree))
			if rerr != nil {
				p.add(result.Entry{
					Path: kpath, Value: result.DisplayValue(value, true), Exists: true, Outcome: result.OutcomeFail,
					Message: result.Messagef(result.ClassSchemaError, "cannot resolve dynamic property type %s: %v", dp.Type, rerr),
				})
				return
			}
			p.value(Instance{Path: kpath, Name: key, Value: value, Exists: true, Prop: prop, Type: resolved}, siblings)
			return
		}
	}

	if tree.ContainsName("Resource", "Oem") || tree.ContainsName("Resource", "OemObject") {
		p.oemValue(kpath, value)
		return
	}

	e := result.Entry{Path: kpath, Value: result.DisplayValue(value, true), Exists: true}
	var suggestion string
	if absent := absentProperties(tree, siblings); len(absent) > 0 {
		suggestion = closestName(key, absent)
	}
	hint := ""
	if suggestion != "" {
		hint = ", did you mean " + suggestion + "?"
	}

	if tree.AdditionalProperties() || allowsAdditional(tree) {
		e.Outcome = result.OutcomeWarn
		e.Message = result.Messagef(result.ClassAdditionalProperty, "%s is not defined in %s%s", key, tree.Leaf().QualifiedName(), hint)
	} else {
		e.Outcome = result.OutcomeFail
		e.Message = result.Messagef(result.ClassUnknownProperty, "%s is not defined in %s%s", key, tree.Leaf().QualifiedName(), hint)
	}
	p.add(e)

	if suggestion != "" {
		p.add(result.Entry{
			Path:    joinPath(path, suggestion),
			Value:   result.DisplayNotPresent,
			Outcome: result.OutcomeWarn,
			Message: result.Messagef(result.ClassUnknownProperty, "%s is absent but the payload has the similar key %s", suggestion, key),
		})
	}
}

// allowsAdditional lists the types that accept arbitrary members even
// though their schemas do not say so.
func allowsAdditional(tree *catalog.TypeTree) bool {
	leaf := tree.Leaf()
	switch {
	case catalog.BaseNamespace(leaf.Namespace) == "Bios" && leaf.Name == "Attributes":
		return true
	case leaf.QualifiedName() == "MessageRegistry.v1_0_0.MessageProperty":
		return true
	}
	return false
}

func absentProperties(tree *catalog.TypeTree, payload map[string]any) []string {
	var out []string
	for _, prop := range tree.Properties() {
		if _, ok := payload[prop.Name]; !ok {
			out = append(out, prop.Name)
		}
	}
	return out
}

// oemValue validates vendor content below Oem. Objects that name their type
// are validated as that type; anything else passes.
func (p *pass) oemValue(kpath string, value any) {
	e := result.Entry{Path: kpath, Value: result.DisplayValue(value, true), Type: "OEM", Exists: true, Outcome: result.OutcomePass}
	if !p.v.oemCheck {
		e.Outcome = result.OutcomeSkip
		e.Message = "OEM checks are disabled"
		p.add(e)
		return
	}
	obj, ok := value.(map[string]any)
	if !ok {
		p.add(e)
		return
	}

	var tree *catalog.TypeTree
	if tag, ok := obj["@odata.type"].(string); ok && typeTag.MatchString(tag) {
		if def, err := p.v.cat.Lookup(tag); err == nil {
			tree = p.tree(def)
			e.Type = def.QualifiedName()
		}
	}
	if tree == nil {
		def, err := p.v.cat.Lookup("Resource.OemObject")
		if err != nil {
			p.add(e)
			return
		}
		tree = p.tree(def)
	}
	p.add(e)
	p.object(kpath, obj, tree, Excerpt{})
}
