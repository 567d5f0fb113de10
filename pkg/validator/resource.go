/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

var (
	uriTemplate    = regexp.MustCompile(`\{[A-Za-z0-9]*Id\}`)
	templatedFinal = regexp.MustCompile(`^\{[A-Za-z0-9]*Id\}$`)
)

// uriIDSegment matches one expanded template segment. It never spans a '/'.
const uriIDSegment = `([A-Za-z0-9.!#$&'()*+,;=?@:\[\]_~-])+`

// Resource-level entry paths.
const (
	pathAllow     = result.ResourcePath + ".Allow"
	pathMockup    = result.ResourcePath + ".Mockup"
	pathCopyright = "@Redfish.Copyright"
	pathOdataID   = "@odata.id"
)

// mockupHeader marks responses served from a mockup directory.
const mockupHeader = "X-Redfish-Mockup"

// registryTypes may be served without @odata.id.
var registryTypes = [][2]string{
	{"MessageRegistry", "MessageRegistry"},
	{"AttributeRegistry", "AttributeRegistry"},
	{"PrivilegeRegistry", "PrivilegeRegistry"},
}

type uriPattern struct {
	raw            string
	re             *regexp.Regexp
	templatedFinal bool
}

// compileURIPattern turns /redfish/v1/Chassis/{ChassisId} into a regexp
// that matches any identifier in place of the template.
func compileURIPattern(raw string) (*uriPattern, error) {
	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range uriTemplate.FindAllStringIndex(raw, -1) {
		b.WriteString(regexp.QuoteMeta(raw[last:loc[0]]))
		b.WriteString(uriIDSegment)
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(raw[last:]))
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	segments := strings.Split(raw, "/")
	return &uriPattern{
		raw:            raw,
		re:             re,
		templatedFinal: templatedFinal.MatchString(segments[len(segments)-1]),
	}, nil
}

func (v *Validator) uriPattern(raw string) *uriPattern {
	if cached, ok := v.uriPatterns.Load(raw); ok {
		return cached.(*uriPattern)
	}
	up, err := compileURIPattern(raw)
	if err != nil {
		up = nil
	}
	v.uriPatterns.Store(raw, up)
	return up
}

func (v *Validator) matchURI(patterns []string, uri string) *uriPattern {
	for _, raw := range patterns {
		if up := v.uriPattern(raw); up != nil && up.re.MatchString(uri) {
			return up
		}
	}
	return nil
}

// checkResource runs the checks that apply only to a resource root.
func (p *pass) checkResource(tree *catalog.TypeTree, res Resource) {
	payload := res.Payload
	raw, present := payload["@odata.id"]
	if !present && !isRegistry(tree) {
		p.add(result.Entry{
			Path:    pathOdataID,
			Value:   result.DisplayNotPresent,
			Outcome: result.OutcomeFail,
			Message: result.Messagef(result.ClassOdataError, "resource has no @odata.id"),
		})
	}
	if id, ok := raw.(string); ok {
		p.owner, _, _ = strings.Cut(id, "#")
		if p.uriChecks {
			p.checkURI(tree, id, payload)
		}
	}

	// Mockups carry the copyright of the files they were captured in.
	mockup := res.Header != nil && res.Header.Get(mockupHeader) != ""
	if _, ok := payload["@Redfish.Copyright"]; ok && !mockup && !tree.ContainsName("MessageRegistry", "MessageRegistry") {
		p.add(result.Entry{
			Path:    pathCopyright,
			Value:   result.DisplayValue(payload["@Redfish.Copyright"], true),
			Exists:  true,
			Outcome: result.OutcomeFail,
			Message: result.Messagef(result.ClassPayloadError, "@Redfish.Copyright is only allowed in message registries"),
		})
	}

	p.checkAllow(tree, res.Header, payload)

	if mockup {
		p.add(result.Entry{
			Path:    pathMockup,
			Value:   result.DisplayResourceLevel,
			Exists:  true,
			Outcome: result.OutcomeWarn,
			Message: result.Messagef(result.ClassPayloadError, "payload was served from a mockup, not the live service"),
		})
	}
}

func isRegistry(tree *catalog.TypeTree) bool {
	for _, r := range registryTypes {
		if tree.ContainsName(r[0], r[1]) {
			return true
		}
	}
	return false
}

// checkURI checks @odata.id against Redfish.Uris and the Id property.
func (p *pass) checkURI(tree *catalog.TypeTree, id string, payload map[string]any) {
	e := result.Entry{Path: pathOdataID, Value: id, Type: "odata annotation", Exists: true}
	v := passing()

	_, _, hasFragment := strings.Cut(id, "#")
	referenceable := tree.ContainsName("Resource", "ReferenceableMember")
	switch {
	case hasFragment && referenceable:
		p.checkFragment(pathOdataID, id, payload)
	case hasFragment && tree.ContainsName("Resource", "Resource"):
		v.warn(result.ClassUriMismatch, "%s has a fragment but %s is not a referenceable member", id, tree.Leaf().QualifiedName())
	case !hasFragment && referenceable:
		v.warn(result.ClassUriMismatch, "%s is a referenceable member and should be addressed with a fragment", id)
	}

	uris := tree.URIs()
	if len(uris) > 0 {
		uri := id
		if !hasFragment {
			uri = strings.TrimSuffix(uri, "/")
		}
		matched := p.v.matchURI(uris, uri)
		switch {
		case matched != nil:
			if matched.templatedFinal {
				if got, ok := payload["Id"].(string); ok {
					segments := strings.Split(uri, "/")
					if want := segments[len(segments)-1]; got != want {
						v.fail(result.ClassUriMismatch, "Id %q does not match the last URI segment %q", got, want)
					}
				}
			}
		case p.v.matchURI(tree.DeprecatedURIs(), uri) != nil:
			v.warn(result.ClassUriMismatch, "%s matches a deprecated URI of %s", uri, tree.Leaf().QualifiedName())
		case strings.Contains(uri, "/Oem/"):
			v.warn(result.ClassUriMismatch, "%s does not match the URIs of %s: %s", uri, tree.Leaf().QualifiedName(), strings.Join(uris, ", "))
		default:
			v.fail(result.ClassUriMismatch, "%s does not match the URIs of %s: %s", uri, tree.Leaf().QualifiedName(), strings.Join(uris, ", "))
		}
	}
	p.add(v.entry(e))
}

// checkFragment checks a referenceable member addressed as uri#/pointer:
// its MemberId must name one of the pointer segments and, when the member
// lives in the current payload, the pointer must lead back to it.
func (p *pass) checkFragment(path, id string, obj map[string]any) {
	e := result.Entry{Path: path, Value: id, Type: "odata annotation", Exists: true}
	v := passing()

	base, fragment, _ := strings.Cut(id, "#")
	if memberID, ok := obj["MemberId"].(string); ok {
		found := false
		for _, seg := range strings.Split(strings.Trim(fragment, "/"), "/") {
			if seg == memberID {
				found = true
				break
			}
		}
		if !found {
			v.fail(result.ClassUriMismatch, "MemberId %q does not appear in fragment %q", memberID, fragment)
		}
	}

	owner := strings.TrimSuffix(p.owner, "/")
	if owner != "" && strings.TrimSuffix(base, "/") == owner {
		target, ok := ResolvePointer(p.rootPayload, fragment)
		if !ok || !reflect.DeepEqual(target, any(obj)) {
			v.fail(result.ClassUriMismatch, "fragment %q does not lead to this member", fragment)
		}
	}
	p.add(v.entry(e))
}

// checkAllow compares the Allow response header with the type's
// capabilities. Payloads with Oem content may be updatable through it, so
// PATCH and PUT are not checked for them.
func (p *pass) checkAllow(tree *catalog.TypeTree, header http.Header, payload map[string]any) {
	if header == nil {
		return
	}
	var methods []string
	for _, line := range header.Values("Allow") {
		for _, m := range strings.Split(line, ",") {
			if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
				methods = append(methods, m)
			}
		}
	}
	if len(methods) == 0 {
		return
	}

	caps := tree.Capabilities()
	v := passing()
	for _, m := range methods {
		switch m {
		case http.MethodPost:
			if !caps.Insertable {
				v.fail(result.ClassAllowHeader, "POST is allowed but %s is not insertable", tree.Leaf().QualifiedName())
			}
		case http.MethodDelete:
			if !caps.Deletable {
				v.fail(result.ClassAllowHeader, "DELETE is allowed but %s is not deletable", tree.Leaf().QualifiedName())
			}
		case http.MethodPatch, http.MethodPut:
			if _, oem := payload["Oem"]; !oem && !caps.Updatable {
				v.warn(result.ClassAllowHeader, "%s is allowed but %s is not updatable", m, tree.Leaf().QualifiedName())
			}
		}
	}
	p.add(v.entry(result.Entry{
		Path:   pathAllow,
		Value:  strings.Join(methods, ", "),
		Type:   "header",
		Exists: true,
	}))
}

// ResolvePointer follows a JSON pointer fragment (/Fans/0) through doc.
// Numeric segments index arrays.
func ResolvePointer(doc any, fragment string) (any, bool) {
	cur := doc
	for _, seg := range strings.Split(strings.Trim(fragment, "/"), "/") {
		if seg == "" {
			continue
		}
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
