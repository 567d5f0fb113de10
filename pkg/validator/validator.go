/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
)

// URICheck selects when @odata.id is checked against Redfish.Uris.
type URICheck string

const (
	// URICheckAuto checks URIs on services reporting RedfishVersion 1.6.0
	// or later.
	URICheckAuto URICheck = "auto"
	// URICheckOn always checks URIs.
	URICheckOn URICheck = "on"
	// URICheckOff never checks URIs.
	URICheckOff URICheck = "off"
)

// ParseURICheck maps a config value to a URICheck. Unknown values are auto.
func ParseURICheck(s string) URICheck {
	switch URICheck(s) {
	case URICheckOn, URICheckOff:
		return URICheck(s)
	default:
		return URICheckAuto
	}
}

// uriCheckMinVersion is the first protocol version that mandates Redfish.Uris.
var uriCheckMinVersion = catalog.Version{Major: 1, Minor: 6, Errata: 0}

// ReferenceResolver fetches the payload a reference points at so its type
// can be compared with the navigation property's declared type.
type ReferenceResolver interface {
	Resolve(ctx context.Context, uri string) (map[string]any, int, error)
}

// Validator checks payloads against a catalog. It is safe for concurrent use.
type Validator struct {
	cat              *catalog.Catalog
	oemCheck         bool
	uriCheck         URICheck
	collectionLimits map[string]int
	resolver         ReferenceResolver

	patterns    sync.Map // pattern string -> *regexp.Regexp or error
	uriPatterns sync.Map // Redfish.Uris entry -> *uriPattern
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithOEMCheck enables validation of Oem properties and OEM actions.
func WithOEMCheck(enabled bool) Option {
	return func(v *Validator) {
		v.oemCheck = enabled
	}
}

// WithURICheck sets the URI check policy.
func WithURICheck(mode URICheck) Option {
	return func(v *Validator) {
		v.uriCheck = mode
	}
}

// WithCollectionLimits caps how many Members of a resource collection are
// checked, keyed by the member type name (LogEntry for
// LogEntryCollection). A crawler built on v drops next-page links of those
// collections with the same limits.
func WithCollectionLimits(limits map[string]int) Option {
	return func(v *Validator) {
		v.collectionLimits = limits
	}
}

// CollectionLimits returns the limits set with WithCollectionLimits.
func (v *Validator) CollectionLimits() map[string]int {
	return v.collectionLimits
}

// WithReferenceResolver enables type checks of referenced resources.
func WithReferenceResolver(r ReferenceResolver) Option {
	return func(v *Validator) {
		v.resolver = r
	}
}

// New creates a Validator over cat.
func New(cat *catalog.Catalog, opts ...Option) *Validator {
	v := &Validator{
		cat:      cat,
		oemCheck: true,
		uriCheck: URICheckAuto,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Catalog returns the catalog the validator was built with.
func (v *Validator) Catalog() *catalog.Catalog {
	return v.cat
}

// Resource is one fetched payload handed to ValidateResource.
type Resource struct {
	// URI is the URI the payload was fetched from, fragment included.
	URI string
	// Payload is the decoded JSON object.
	Payload map[string]any
	// Header carries the response headers (Allow, X-Redfish-Mockup).
	Header http.Header
	// ExpectedType is the declared type of the link that led here, used
	// when the payload has no @odata.type.
	ExpectedType string
	// Parent is the URI of the resource that linked here.
	Parent string
	// ServiceVersion is the service root RedfishVersion, if known.
	ServiceVersion string
	// InAnnotation marks resources reached through @Redfish.Settings,
	// @Redfish.ActionInfo or @Redfish.CollectionCapabilities. Their URIs
	// are not checked.
	InAnnotation bool
	// FromCollectionCapabilities marks resources reached through
	// @Redfish.CollectionCapabilities. Missing required properties are
	// skipped rather than failed.
	FromCollectionCapabilities bool
}

// ValidateResource validates a fetched resource and returns its result and
// the links it references.
func (v *Validator) ValidateResource(ctx context.Context, res Resource) (*result.Resource, []Link) {
	start := time.Now()
	out := result.NewResource(res.URI)
	out.Parent = res.Parent

	p := v.newPass(ctx, res.URI, res.Payload)
	p.inAnnotation = res.InAnnotation
	p.capabilitiesTarget = res.FromCollectionCapabilities
	p.owner, _, _ = strings.Cut(res.URI, "#")

	tree, ok := p.effectiveType("", res.Payload, res.ExpectedType, "")
	if !ok {
		out.Add(p.entries...)
		out.Fail(result.ClassSchemaError, "no schema found for %s", describeType(res.Payload, res.ExpectedType))
		out.Duration = time.Since(start)
		return out, nil
	}
	out.Type, _ = res.Payload["@odata.type"].(string)
	out.ResolvedType = tree.Leaf().QualifiedName()
	p.ceiling = tree.Leaf().Namespace
	p.resourceNamespace = tree.Leaf().Namespace

	if p.v.uriCheck == URICheckOn {
		p.uriChecks = true
	} else if p.v.uriCheck == URICheckAuto {
		p.uriChecks = serviceVersionAllowsURIs(res.ServiceVersion, tree, res.Payload)
	}
	if res.InAnnotation {
		p.uriChecks = false
	}

	if !v.oemCheck && tree.ContainsName("Resource", "OemObject") {
		out.Add(result.Entry{
			Path:    result.ResourcePath,
			Value:   result.DisplayResourceLevel,
			Exists:  true,
			Outcome: result.OutcomeSkip,
			Message: "OEM checks are disabled",
		})
		out.Duration = time.Since(start)
		return out, nil
	}

	p.checkResource(tree, res)
	p.object("", res.Payload, tree, Excerpt{})

	out.Add(p.entries...)
	out.Duration = time.Since(start)

	slog.Debug("resource validated",
		"uri", res.URI,
		"type", out.ResolvedType,
		"pass", out.Counts.Pass,
		"warn", out.Counts.Warn,
		"fail", out.Counts.Fail,
		"links", len(p.links))

	return out, p.links
}

// ValidateObject validates payload as declaredType. resourceType is the
// type of the enclosing resource and caps the revisions chosen for nested
// complex types. Entries are keyed under path.
func (v *Validator) ValidateObject(ctx context.Context, payload map[string]any, declaredType, resourceType string, excerpt Excerpt, path string) ([]result.Entry, []Link) {
	uri, _ := payload["@odata.id"].(string)
	p := v.newPass(ctx, uri, payload)
	p.owner, _, _ = strings.Cut(uri, "#")
	p.ceiling = catalog.NamespaceOf(resourceType)
	p.resourceNamespace = p.ceiling

	tree, ok := p.effectiveType(path, payload, declaredType, p.ceiling)
	if !ok {
		p.add(result.Entry{
			Path:    pathOr(path),
			Value:   result.DisplayObject,
			Exists:  true,
			Outcome: result.OutcomeFail,
			Message: result.Messagef(result.ClassSchemaError, "no schema found for %s", describeType(payload, declaredType)),
		})
		return p.entries, nil
	}
	p.object(path, payload, tree, excerpt)
	return p.entries, p.links
}

func serviceVersionAllowsURIs(version string, tree *catalog.TypeTree, payload map[string]any) bool {
	if version == "" && tree.ContainsName("ServiceRoot", "ServiceRoot") {
		version, _ = payload["RedfishVersion"].(string)
	}
	ver, ok := catalog.ParseVersion(version)
	if !ok {
		return false
	}
	return ver.Compare(uriCheckMinVersion) >= 0
}

// pass is the state of one ValidateResource or ValidateObject call.
type pass struct {
	v   *Validator
	ctx context.Context

	rootURI     string
	rootPayload map[string]any
	// owner is the URI of the resource actions belong to.
	owner string

	// ceiling caps revisions of nested types from the resource's family.
	ceiling           string
	resourceNamespace string
	uriChecks         bool
	inAnnotation      bool
	// inCapabilities is set while walking @Redfish.CollectionCapabilities.
	inCapabilities bool
	// capabilitiesTarget is set when the resource itself was reached
	// through @Redfish.CollectionCapabilities.
	capabilitiesTarget bool

	entries []result.Entry
	index   map[string]int
	links   []Link
}

func (v *Validator) newPass(ctx context.Context, uri string, payload map[string]any) *pass {
	return &pass{
		v:           v,
		ctx:         ctx,
		rootURI:     uri,
		rootPayload: payload,
		index:       make(map[string]int),
	}
}

// add records e, keeping the more severe entry when the path repeats.
func (p *pass) add(e result.Entry) {
	if e.Outcome == result.OutcomeFail {
		slog.Debug("property failed", "uri", p.rootURI, "path", e.Path, "message", e.Message)
	}
	if i, ok := p.index[e.Path]; ok {
		if e.Outcome.Worse(p.entries[i].Outcome) {
			p.entries[i] = e
		}
		return
	}
	p.index[e.Path] = len(p.entries)
	p.entries = append(p.entries, e)
}

func (p *pass) cancelled() bool {
	return p.ctx.Err() != nil
}

// pattern compiles a schema pattern for full matching. Patterns RE2 cannot
// compile are reported once by the caller and cached as failures.
func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	if cached, ok := v.patterns.Load(expr); ok {
		if re, isRe := cached.(*regexp.Regexp); isRe {
			return re, nil
		}
		return nil, cached.(error)
	}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		v.patterns.Store(expr, err)
		return nil, err
	}
	v.patterns.Store(expr, re)
	return re, nil
}

func pathOr(path string) string {
	if path == "" {
		return result.ResourcePath
	}
	return path
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func describeType(payload map[string]any, declared string) string {
	if t, ok := payload["@odata.type"].(string); ok && t != "" {
		return t
	}
	if declared != "" {
		return declared
	}
	return "untyped payload"
}
