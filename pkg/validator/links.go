/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"sort"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
)

// LinkKind says where a link was found.
type LinkKind string

const (
	LinkNavigation   LinkKind = "Navigation"
	LinkAnnotation   LinkKind = "Annotation"
	LinkActionInfo   LinkKind = "ActionInfo"
	LinkActionTarget LinkKind = "ActionTarget"
	LinkRegistryFile LinkKind = "RegistryFile"
	LinkNextPage     LinkKind = "NextPage"
)

// deferredKeywords mark links into shared or circular parts of the tree.
// They are followed only after everything else is visited.
var deferredKeywords = []string{"RelatedItem", "Redundancy", "Links", "OriginOfCondition"}

// Link is a reference found in a payload.
type Link struct {
	// URI is the referenced URI as written in the payload.
	URI string `json:"uri" yaml:"uri"`
	// Name is the property path the link was found at.
	Name string `json:"name" yaml:"name"`
	// Type is the declared type of the referencing property.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Parent is the URI of the resource holding the link.
	Parent string `json:"parent" yaml:"parent"`
	// Kind is where the link was found.
	Kind LinkKind `json:"kind" yaml:"kind"`
	// Deferred links are followed after the direct frontier is exhausted.
	Deferred bool `json:"deferred,omitempty" yaml:"deferred,omitempty"`
	// InAnnotation links were found inside an annotation; the target's
	// URI is not checked against its schema.
	InAnnotation bool `json:"inAnnotation,omitempty" yaml:"inAnnotation,omitempty"`
	// FromCollectionCapabilities links were found inside
	// @Redfish.CollectionCapabilities. Their targets describe POST bodies,
	// so required properties may be absent.
	FromCollectionCapabilities bool `json:"fromCollectionCapabilities,omitempty" yaml:"fromCollectionCapabilities,omitempty"`
}

// Fetchable reports whether the link should be retrieved with GET.
// Action targets only accept POST.
func (l Link) Fetchable() bool {
	return l.Kind != LinkActionTarget && l.URI != ""
}

// IsRegistry reports whether the link leads to message registry files.
func (l Link) IsRegistry() bool {
	return l.Name == "Registries" ||
		catalog.BaseNamespace(l.Type) == "MessageRegistryFileCollection" ||
		l.Kind == LinkRegistryFile
}

// IsOriginOfCondition reports whether failures fetching the link are
// expected; the referenced resource may be gone by the time it is read.
func (l Link) IsOriginOfCondition() bool {
	return strings.HasSuffix(l.Name, "OriginOfCondition")
}

// SortLinks orders registry links first and keeps discovery order
// otherwise.
func SortLinks(links []Link) {
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].IsRegistry() && !links[j].IsRegistry()
	})
}

// isDeferred applies the deferral keywords to the owning type and the
// property name.
func isDeferred(ownerType, name string) bool {
	for _, k := range deferredKeywords {
		if strings.Contains(ownerType, k) || strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func (p *pass) link(l Link) {
	l.Parent = p.rootURI
	if p.inAnnotation {
		l.InAnnotation = true
	}
	if p.inCapabilities {
		l.FromCollectionCapabilities = true
	}
	p.links = append(p.links, l)
}
