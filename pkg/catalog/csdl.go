/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import "encoding/xml"

// Raw CSDL document layout. Tags carry local names only so both the edmx
// and edm XML namespaces match.

type edmxDocument struct {
	XMLName      xml.Name        `xml:"Edmx"`
	References   []edmxReference `xml:"Reference"`
	DataServices struct {
		Schemas []csdlSchema `xml:"Schema"`
	} `xml:"DataServices"`
}

type edmxReference struct {
	URI      string        `xml:"Uri,attr"`
	Includes []edmxInclude `xml:"Include"`
}

type edmxInclude struct {
	Namespace string `xml:"Namespace,attr"`
	Alias     string `xml:"Alias,attr"`
}

type csdlSchema struct {
	Namespace       string               `xml:"Namespace,attr"`
	Alias           string               `xml:"Alias,attr"`
	EntityTypes     []csdlStructured     `xml:"EntityType"`
	ComplexTypes    []csdlStructured     `xml:"ComplexType"`
	EnumTypes       []csdlEnum           `xml:"EnumType"`
	TypeDefinitions []csdlTypeDefinition `xml:"TypeDefinition"`
	Actions         []csdlAction         `xml:"Action"`
	Terms           []csdlTerm           `xml:"Term"`
}

// csdlStructured is an EntityType or ComplexType. Property and
// NavigationProperty elements land in Members in document order.
type csdlStructured struct {
	Name        string           `xml:"Name,attr"`
	BaseType    string           `xml:"BaseType,attr"`
	Abstract    string           `xml:"Abstract,attr"`
	Annotations []csdlAnnotation `xml:"Annotation"`
	Members     []csdlProperty   `xml:",any"`
}

type csdlProperty struct {
	XMLName     xml.Name
	Name        string           `xml:"Name,attr"`
	Type        string           `xml:"Type,attr"`
	Nullable    string           `xml:"Nullable,attr"`
	Annotations []csdlAnnotation `xml:"Annotation"`
}

type csdlEnum struct {
	Name        string           `xml:"Name,attr"`
	Annotations []csdlAnnotation `xml:"Annotation"`
	Members     []csdlEnumMember `xml:"Member"`
}

type csdlEnumMember struct {
	Name        string           `xml:"Name,attr"`
	Annotations []csdlAnnotation `xml:"Annotation"`
}

type csdlTypeDefinition struct {
	Name           string           `xml:"Name,attr"`
	UnderlyingType string           `xml:"UnderlyingType,attr"`
	Annotations    []csdlAnnotation `xml:"Annotation"`
}

type csdlAction struct {
	Name        string           `xml:"Name,attr"`
	IsBound     string           `xml:"IsBound,attr"`
	Parameters  []csdlProperty   `xml:"Parameter"`
	Annotations []csdlAnnotation `xml:"Annotation"`
}

type csdlTerm struct {
	Name        string           `xml:"Name,attr"`
	Type        string           `xml:"Type,attr"`
	Nullable    string           `xml:"Nullable,attr"`
	Annotations []csdlAnnotation `xml:"Annotation"`
}

type csdlAnnotation struct {
	Term       string          `xml:"Term,attr"`
	String     string          `xml:"String,attr"`
	Bool       string          `xml:"Bool,attr"`
	Int        string          `xml:"Int,attr"`
	Decimal    string          `xml:"Decimal,attr"`
	EnumMember string          `xml:"EnumMember,attr"`
	Collection *csdlCollection `xml:"Collection"`
	Record     *csdlRecord     `xml:"Record"`
}

type csdlCollection struct {
	Strings []string     `xml:"String"`
	Records []csdlRecord `xml:"Record"`
}

type csdlRecord struct {
	PropertyValues []csdlPropertyValue `xml:"PropertyValue"`
}

type csdlPropertyValue struct {
	Property   string `xml:"Property,attr"`
	String     string `xml:"String,attr"`
	Bool       string `xml:"Bool,attr"`
	Int        string `xml:"Int,attr"`
	EnumMember string `xml:"EnumMember,attr"`
}

func (p csdlPropertyValue) value() string {
	return firstNonEmpty(p.String, p.Bool, p.Int, p.EnumMember)
}

func (a csdlAnnotation) convert() Annotation {
	out := Annotation{
		Term:  a.Term,
		Value: firstNonEmpty(a.String, a.Bool, a.Int, a.Decimal, a.EnumMember),
	}
	if a.Record != nil {
		out.Records = append(out.Records, a.Record.convert())
	}
	if a.Collection != nil {
		out.Strings = append(out.Strings, a.Collection.Strings...)
		for _, r := range a.Collection.Records {
			out.Records = append(out.Records, r.convert())
		}
	}
	return out
}

func (r csdlRecord) convert() map[string]string {
	m := make(map[string]string, len(r.PropertyValues))
	for _, pv := range r.PropertyValues {
		m[pv.Property] = pv.value()
	}
	return m
}

func convertAnnotations(in []csdlAnnotation) map[string]Annotation {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]Annotation, len(in))
	for _, a := range in {
		if a.Term == "" {
			continue
		}
		out[a.Term] = a.convert()
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
