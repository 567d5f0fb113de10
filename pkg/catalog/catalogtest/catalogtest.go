/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package catalogtest provides a small CSDL schema set for tests.
package catalogtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<edmx:Edmx xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx" Version="4.0">
  <edmx:Reference Uri="http://docs.oasis-open.org/odata/odata/v4.0/errata03/csd01/complete/vocabularies/Org.OData.Core.V1.xml">
    <edmx:Include Namespace="Org.OData.Core.V1" Alias="OData"/>
  </edmx:Reference>
  <edmx:Reference Uri="http://docs.oasis-open.org/odata/odata/v4.0/errata03/csd01/complete/vocabularies/Org.OData.Capabilities.V1.xml">
    <edmx:Include Namespace="Org.OData.Capabilities.V1" Alias="Capabilities"/>
  </edmx:Reference>
  <edmx:Reference Uri="http://docs.oasis-open.org/odata/odata/v4.0/errata03/csd01/complete/vocabularies/Org.OData.Validation.V1.xml">
    <edmx:Include Namespace="Org.OData.Validation.V1" Alias="Validation"/>
  </edmx:Reference>
  <edmx:Reference Uri="http://redfish.dmtf.org/schemas/v1/RedfishExtensions_v1.xml">
    <edmx:Include Namespace="RedfishExtensions.v1_0_0" Alias="Redfish"/>
  </edmx:Reference>
  <edmx:Reference Uri="http://redfish.dmtf.org/schemas/v1/Resource_v1.xml">
    <edmx:Include Namespace="Resource"/>
    <edmx:Include Namespace="Resource.v1_0_0"/>
  </edmx:Reference>
  <edmx:DataServices>
`

const footer = `  </edmx:DataServices>
</edmx:Edmx>
`

// ReadOnly is the permission annotation most read-only properties carry.
const readOnly = `<Annotation Term="OData.Permissions" EnumMember="OData.Permission/Read"/>`

// Documents maps file names to CSDL content.
var Documents = map[string]string{
	"RedfishExtensions_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="RedfishExtensions.v1_0_0" Alias="Redfish">
      <Term Name="Copyright" Type="Edm.String"/>
      <Term Name="ActionInfo" Type="Edm.String"/>
      <Term Name="AllowableValues" Type="Collection(Edm.String)"/>
      <Term Name="Settings" Type="Settings.Settings"/>
      <Term Name="CollectionCapabilities" Type="CollectionCapabilities.CollectionCapabilities"/>
    </Schema>
` + footer,

	"Settings_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Settings">
      <ComplexType Name="Settings" Abstract="true"/>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Settings.v1_0_0">
      <ComplexType Name="Settings" BaseType="Settings.Settings">
        <NavigationProperty Name="SettingsObject" Type="Resource.Item" Nullable="false"/>
        <Property Name="ETag" Type="Edm.String"/>
      </ComplexType>
    </Schema>
` + footer,

	"CollectionCapabilities_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="CollectionCapabilities">
      <ComplexType Name="CollectionCapabilities" Abstract="true"/>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="CollectionCapabilities.v1_0_0">
      <ComplexType Name="CollectionCapabilities" BaseType="CollectionCapabilities.CollectionCapabilities">
        <Property Name="Capabilities" Type="Collection(CollectionCapabilities.v1_0_0.Capability)" Nullable="false"/>
      </ComplexType>
      <ComplexType Name="Capability">
        <NavigationProperty Name="CapabilitiesObject" Type="Resource.Item" Nullable="false"/>
        <Property Name="UseCase" Type="Edm.String"/>
      </ComplexType>
    </Schema>
` + footer,

	"Resource_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Resource">
      <EntityType Name="Item" Abstract="true"/>
      <EntityType Name="Resource" BaseType="Resource.Item" Abstract="true"/>
      <EntityType Name="ResourceCollection" BaseType="Resource.Item" Abstract="true"/>
      <EntityType Name="ReferenceableMember" BaseType="Resource.Item" Abstract="true"/>
      <ComplexType Name="Oem">
        <Annotation Term="OData.AdditionalProperties" Bool="true"/>
      </ComplexType>
      <ComplexType Name="OemObject">
        <Annotation Term="OData.AdditionalProperties" Bool="true"/>
      </ComplexType>
      <ComplexType Name="Links" Abstract="true">
        <Property Name="Oem" Type="Resource.Oem"/>
      </ComplexType>
      <TypeDefinition Name="Id" UnderlyingType="Edm.String"/>
      <TypeDefinition Name="UUID" UnderlyingType="Edm.Guid"/>
      <EnumType Name="Health">
        <Member Name="OK"/>
        <Member Name="Warning"/>
        <Member Name="Critical"/>
      </EnumType>
      <EnumType Name="State">
        <Member Name="Enabled"/>
        <Member Name="Disabled"/>
        <Member Name="Quiesced">
          <Annotation Term="Redfish.Revisions">
            <Collection>
              <Record>
                <PropertyValue Property="Kind" EnumMember="Redfish.RevisionKind/Deprecated"/>
                <PropertyValue Property="Version" String="v1_1_0"/>
                <PropertyValue Property="Description" String="Use Disabled."/>
              </Record>
            </Collection>
          </Annotation>
        </Member>
      </EnumType>
      <EnumType Name="DurableNameFormat">
        <Member Name="NAA"/>
        <Member Name="UUID"/>
        <Member Name="MACAddress"/>
      </EnumType>
      <ComplexType Name="Status">
        <Property Name="Health" Type="Resource.Health">` + readOnly + `</Property>
        <Property Name="State" Type="Resource.State">` + readOnly + `</Property>
        <Property Name="Oem" Type="Resource.Oem"/>
        <Annotation Term="OData.AdditionalProperties" Bool="false"/>
      </ComplexType>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Resource.v1_0_0">
      <EntityType Name="Resource" BaseType="Resource.Resource" Abstract="true">
        <Property Name="Id" Type="Resource.Id" Nullable="false">
          <Annotation Term="Redfish.Required"/>` + readOnly + `
        </Property>
        <Property Name="Name" Type="Edm.String" Nullable="false">
          <Annotation Term="Redfish.Required"/>` + readOnly + `
        </Property>
        <Property Name="Description" Type="Edm.String">` + readOnly + `</Property>
        <Property Name="Oem" Type="Resource.Oem"/>
      </EntityType>
      <EntityType Name="ResourceCollection" BaseType="Resource.ResourceCollection" Abstract="true">
        <Property Name="Name" Type="Edm.String" Nullable="false">
          <Annotation Term="Redfish.Required"/>` + readOnly + `
        </Property>
        <Property Name="Description" Type="Edm.String">` + readOnly + `</Property>
        <Property Name="Oem" Type="Resource.Oem"/>
      </EntityType>
      <EntityType Name="ReferenceableMember" BaseType="Resource.ReferenceableMember" Abstract="true">
        <Property Name="MemberId" Type="Edm.String" Nullable="false">
          <Annotation Term="Redfish.Required"/>` + readOnly + `
        </Property>
        <Property Name="Oem" Type="Resource.Oem"/>
      </EntityType>
      <ComplexType Name="Identifier">
        <Property Name="DurableName" Type="Edm.String">` + readOnly + `</Property>
        <Property Name="DurableNameFormat" Type="Resource.DurableNameFormat">` + readOnly + `</Property>
      </ComplexType>
    </Schema>
` + footer,

	"ServiceRoot_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="ServiceRoot">
      <EntityType Name="ServiceRoot" BaseType="Resource.v1_0_0.Resource" Abstract="true">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1</String>
          </Collection>
        </Annotation>
      </EntityType>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="ServiceRoot.v1_0_0">
      <EntityType Name="ServiceRoot" BaseType="ServiceRoot.ServiceRoot">
        <Property Name="RedfishVersion" Type="Edm.String">` + readOnly + `
          <Annotation Term="Validation.Pattern" String="^\d+\.\d+\.\d+$"/>
        </Property>
        <Property Name="UUID" Type="Resource.UUID">` + readOnly + `</Property>
        <NavigationProperty Name="Chassis" Type="ChassisCollection.ChassisCollection" Nullable="false">` + readOnly + `
          <Annotation Term="OData.AutoExpandReferences"/>
        </NavigationProperty>
        <NavigationProperty Name="Widgets" Type="WidgetCollection.WidgetCollection" Nullable="false">` + readOnly + `</NavigationProperty>
      </EntityType>
    </Schema>
` + footer,

	"ChassisCollection_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="ChassisCollection">
      <EntityType Name="ChassisCollection" BaseType="Resource.v1_0_0.ResourceCollection">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Chassis</String>
          </Collection>
        </Annotation>
        <Annotation Term="Capabilities.InsertRestrictions">
          <Record>
            <PropertyValue Property="Insertable" Bool="false"/>
          </Record>
        </Annotation>
        <NavigationProperty Name="Members" Type="Collection(Chassis.Chassis)">` + readOnly + `
          <Annotation Term="Redfish.Required"/>
        </NavigationProperty>
      </EntityType>
    </Schema>
` + footer,

	"Chassis_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Chassis">
      <EntityType Name="Chassis" BaseType="Resource.v1_0_0.Resource" Abstract="true">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Chassis/{ChassisId}</String>
          </Collection>
        </Annotation>
        <Annotation Term="Redfish.DeprecatedURIs">
          <Collection>
            <String>/redfish/v1/Chassis/{ChassisId}/Legacy/{LegacyId}</String>
          </Collection>
        </Annotation>
        <Annotation Term="Capabilities.UpdateRestrictions">
          <Record>
            <PropertyValue Property="Updatable" Bool="true"/>
          </Record>
        </Annotation>
      </EntityType>
      <Action Name="Reset" IsBound="true">
        <Parameter Name="Chassis" Type="Chassis.v1_0_0.Actions"/>
        <Parameter Name="ResetType" Type="Edm.String"/>
      </Action>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Chassis.v1_0_0">
      <EntityType Name="Chassis" BaseType="Chassis.Chassis">
        <Property Name="ChassisType" Type="Chassis.v1_0_0.ChassisType" Nullable="false">
          <Annotation Term="Redfish.Required"/>` + readOnly + `
        </Property>
        <Property Name="AssetTag" Type="Edm.String">
          <Annotation Term="OData.Permissions" EnumMember="OData.Permission/ReadWrite"/>
        </Property>
        <Property Name="SKU" Type="Edm.String">` + readOnly + `</Property>
        <Property Name="IndicatorLED" Type="Edm.String">
          <Annotation Term="OData.Permissions" EnumMember="OData.Permission/ReadWrite"/>
          <Annotation Term="Redfish.Deprecated" String="Use LocationIndicatorActive."/>
        </Property>
        <Property Name="Password" Type="Edm.String">
          <Annotation Term="OData.Permissions" EnumMember="OData.Permission/Write"/>
        </Property>
        <Property Name="Status" Type="Resource.Status" Nullable="false"/>
        <Property Name="Identifiers" Type="Collection(Resource.v1_0_0.Identifier)"/>
        <Property Name="Links" Type="Chassis.v1_0_0.Links" Nullable="false"/>
        <Property Name="Actions" Type="Chassis.v1_0_0.Actions" Nullable="false"/>
        <NavigationProperty Name="LogEntries" Type="LogEntryCollection.LogEntryCollection" Nullable="false">` + readOnly + `</NavigationProperty>
      </EntityType>
      <EnumType Name="ChassisType">
        <Member Name="Rack"/>
        <Member Name="Blade"/>
        <Member Name="Drawer">
          <Annotation Term="Redfish.Revisions">
            <Collection>
              <Record>
                <PropertyValue Property="Kind" EnumMember="Redfish.RevisionKind/Added"/>
                <PropertyValue Property="Version" String="v1_2_0"/>
              </Record>
            </Collection>
          </Annotation>
        </Member>
      </EnumType>
      <ComplexType Name="Links" BaseType="Resource.Links">
        <NavigationProperty Name="ContainedBy" Type="Chassis.Chassis">` + readOnly + `</NavigationProperty>
        <NavigationProperty Name="Contains" Type="Collection(Chassis.Chassis)">` + readOnly + `</NavigationProperty>
      </ComplexType>
      <ComplexType Name="Actions">
        <Property Name="Oem" Type="Chassis.v1_0_0.OemActions" Nullable="false"/>
      </ComplexType>
      <ComplexType Name="OemActions">
        <Annotation Term="OData.AdditionalProperties" Bool="true"/>
      </ComplexType>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Chassis.v1_2_0">
      <EntityType Name="Chassis" BaseType="Chassis.v1_0_0.Chassis">
        <Property Name="PowerSlots" Type="Edm.Int64">` + readOnly + `
          <Annotation Term="Validation.Minimum" Int="0"/>
          <Annotation Term="Validation.Maximum" Int="10"/>
        </Property>
        <Property Name="DepthMm" Type="Edm.Decimal">` + readOnly + `</Property>
      </EntityType>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Chassis.v1_2_3">
      <EntityType Name="Chassis" BaseType="Chassis.v1_2_0.Chassis"/>
    </Schema>
` + footer,

	"LogEntryCollection_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="LogEntryCollection">
      <EntityType Name="LogEntryCollection" BaseType="Resource.v1_0_0.ResourceCollection">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Chassis/{ChassisId}/LogEntries</String>
          </Collection>
        </Annotation>
        <NavigationProperty Name="Members" Type="Collection(LogEntry.LogEntry)">` + readOnly + `
          <Annotation Term="Redfish.Required"/>
        </NavigationProperty>
      </EntityType>
    </Schema>
` + footer,

	"LogEntry_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="LogEntry">
      <EntityType Name="LogEntry" BaseType="Resource.v1_0_0.Resource" Abstract="true">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Chassis/{ChassisId}/LogEntries/{LogEntryId}</String>
          </Collection>
        </Annotation>
      </EntityType>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="LogEntry.v1_0_0">
      <EntityType Name="LogEntry" BaseType="LogEntry.LogEntry">
        <Property Name="Created" Type="Edm.DateTimeOffset">` + readOnly + `</Property>
        <Property Name="Message" Type="Edm.String">` + readOnly + `</Property>
        <NavigationProperty Name="OriginOfCondition" Type="Resource.Item">` + readOnly + `</NavigationProperty>
      </EntityType>
    </Schema>
` + footer,

	"WidgetCollection_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="WidgetCollection">
      <EntityType Name="WidgetCollection" BaseType="Resource.v1_0_0.ResourceCollection">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Widgets</String>
          </Collection>
        </Annotation>
        <NavigationProperty Name="Members" Type="Collection(Widget.Widget)">` + readOnly + `
          <Annotation Term="Redfish.Required"/>
        </NavigationProperty>
      </EntityType>
    </Schema>
` + footer,

	"Widget_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Widget">
      <EntityType Name="Widget" BaseType="Resource.v1_0_0.Resource" Abstract="true">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Widgets/{WidgetId}</String>
          </Collection>
        </Annotation>
      </EntityType>
      <Action Name="Calibrate" IsBound="true">
        <Parameter Name="Widget" Type="Widget.v1_0_0.Actions"/>
        <Parameter Name="Mode" Type="Edm.String"/>
      </Action>
      <Action Name="Recalibrate" IsBound="true">
        <Parameter Name="Widget" Type="Widget.v1_0_0.Actions"/>
        <Annotation Term="Redfish.Revisions">
          <Collection>
            <Record>
              <PropertyValue Property="Kind" EnumMember="Redfish.RevisionKind/Added"/>
              <PropertyValue Property="Version" String="v1_1_0"/>
            </Record>
          </Collection>
        </Annotation>
      </Action>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Widget.v1_0_0">
      <EntityType Name="Widget" BaseType="Widget.Widget">
        <Property Name="Attributes" Type="Widget.v1_0_0.Attributes"/>
        <Property Name="Extra" Type="Widget.v1_0_0.Extra"/>
        <Property Name="Created" Type="Edm.DateTimeOffset">` + readOnly + `</Property>
        <Property Name="Timeout" Type="Edm.Duration">` + readOnly + `</Property>
        <Property Name="Tag" Type="Edm.Guid">` + readOnly + `</Property>
        <Property Name="Enabled" Type="Edm.Boolean">` + readOnly + `</Property>
        <Property Name="Label" Type="Widget.v1_0_0.Label">` + readOnly + `</Property>
        <Property Name="Mode" Type="Edm.String">` + readOnly + `
          <Annotation Term="Redfish.Enumeration">
            <Collection>
              <Record>
                <PropertyValue Property="Member" String="Auto"/>
              </Record>
              <Record>
                <PropertyValue Property="Member" String="Manual"/>
              </Record>
            </Collection>
          </Annotation>
        </Property>
        <Property Name="Scores" Type="Collection(Edm.Int64)">` + readOnly + `</Property>
        <Property Name="Value" Type="Edm.Primitive">` + readOnly + `</Property>
        <NavigationProperty Name="Sensor" Type="Sensor.Sensor">` + readOnly + `
          <Annotation Term="Redfish.ExcerptCopy" String="Environment"/>
        </NavigationProperty>
        <NavigationProperty Name="Peer" Type="Widget.Widget">` + readOnly + `</NavigationProperty>
        <NavigationProperty Name="Inline" Type="Sensor.Sensor">` + readOnly + `
          <Annotation Term="OData.AutoExpand"/>
        </NavigationProperty>
        <NavigationProperty Name="Fans" Type="Collection(Widget.v1_0_0.Fan)">` + readOnly + `
          <Annotation Term="OData.AutoExpand"/>
        </NavigationProperty>
        <Property Name="Links" Type="Widget.v1_0_0.Links" Nullable="false"/>
        <Property Name="Actions" Type="Widget.v1_0_0.Actions"/>
      </EntityType>
      <EntityType Name="Fan" BaseType="Resource.v1_0_0.ReferenceableMember">
        <Property Name="Speed" Type="Edm.Int64">` + readOnly + `</Property>
      </EntityType>
      <ComplexType Name="Actions">
        <Property Name="Oem" Type="Widget.v1_0_0.OemActions"/>
      </ComplexType>
      <ComplexType Name="OemActions">
        <Annotation Term="OData.AdditionalProperties" Bool="true"/>
      </ComplexType>
      <ComplexType Name="Attributes">
        <Annotation Term="Redfish.DynamicPropertyPatterns">
          <Collection>
            <Record>
              <PropertyValue Property="Pattern" String="^Foo.*$"/>
              <PropertyValue Property="Type" String="Edm.String"/>
            </Record>
          </Collection>
        </Annotation>
        <Property Name="Known" Type="Edm.String"/>
      </ComplexType>
      <ComplexType Name="Extra">
        <Annotation Term="OData.AdditionalProperties" Bool="true"/>
        <Property Name="Color" Type="Edm.String"/>
      </ComplexType>
      <ComplexType Name="Links" BaseType="Resource.Links">
        <NavigationProperty Name="RelatedItem" Type="Collection(Resource.Item)">` + readOnly + `</NavigationProperty>
      </ComplexType>
      <TypeDefinition Name="Label" UnderlyingType="Edm.String">
        <Annotation Term="Validation.Pattern" String="^[A-Z]+$"/>
      </TypeDefinition>
    </Schema>
` + footer,

	"Sensor_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Sensor">
      <EntityType Name="Sensor" BaseType="Resource.v1_0_0.Resource" Abstract="true">
        <Annotation Term="Redfish.Uris">
          <Collection>
            <String>/redfish/v1/Sensors/{SensorId}</String>
          </Collection>
        </Annotation>
      </EntityType>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Sensor.v1_0_0">
      <EntityType Name="Sensor" BaseType="Sensor.Sensor">
        <Property Name="Reading" Type="Edm.Decimal">` + readOnly + `
          <Annotation Term="Redfish.Excerpt"/>
        </Property>
        <Property Name="ReadingUnits" Type="Edm.String">` + readOnly + `
          <Annotation Term="Redfish.Excerpt" String="Environment"/>
        </Property>
        <Property Name="PeakReading" Type="Edm.Decimal">` + readOnly + `
          <Annotation Term="Redfish.Excerpt" String="Power"/>
        </Property>
        <Property Name="DataSourceUri" Type="Edm.String">` + readOnly + `
          <Annotation Term="Redfish.ExcerptCopyOnly"/>
        </Property>
        <Property Name="SensingInterval" Type="Edm.Duration">` + readOnly + `</Property>
      </EntityType>
    </Schema>
` + footer,

	"MessageRegistry_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="MessageRegistry">
      <EntityType Name="MessageRegistry" BaseType="Resource.v1_0_0.Resource" Abstract="true"/>
    </Schema>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="MessageRegistry.v1_0_0">
      <EntityType Name="MessageRegistry" BaseType="MessageRegistry.MessageRegistry">
        <Property Name="Language" Type="Edm.String" Nullable="false">
          <Annotation Term="Redfish.Required"/>` + readOnly + `
        </Property>
      </EntityType>
    </Schema>
` + footer,

	"Inherit_v1.xml": header + `
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Inherit.v1_0_0">
      <ComplexType Name="A">
        <Property Name="Shared" Type="Edm.String"/>
        <Property Name="OnlyA" Type="Edm.Boolean"/>
      </ComplexType>
      <ComplexType Name="B" BaseType="Inherit.v1_0_0.A">
        <Property Name="Shared" Type="Edm.Int64"/>
      </ComplexType>
      <ComplexType Name="C" BaseType="Inherit.v1_0_0.B">
        <Property Name="OnlyC" Type="Edm.String"/>
      </ComplexType>
      <ComplexType Name="Loop1" BaseType="Inherit.v1_0_0.Loop2"/>
      <ComplexType Name="Loop2" BaseType="Inherit.v1_0_0.Loop1"/>
    </Schema>
` + footer,
}

// WriteDir writes docs into a fresh temporary directory and returns it.
func WriteDir(t testing.TB, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// New loads Documents into a catalog.
func New(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadDirectory(context.Background(), WriteDir(t, Documents))
	if err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	if len(cat.Errors) > 0 {
		t.Fatalf("test catalog has load errors: %v", cat.Errors)
	}
	return cat
}
