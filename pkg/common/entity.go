package common

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// OwnershipOwned marks a relationship definition owned by the described entity type.
	OwnershipOwned = "owned"
	// OSContextCoalesce marks a relationship value coalesced across all contexts.
	OSContextCoalesce = "contextCoalesce"
)

type RelationshipTypeProperties struct {
	RelationshipOwnership string `json:"relationshipOwnership,omitempty"`
	ExternalName          string `json:"externalName,omitempty"`
}

// RelationshipTypeModel is one candidate definition of a relationship type in
// an entity type's schema.
type RelationshipTypeModel struct {
	Properties RelationshipTypeProperties `json:"properties"`
}

func (m RelationshipTypeModel) IsOwned() bool {
	return m.Properties.RelationshipOwnership == OwnershipOwned
}

// RelationshipModels maps relationship-type names to their candidate
// definitions, in the order the schema source returned them.
type RelationshipModels = orderedmap.OrderedMap[string, []RelationshipTypeModel]

// Relationships maps relationship-type names to concrete instances, in the
// order the entity source returned them.
type Relationships = orderedmap.OrderedMap[string, []RelationshipInstance]

type RelatedEntity struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// RelationshipInstance is one concrete relationship occurrence on an entity.
type RelationshipInstance struct {
	ID    string        `json:"id,omitempty"`
	RelTo RelatedEntity `json:"relTo"`
	OS    string        `json:"os,omitempty"`
}

func (r RelationshipInstance) IsCoalesced() bool {
	return r.OS == OSContextCoalesce
}

// ContextScope is a sub-partition of an entity's data, e.g. per country.
type ContextScope struct {
	Context       *orderedmap.OrderedMap[string, any] `json:"context,omitempty"`
	Relationships *Relationships                      `json:"relationships,omitempty"`
}

// Label is the first value of the context descriptor. Descriptors are
// expected to carry one key; additional keys are ignored. The label is empty
// when the descriptor is missing or empty.
func (s ContextScope) Label() string {
	if s.Context == nil {
		return ""
	}
	first := s.Context.Oldest()
	if first == nil {
		return ""
	}
	return stringify(first.Value)
}

// Value returns the descriptor value for key, e.g. the country of a scope.
func (s ContextScope) Value(key string) (string, bool) {
	if s.Context == nil {
		return "", false
	}
	v, ok := s.Context.Get(key)
	if !ok {
		return "", false
	}
	str := stringify(v)
	return str, str != ""
}

// EntityRelationshipView is how an entity carries its relationships: either
// FlatRelationships or ScopedRelationships.
type EntityRelationshipView interface {
	relationshipView()
}

type FlatRelationships struct {
	Relationships *Relationships
}

type ScopedRelationships struct {
	Scopes []ContextScope
}

func (FlatRelationships) relationshipView()   {}
func (ScopedRelationships) relationshipView() {}

type AttributeValue struct {
	Value  any    `json:"value"`
	Source string `json:"source,omitempty"`
	Locale string `json:"locale,omitempty"`
}

type AttributeProperties struct {
	IsExternalName bool   `json:"isExternalName,omitempty"`
	ExternalName   string `json:"externalName,omitempty"`
	DataType       string `json:"dataType,omitempty"`
}

type Attribute struct {
	Values     []AttributeValue     `json:"values,omitempty"`
	Properties *AttributeProperties `json:"properties,omitempty"`
}

// FirstValue returns the first value of the attribute as a string.
func (a Attribute) FirstValue() (string, bool) {
	if len(a.Values) == 0 {
		return "", false
	}
	v := stringify(a.Values[0].Value)
	return v, v != ""
}

type Attributes = orderedmap.OrderedMap[string, Attribute]

// EntityData is the data payload of an entity or entity model.
type EntityData struct {
	Attributes    *Attributes    `json:"attributes,omitempty"`
	Relationships *Relationships `json:"relationships,omitempty"`
	Contexts      []ContextScope `json:"contexts,omitempty"`

	view EntityRelationshipView
}

func (d *EntityData) UnmarshalJSON(b []byte) error {
	type raw EntityData
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*d = EntityData(r)
	d.view = d.resolveView()
	return nil
}

func (d EntityData) resolveView() EntityRelationshipView {
	if len(d.Contexts) > 0 {
		return ScopedRelationships{Scopes: d.Contexts}
	}
	return FlatRelationships{Relationships: d.Relationships}
}

// View returns how the entity carries its relationships. It is resolved
// while decoding; data built in code resolves it on first use.
func (d EntityData) View() EntityRelationshipView {
	if d.view != nil {
		return d.view
	}
	return d.resolveView()
}

// Attribute returns the attribute by name.
func (d EntityData) Attribute(name string) (Attribute, bool) {
	if d.Attributes == nil || name == "" {
		return Attribute{}, false
	}
	return d.Attributes.Get(name)
}

// ExternalNameAttribute returns the name of the first attribute flagged as
// the external name, in model order.
func (d EntityData) ExternalNameAttribute() (string, bool) {
	if d.Attributes == nil {
		return "", false
	}
	for pair := d.Attributes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Properties != nil && pair.Value.Properties.IsExternalName {
			return pair.Key, true
		}
	}
	return "", false
}

// Entity is an entity or entity model as returned by the data-access layer.
type Entity struct {
	ID   string     `json:"id"`
	Name string     `json:"name,omitempty"`
	Type string     `json:"type,omitempty"`
	Data EntityData `json:"data"`
}

// EntityFetch is the outcome of an entity lookup. Success mirrors the
// data-access status; a successful fetch may still carry no entity.
type EntityFetch struct {
	Success bool
	Entity  *Entity
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
