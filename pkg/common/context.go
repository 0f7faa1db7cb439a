package common

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ItemContext identifies the entity the host application is focused on.
type ItemContext struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ValueContext selects the source and locale attribute values are read in.
type ValueContext struct {
	Source string `json:"source,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// DataContext is a context descriptor such as {"country": "US"}.
type DataContext map[string]string

// ContextData mirrors the context object the host application binds to its
// widgets.
type ContextData struct {
	ItemContexts []ItemContext  `json:"ItemContexts,omitempty"`
	ValContexts  []ValueContext `json:"ValContexts,omitempty"`
	Contexts     []DataContext  `json:"Contexts,omitempty"`
}

// FirstItemContext returns the first item context, if there is one.
func (c ContextData) FirstItemContext() (ItemContext, bool) {
	if len(c.ItemContexts) == 0 {
		return ItemContext{}, false
	}
	return c.ItemContexts[0], true
}

// QueryContext is the part of the host context every data-access query is
// parameterized with. It is passed by value and never mutated.
type QueryContext struct {
	ValueContexts   []ValueContext `json:"valueContexts,omitempty"`
	DataContexts    []DataContext  `json:"contexts,omitempty"`
	CoalesceOptions map[string]any `json:"coalesceOptions,omitempty"`
	// Authorization is forwarded to the data-access layer as-is.
	Authorization string `json:"-"`
}

// Focus is the explicit input of one derivation: the entity in focus plus the
// query context.
type Focus struct {
	EntityID   string       `json:"entityId"`
	EntityType string       `json:"entityType"`
	Query      QueryContext `json:"query"`
}

// NewFocus builds a focus from host context data. The focus is empty when the
// host did not supply an item context.
func NewFocus(data ContextData, authorization string) Focus {
	f := Focus{
		Query: QueryContext{
			ValueContexts: data.ValContexts,
			DataContexts:  data.Contexts,
			Authorization: authorization,
		},
	}
	if item, ok := data.FirstItemContext(); ok {
		f.EntityID = item.ID
		f.EntityType = item.Type
	}
	return f
}

// IsEmpty reports whether the entity id or type is missing.
func (f Focus) IsEmpty() bool {
	return f.EntityID == "" || f.EntityType == ""
}

// Key identifies a focus for in-flight deduplication. Two foci with the same
// entity, contexts and credentials share a key.
func (f Focus) Key() string {
	payload, _ := json.Marshal(struct {
		Focus
		Authorization string `json:"authorization"`
	}{f, f.Query.Authorization})
	sum := sha256.Sum256(payload)
	return f.EntityType + "/" + f.EntityID + "/" + hex.EncodeToString(sum[:8])
}
