package dataaccess

import (
	"maps"
	"slices"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
)

// Endpoints of the data-access pass-through API.
const (
	PathCompositeModel = "/data/pass-through/entitymodelservice/getcomposite"
	PathEntityModel    = "/data/pass-through/entitymodelservice/get"
	PathEntity         = "/data/pass-through/entityservice/get"
	PathEntityContext  = "/data/pass-through/entityservice/getcontext"
)

const (
	TypeCompositeModel = "entityCompositeModel"
	TypeManageModel    = "entityManageModel"

	// FieldsAll requests every attribute or relationship.
	FieldsAll = "_ALL"

	CriterionTypeString = "_STRING"

	StatusSuccess = "success"
)

// Request is the envelope every data-access call is sent in.
type Request struct {
	Params Params `json:"params"`
}

type Params struct {
	Query   Query               `json:"query"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Options *Options            `json:"options,omitempty"`
}

type Query struct {
	ID            string                `json:"id,omitempty"`
	Name          string                `json:"name,omitempty"`
	Filters       Filters               `json:"filters"`
	ValueContexts []common.ValueContext `json:"valueContexts,omitempty"`
	Contexts      []common.DataContext  `json:"contexts,omitempty"`
}

type Filters struct {
	TypesCriterion      []string                        `json:"typesCriterion"`
	AttributesCriterion []map[string]AttributeCriterion `json:"attributesCriterion,omitempty"`
}

// AttributeCriterion matches attribute values exactly.
type AttributeCriterion struct {
	Exacts []string `json:"exacts"`
	Type   string   `json:"type"`
}

type Options struct {
	CoalesceOptions map[string]any `json:"coalesceOptions,omitempty"`
}

// SearchRequest finds entities of one type by exact attribute values.
type SearchRequest struct {
	EntityType    string
	ValueContexts []common.ValueContext
	// Criteria maps attribute names to the values they must equal.
	Criteria   map[string][]string
	Attributes []string
}

func compositeModelRequest(qc common.QueryContext, entityType string) Request {
	req := Request{
		Params: Params{
			Query: Query{
				Name:          entityType,
				Filters:       Filters{TypesCriterion: []string{TypeCompositeModel}},
				ValueContexts: qc.ValueContexts,
				Contexts:      qc.DataContexts,
			},
			Fields: map[string][]string{"relationships": {FieldsAll}},
		},
	}
	if len(qc.CoalesceOptions) > 0 {
		req.Params.Options = &Options{CoalesceOptions: qc.CoalesceOptions}
	}
	return req
}

func entityRequest(qc common.QueryContext, id, entityType string, relTypes []string) Request {
	if relTypes == nil {
		relTypes = []string{}
	}
	return Request{
		Params: Params{
			Query: Query{
				ID:            id,
				Filters:       Filters{TypesCriterion: []string{entityType}},
				ValueContexts: qc.ValueContexts,
				Contexts:      qc.DataContexts,
			},
			Fields: map[string][]string{"relationships": relTypes},
		},
	}
}

func entityContextRequest(id, entityType string) Request {
	return Request{
		Params: Params{
			Query: Query{
				ID:      id,
				Filters: Filters{TypesCriterion: []string{entityType}},
			},
		},
	}
}

// ManageModelID is the id of the manage model of an entity type.
func ManageModelID(entityType string) string {
	return entityType + "_" + TypeManageModel
}

func manageModelRequest(entityType string) Request {
	return Request{
		Params: Params{
			Query: Query{
				ID:      ManageModelID(entityType),
				Filters: Filters{TypesCriterion: []string{TypeManageModel}},
			},
			Fields: map[string][]string{"attributes": {FieldsAll}},
		},
	}
}

func searchRequest(sr SearchRequest) Request {
	criteria := make([]map[string]AttributeCriterion, 0, len(sr.Criteria))
	for _, attr := range slices.Sorted(maps.Keys(sr.Criteria)) {
		criteria = append(criteria, map[string]AttributeCriterion{
			attr: {Exacts: sr.Criteria[attr], Type: CriterionTypeString},
		})
	}
	return Request{
		Params: Params{
			Query: Query{
				Filters: Filters{
					TypesCriterion:      []string{sr.EntityType},
					AttributesCriterion: criteria,
				},
				ValueContexts: sr.ValueContexts,
			},
			Fields: map[string][]string{"attributes": sr.Attributes},
		},
	}
}
