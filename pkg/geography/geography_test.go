package geography

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/dataaccess"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSources struct {
	contexts    *common.Entity
	contextsErr error
	model       *common.Entity
	modelErr    error
	found       []common.Entity
	searchErr   error

	searched *dataaccess.SearchRequest
}

func (f *fakeSources) GetEntityContexts(ctx context.Context, qc common.QueryContext, id, entityType string) (*common.Entity, error) {
	return f.contexts, f.contextsErr
}

func (f *fakeSources) GetEntityManageModel(ctx context.Context, qc common.QueryContext, entityType string) (*common.Entity, error) {
	return f.model, f.modelErr
}

func (f *fakeSources) SearchEntities(ctx context.Context, qc common.QueryContext, sr dataaccess.SearchRequest) ([]common.Entity, error) {
	f.searched = &sr
	return f.found, f.searchErr
}

func entity(t *testing.T, raw string) *common.Entity {
	t.Helper()
	var e common.Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	return &e
}

func entities(t *testing.T, raw string) []common.Entity {
	t.Helper()
	var es []common.Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &es))
	return es
}

const withCountries = `{"id": "E1", "data": {"contexts": [
	{"context": {"country": "Germany"}},
	{"context": {"channel": "web"}},
	{"context": {"country": "France"}}
]}}`

const countryModel = `{"id": "country_entityManageModel", "data": {"attributes": {
	"isocode": {"properties": {}},
	"countryname": {"properties": {"isExternalName": true}}
}}}`

func focus() common.Focus {
	return common.Focus{EntityID: "E1", EntityType: "product"}
}

func derive(t *testing.T, sources *fakeSources, req Request) (*common.GeoChart, error) {
	t.Helper()
	d, err := NewDeriver(sources)
	require.NoError(t, err)
	return d.Derive(context.Background(), req)
}

func TestDerive_Messages(t *testing.T) {
	tests := []struct {
		name    string
		sources *fakeSources
		req     Request
		want    string
	}{
		{
			name:    "no country entity type",
			sources: &fakeSources{},
			req:     Request{Focus: focus()},
			want:    MessageNoCountryType,
		},
		{
			name:    "no focus",
			sources: &fakeSources{},
			req:     Request{CountryEntityType: "country"},
			want:    MessageNoEntity,
		},
		{
			name:    "entity not found",
			sources: &fakeSources{},
			req:     Request{Focus: focus(), CountryEntityType: "country"},
			want:    MessageNoCountries,
		},
		{
			name:    "entity without country contexts",
			sources: &fakeSources{contexts: entity(t, `{"id": "E1", "data": {"contexts": [{"context": {"channel": "web"}}]}}`)},
			req:     Request{Focus: focus(), CountryEntityType: "country"},
			want:    MessageNoCountries,
		},
		{
			name:    "no manage model",
			sources: &fakeSources{contexts: entity(t, withCountries)},
			req:     Request{Focus: focus(), CountryEntityType: "country", IsoCountryNameAttribute: "isocode"},
			want:    MessageNoCodes,
		},
		{
			name: "manage model without attributes",
			sources: &fakeSources{
				contexts: entity(t, withCountries),
				model:    entity(t, `{"id": "country_entityManageModel", "data": {}}`),
			},
			req:  Request{Focus: focus(), CountryEntityType: "country", IsoCountryNameAttribute: "isocode"},
			want: MessageNoCodes,
		},
		{
			name: "manage model without external name",
			sources: &fakeSources{
				contexts: entity(t, withCountries),
				model:    entity(t, `{"id": "country_entityManageModel", "data": {"attributes": {"isocode": {}}}}`),
			},
			req:  Request{Focus: focus(), CountryEntityType: "country", IsoCountryNameAttribute: "isocode"},
			want: MessageNoCodes,
		},
		{
			name: "no country entities found",
			sources: &fakeSources{
				contexts: entity(t, withCountries),
				model:    entity(t, countryModel),
			},
			req:  Request{Focus: focus(), CountryEntityType: "country", IsoCountryNameAttribute: "isocode"},
			want: MessageNoCountries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart, err := derive(t, tt.sources, tt.req)
			require.NoError(t, err)
			assert.False(t, chart.Loaded)
			assert.Empty(t, chart.Rows)
			assert.Equal(t, tt.want, chart.Message)
			assert.Equal(t, DefaultColor, chart.Options.DefaultColor)
		})
	}
}

func TestDerive_CountriesFromContexts(t *testing.T) {
	chart, err := derive(t, &fakeSources{contexts: entity(t, withCountries)}, Request{
		Focus:             focus(),
		CountryEntityType: "country",
	})
	require.NoError(t, err)
	assert.True(t, chart.Loaded)
	assert.Empty(t, chart.Message)
	assert.Equal(t, [][]string{{"Country"}, {"Germany"}, {"France"}}, chart.Rows)
}

func TestDerive_IsoNames(t *testing.T) {
	sources := &fakeSources{
		contexts: entity(t, withCountries),
		model:    entity(t, countryModel),
		found: entities(t, `[
			{"id": "C1", "data": {"attributes": {
				"isocode": {"values": [{"value": "DE"}]},
				"countryname": {"values": [{"value": "Germany"}]}
			}}},
			{"id": "C2", "data": {"attributes": {
				"countryname": {"values": [{"value": "France"}]}
			}}},
			{"id": "C3", "data": {}}
		]`),
	}

	chart, err := derive(t, sources, Request{
		Focus:                   focus(),
		CountryEntityType:       "country",
		IsoCountryNameAttribute: "isocode",
	})
	require.NoError(t, err)
	assert.True(t, chart.Loaded)
	assert.Equal(t, [][]string{{"Country"}, {"DE"}, {"France"}}, chart.Rows)

	require.NotNil(t, sources.searched)
	assert.Equal(t, "country", sources.searched.EntityType)
	assert.Equal(t, map[string][]string{"countryname": {"Germany", "France"}}, sources.searched.Criteria)
	assert.Equal(t, []string{"isocode", "countryname"}, sources.searched.Attributes)
	assert.Equal(t, []common.ValueContext{{Source: "internal", Locale: "en-US"}}, sources.searched.ValueContexts)
}

func TestDerive_TransportErrors(t *testing.T) {
	boom := errors.New("boom")

	chart, err := derive(t, &fakeSources{contextsErr: boom}, Request{Focus: focus(), CountryEntityType: "country"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, MessageNoCountries, chart.Message)

	chart, err = derive(t, &fakeSources{contexts: entity(t, withCountries), modelErr: boom}, Request{
		Focus: focus(), CountryEntityType: "country", IsoCountryNameAttribute: "isocode",
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, MessageNoCodes, chart.Message)

	chart, err = derive(t, &fakeSources{contexts: entity(t, withCountries), model: entity(t, countryModel), searchErr: boom}, Request{
		Focus: focus(), CountryEntityType: "country", IsoCountryNameAttribute: "isocode",
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, chart.Loaded)
}

func TestCountriesOf(t *testing.T) {
	assert.Nil(t, CountriesOf(nil, "country"))
	assert.Equal(t, []string{"Germany", "France"}, CountriesOf(entity(t, withCountries), "country"))
	assert.Nil(t, CountriesOf(entity(t, withCountries), "region"))
}

func TestNewDeriver_RequiresSources(t *testing.T) {
	_, err := NewDeriver(nil)
	assert.Error(t, err)
}
