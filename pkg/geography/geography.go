// Package geography derives the country table shown by the entity geography
// viewer from the context scopes of an entity.
package geography

import (
	"context"
	"errors"
	"fmt"

	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/dataaccess"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"
)

// Messages shown instead of the chart.
const (
	MessageNoCountryType = "Country entity type is not available to show entity geography"
	MessageNoEntity      = "Entity details not available to load geography chart"
	MessageNoCountries   = "Entity does not have any country contexts"
	MessageNoCodes       = "Cannot fetch codes for the countries entity is part of"
)

// DefaultColor is the fill of countries on the chart.
const DefaultColor = "#026bc3"

// Country entities are searched in this value context.
var countryValueContext = common.ValueContext{Source: "internal", Locale: "en-US"}

type ContextSource interface {
	GetEntityContexts(ctx context.Context, qc common.QueryContext, id, entityType string) (*common.Entity, error)
}

type ModelSource interface {
	GetEntityManageModel(ctx context.Context, qc common.QueryContext, entityType string) (*common.Entity, error)
}

type SearchSource interface {
	SearchEntities(ctx context.Context, qc common.QueryContext, sr dataaccess.SearchRequest) ([]common.Entity, error)
}

// Sources bundles what the deriver reads from. The data-access client
// implements all of them.
type Sources interface {
	ContextSource
	ModelSource
	SearchSource
}

// Request selects the entity and how its countries are named.
type Request struct {
	Focus common.Focus
	// CountryEntityType is the context key that carries the country.
	CountryEntityType string
	// IsoCountryNameAttribute, when set, names the country attribute holding
	// the name the chart understands.
	IsoCountryNameAttribute string
}

type Deriver struct {
	sources Sources
}

func NewDeriver(sources Sources) (*Deriver, error) {
	if sources == nil {
		return nil, errors.New("geography deriver needs a data source")
	}
	return &Deriver{sources: sources}, nil
}

// Derive builds the chart. Every empty branch yields a chart that is not
// loaded and carries a message. A non-nil error reports a transport fault and
// comes with such a chart too.
func (d *Deriver) Derive(ctx context.Context, req Request) (*common.GeoChart, error) {
	if req.CountryEntityType == "" {
		return notLoaded(MessageNoCountryType), nil
	}
	if req.Focus.IsEmpty() {
		return notLoaded(MessageNoEntity), nil
	}

	entity, err := d.sources.GetEntityContexts(ctx, req.Focus.Query, req.Focus.EntityID, req.Focus.EntityType)
	if err != nil {
		logger.Warn("[Geography] Entity contexts unavailable", "entity_id", req.Focus.EntityID, "err", err)
		return notLoaded(MessageNoCountries), err
	}

	countries := CountriesOf(entity, req.CountryEntityType)
	if len(countries) == 0 {
		return notLoaded(MessageNoCountries), nil
	}

	if req.IsoCountryNameAttribute == "" {
		return loaded(countries), nil
	}

	return d.deriveIsoNames(ctx, req, countries)
}

func (d *Deriver) deriveIsoNames(ctx context.Context, req Request, countries []string) (*common.GeoChart, error) {
	model, err := d.sources.GetEntityManageModel(ctx, req.Focus.Query, req.CountryEntityType)
	if err != nil {
		logger.Warn("[Geography] Country model unavailable", "entity_type", req.CountryEntityType, "err", err)
		return notLoaded(MessageNoCodes), err
	}
	if model == nil || model.Data.Attributes == nil {
		return notLoaded(MessageNoCodes), nil
	}
	externalName, ok := model.Data.ExternalNameAttribute()
	if !ok {
		return notLoaded(MessageNoCodes), nil
	}

	entities, err := d.sources.SearchEntities(ctx, req.Focus.Query, dataaccess.SearchRequest{
		EntityType:    req.CountryEntityType,
		ValueContexts: []common.ValueContext{countryValueContext},
		Criteria:      map[string][]string{externalName: countries},
		Attributes:    []string{req.IsoCountryNameAttribute, externalName},
	})
	if err != nil {
		logger.Warn("[Geography] Country search failed", "entity_type", req.CountryEntityType, "err", err)
		return notLoaded(MessageNoCountries), fmt.Errorf("searching countries: %w", err)
	}

	names := make([]string, 0, len(entities))
	for _, e := range entities {
		if name, ok := countryName(e, req.IsoCountryNameAttribute, externalName); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return notLoaded(MessageNoCountries), nil
	}
	return loaded(names), nil
}

// CountriesOf returns the value of countryKey in each context scope of entity
// that has one, in scope order.
func CountriesOf(entity *common.Entity, countryKey string) []string {
	if entity == nil {
		return nil
	}
	var countries []string
	for _, scope := range entity.Data.Contexts {
		if c, ok := scope.Value(countryKey); ok {
			countries = append(countries, c)
		}
	}
	return countries
}

// countryName prefers the ISO name and falls back to the external name.
func countryName(e common.Entity, isoAttr, externalNameAttr string) (string, bool) {
	for _, attr := range []string{isoAttr, externalNameAttr} {
		a, ok := e.Data.Attribute(attr)
		if !ok {
			continue
		}
		if v, ok := a.FirstValue(); ok {
			return v, true
		}
	}
	return "", false
}

func loaded(countries []string) *common.GeoChart {
	rows := make([][]string, 0, len(countries)+1)
	rows = append(rows, common.GeoChartHeader)
	for _, c := range countries {
		rows = append(rows, []string{c})
	}
	return &common.GeoChart{
		Loaded:  true,
		Rows:    rows,
		Options: common.GeoChartOptions{DefaultColor: DefaultColor},
	}
}

func notLoaded(message string) *common.GeoChart {
	return &common.GeoChart{
		Loaded:  false,
		Rows:    [][]string{},
		Options: common.GeoChartOptions{DefaultColor: DefaultColor},
		Message: message,
	}
}
