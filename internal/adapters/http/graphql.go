package http

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geostore/internal/adapters/geojson"
	"github.com/samirrijal/geostore/internal/core/domain"
)

// featureToGraph flattens a feature into the map the Feature type resolves
// from. GeoJSON and properties travel as JSON strings.
func featureToGraph(f *domain.Feature, digits int) (map[string]any, error) {
	resp, err := newFeatureResponse(f, digits)
	if err != nil {
		return nil, err
	}
	m := map[string]any{
		"id":         resp.ID,
		"name":       resp.Name,
		"srid":       int(resp.SRID),
		"type":       resp.Type,
		"dimension":  resp.Dimension,
		"geometry":   string(resp.Geometry),
		"ewkb":       resp.EWKB,
		"created_at": resp.CreatedAt.Format(time.RFC3339),
	}
	if resp.Distance != nil {
		m["distance"] = *resp.Distance
	}
	if len(resp.Properties) > 0 {
		props, err := json.Marshal(resp.Properties)
		if err != nil {
			return nil, err
		}
		m["properties"] = string(props)
	}
	return m, nil
}

func featuresToGraph(features []domain.Feature, digits int) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(features))
	for i := range features {
		m, err := featureToGraph(&features[i], digits)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"srid":       &graphql.Field{Type: graphql.Int},
			"type":       &graphql.Field{Type: graphql.String},
			"dimension":  &graphql.Field{Type: graphql.String},
			"geometry":   &graphql.Field{Type: graphql.String, Description: "GeoJSON geometry"},
			"ewkb":       &graphql.Field{Type: graphql.String, Description: "Hex EWKB"},
			"properties": &graphql.Field{Type: graphql.String, Description: "JSON object"},
			"created_at": &graphql.Field{Type: graphql.String},
			"distance":   &graphql.Field{Type: graphql.Float},
		},
	})

	inspectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Inspection",
		Fields: graphql.Fields{
			"byte_order": &graphql.Field{Type: graphql.String},
			"type":       &graphql.Field{Type: graphql.String},
			"dimension":  &graphql.Field{Type: graphql.String},
			"srid":       &graphql.Field{Type: graphql.Int},
			"elements":   &graphql.Field{Type: graphql.Int},
			"bytes":      &graphql.Field{Type: graphql.Int},
			"geometry":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"feature": &graphql.Field{
				Type:        featureType,
				Description: "Get a feature by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					f, err := deps.Features.Get(p.Context, id)
					if err != nil {
						return nil, err
					}
					return featureToGraph(f, deps.MaxDecimalDigits)
				},
			},
			"features": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "List features, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					offset, _ := p.Args["offset"].(int)
					limit, _ := p.Args["limit"].(int)
					features, _, err := deps.Features.List(p.Context, offset, limit)
					if err != nil {
						return nil, err
					}
					return featuresToGraph(features, deps.MaxDecimalDigits)
				},
			},
			"nearestFeatures": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Features closest to a point",
				Args: graphql.FieldConfigArgument{
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"srid":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					lon, _ := p.Args["lon"].(float64)
					lat, _ := p.Args["lat"].(float64)
					srid, _ := p.Args["srid"].(int)
					limit, _ := p.Args["limit"].(int)
					if srid < 0 {
						srid = 0
					}
					features, err := deps.Features.Nearest(p.Context, lon, lat, uint32(srid), limit)
					if err != nil {
						return nil, err
					}
					return featuresToGraph(features, deps.MaxDecimalDigits)
				},
			},
			"inspect": &graphql.Field{
				Type:        inspectionType,
				Description: "Decode hex EWKB",
				Args: graphql.FieldConfigArgument{
					"hex":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"srid": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					hexEWKB, _ := p.Args["hex"].(string)
					srid, _ := p.Args["srid"].(int)
					if srid < 0 {
						srid = 0
					}
					ins, err := deps.Codec.Inspect(p.Context, hexEWKB, uint32(srid))
					if err != nil {
						return nil, err
					}
					gj, err := geojson.Marshal(ins.Geometry, deps.MaxDecimalDigits)
					if err != nil {
						return nil, err
					}
					m := map[string]any{
						"byte_order": ins.ByteOrder,
						"type":       ins.Type,
						"dimension":  ins.Dimension,
						"elements":   ins.Elements,
						"bytes":      ins.Bytes,
						"geometry":   string(gj),
					}
					if ins.SRID != nil {
						m["srid"] = int(*ins.SRID)
					}
					if ins.BBox != nil {
						m["bbox"] = ins.BBox
					}
					if ins.LengthMeters != nil {
						m["length_m"] = *ins.LengthMeters
					}
					return m, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// A schema error is a programming error.
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
