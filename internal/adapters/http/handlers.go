package http

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/geostore/internal/adapters/geojson"
	"github.com/samirrijal/geostore/internal/core/domain"
	"github.com/samirrijal/geostore/internal/core/ewkb"
	"github.com/samirrijal/geostore/internal/core/usecases"
)

// FeatureResponse is the JSON document for a stored feature. Geometry is
// GeoJSON; EWKB is the stored little-endian form in upper-case hex.
type FeatureResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	SRID       uint32          `json:"srid"`
	Type       string          `json:"type"`
	Dimension  string          `json:"dimension"`
	Geometry   json.RawMessage `json:"geometry"`
	EWKB       string          `json:"ewkb"`
	Properties map[string]any  `json:"properties,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Distance   *float64        `json:"distance,omitempty"`
}

func newFeatureResponse(f *domain.Feature, digits int) (FeatureResponse, error) {
	gj, err := geojson.Marshal(f.Geometry, digits)
	if err != nil {
		return FeatureResponse{}, err
	}
	data, err := ewkb.EncodeGeometry(f.Geometry, f.SRID)
	if err != nil {
		return FeatureResponse{}, err
	}
	return FeatureResponse{
		ID:         f.ID,
		Name:       f.Name,
		SRID:       f.SRID,
		Type:       f.Geometry.Type().String(),
		Dimension:  f.Geometry.Dimension().String(),
		Geometry:   gj,
		EWKB:       ewkb.EncodeHex(data),
		Properties: f.Properties,
		CreatedAt:  f.CreatedAt,
		Distance:   f.Distance,
	}, nil
}

func newFeatureResponses(features []domain.Feature, digits int) ([]FeatureResponse, error) {
	out := make([]FeatureResponse, 0, len(features))
	for i := range features {
		r, err := newFeatureResponse(&features[i], digits)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// createFeatureRequest accepts either a GeoJSON geometry or hex EWKB.
type createFeatureRequest struct {
	Name       string          `json:"name"`
	SRID       uint32          `json:"srid"`
	Geometry   json.RawMessage `json:"geometry"`
	EWKB       string          `json:"ewkb"`
	Properties map[string]any  `json:"properties"`
}

// CreateFeatureHandler stores a new feature.
func CreateFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFeatureRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		in := usecases.CreateFeatureInput{
			Name:       req.Name,
			SRID:       req.SRID,
			Properties: req.Properties,
		}
		hasGeometry := len(req.Geometry) > 0 && string(req.Geometry) != "null"
		if hasGeometry {
			g, err := geojson.Unmarshal(req.Geometry)
			if err != nil {
				return respondError(c, err)
			}
			in.Geometry = g
		}
		if req.EWKB != "" {
			data, err := ewkb.DecodeHex(req.EWKB)
			if err != nil {
				return respondError(c, err)
			}
			in.EWKB = data
		}

		f, err := deps.Features.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		resp, err := newFeatureResponse(f, deps.MaxDecimalDigits)
		if err != nil {
			return respondError(c, err)
		}
		c.Location("/v1/features/" + f.ID)
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// featureID reads and validates the :id route parameter.
func featureID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// GetFeatureHandler returns a single feature by ID.
func GetFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := featureID(c)
		if !ok {
			return errBadRequest(c, "feature id must be a UUID")
		}
		f, err := deps.Features.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		resp, err := newFeatureResponse(f, deps.MaxDecimalDigits)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(resp)
	}
}

// GetFeatureEWKBHandler returns the stored geometry as raw EWKB bytes.
func GetFeatureEWKBHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := featureID(c)
		if !ok {
			return errBadRequest(c, "feature id must be a UUID")
		}
		f, err := deps.Features.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		data, err := ewkb.EncodeGeometry(f.Geometry, f.SRID)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/octet-stream")
		return c.Send(data)
	}
}

// DeleteFeatureHandler removes a feature.
func DeleteFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := featureID(c)
		if !ok {
			return errBadRequest(c, "feature id must be a UUID")
		}
		if err := deps.Features.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListFeaturesHandler returns a page of features, newest first.
func ListFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		features, total, err := deps.Features.List(c.UserContext(), offset, limit)
		if err != nil {
			return respondError(c, err)
		}
		data, err := newFeatureResponses(features, deps.MaxDecimalDigits)
		if err != nil {
			return respondError(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: data, Pagination: pg})
	}
}

// NearestFeaturesHandler returns the features closest to lon/lat.
func NearestFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lon, err := strconv.ParseFloat(c.Query("lon"), 64)
		if err != nil {
			return errBadRequest(c, "lon and lat are required")
		}
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			return errBadRequest(c, "lon and lat are required")
		}
		srid := c.QueryInt("srid", 0)
		if srid < 0 {
			return errBadRequest(c, "srid must be positive")
		}
		if srid == 0 || uint32(srid) == domain.SRIDWGS84 {
			if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
				return errBadRequest(c, "lon must be within [-180, 180] and lat within [-90, 90]")
			}
		}
		limit := c.QueryInt("limit", 10)

		features, err := deps.Features.Nearest(c.UserContext(), lon, lat, uint32(srid), limit)
		if err != nil {
			return respondError(c, err)
		}
		data, err := newFeatureResponses(features, deps.MaxDecimalDigits)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(data)
	}
}

type inspectRequest struct {
	Hex  string `json:"hex"`
	SRID uint32 `json:"srid"`
}

// InspectResponse describes a decoded EWKB payload.
type InspectResponse struct {
	*usecases.Inspection
	Geometry json.RawMessage `json:"geometry"`
}

// InspectHandler decodes hex EWKB and reports its header and geometry.
func InspectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req inspectRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Hex) == "" {
			return errBadRequest(c, "hex is required")
		}

		ins, err := deps.Codec.Inspect(c.UserContext(), req.Hex, req.SRID)
		if err != nil {
			return respondError(c, err)
		}
		gj, err := geojson.Marshal(ins.Geometry, deps.MaxDecimalDigits)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(InspectResponse{Inspection: ins, Geometry: gj})
	}
}

type encodeRequest struct {
	Geometry json.RawMessage `json:"geometry"`
	SRID     uint32          `json:"srid"`
}

// EncodeHandler converts a GeoJSON geometry into hex EWKB.
func EncodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req encodeRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Geometry) == 0 || string(req.Geometry) == "null" {
			return errBadRequest(c, "geometry is required")
		}

		g, err := geojson.Unmarshal(req.Geometry)
		if err != nil {
			return respondError(c, err)
		}
		hexEWKB, err := deps.Codec.Encode(c.UserContext(), g, req.SRID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"ewkb":      hexEWKB,
			"type":      g.Type().String(),
			"dimension": g.Dimension().String(),
		})
	}
}
