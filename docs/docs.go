// Package docs YK Bike Finder API.
//
// Documentation of the YK Bike Finder matching API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/stolen-bike/{stolen_bike_id} stolenBike stolenBikeByID
// Gets a single stolen bike report by ID.
// responses:
//   200: stolenBikeByIDResponse

// Shows a single stolen bike report by the given {ID}
// swagger:response stolenBikeByIDResponse
type stolenBikeByIDResponseWrapper struct {
	// in:body
	Body models.StolenBike
}

// swagger:route GET /api/v1/found-bike/{found_bike_id} foundBike foundBikeByID
// Gets a single found bike report by ID.
// responses:
//   200: foundBikeByIDResponse

// Shows a single found bike report by the given {ID}
// swagger:response foundBikeByIDResponse
type foundBikeByIDResponseWrapper struct {
	// in:body
	Body models.FoundBike
}

// swagger:route GET /api/v1/match/{match_id} match matchByID
// Gets a single match by ID.
// responses:
//   200: matchByIDResponse

// Shows a single match by the given {ID}
// swagger:response matchByIDResponse
type matchByIDResponseWrapper struct {
	// in:body
	Body models.Match
}
