package api

import (
	"context"
	"fmt"
)

// SearchFlights looks up offers for one route and date.
func (c *Client) SearchFlights(ctx context.Context, req FlightSearchRequest) (*FlightSearchResponse, error) {
	switch {
	case req.Origin == "":
		return nil, missing("origin")
	case req.Destination == "":
		return nil, missing("destination")
	case req.Date == "":
		return nil, missing("date")
	}
	if req.Passengers <= 0 {
		req.Passengers = 1
	}

	var resp FlightSearchResponse
	if err := c.post(ctx, "/api/v1/flights/search", req, &resp); err != nil {
		return nil, fmt.Errorf("search flights %s-%s: %w", req.Origin, req.Destination, err)
	}
	return &resp, nil
}
