package simclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoBuilding is returned when a simulation is started without a building.
var ErrNoBuilding = errors.New("simclient: no building selected")

// APIError is a non-2xx response from the simulator.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsNotFound reports whether err is a 404 from the simulator.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
