package menu

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork   = errors.New("menu: network error")
	ErrMalformed = errors.New("menu: malformed data")
	ErrNoData    = errors.New("menu: no data")
)

// NetworkError reports a transport failure, timeout or non-2xx response.
type NetworkError struct {
	RestaurantID string
	StatusCode   int // 0 when the request never got a response
	Err          error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch menu %q: status %d", e.RestaurantID, e.StatusCode)
	}
	return fmt.Sprintf("fetch menu %q: %v", e.RestaurantID, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// MalformedDataError reports a response that could not be read as a menu.
type MalformedDataError struct {
	RestaurantID string
	Err          error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("decode menu %q: %v", e.RestaurantID, e.Err)
}

func (e *MalformedDataError) Unwrap() []error { return []error{ErrMalformed, e.Err} }

// NoDataError reports a missing restaurant identifier or an empty menu.
type NoDataError struct {
	RestaurantID string
	Reason       string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("menu %q: %s", e.RestaurantID, e.Reason)
}

func (e *NoDataError) Unwrap() error { return ErrNoData }

// BannerMessage is the user-facing text for a failed menu load.
func BannerMessage(err error) string {
	switch {
	case errors.Is(err, ErrNetwork):
		return "We couldn't reach the restaurant's menu. Please try again later."
	case errors.Is(err, ErrMalformed):
		return "The menu could not be read."
	case errors.Is(err, ErrNoData):
		return "This restaurant has no menu to show."
	default:
		return "Something went wrong while loading the menu."
	}
}
