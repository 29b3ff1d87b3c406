package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/divvault/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotLoggedIn  = errors.New("not logged in")
)

type errorBody struct {
	Err string `json:"err"`
}

// mapStatus turns a non-2xx response into an error carrying the server's
// reason.
func mapStatus(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	reason := body.Err
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = common.ErrInvalidInput
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusForbidden:
		kind = common.ErrForbidden
	case http.StatusNotFound:
		kind = common.ErrorNotFound
	default:
		kind = common.ErrorInternal
	}

	return common.WithReason(kind, reason)
}
