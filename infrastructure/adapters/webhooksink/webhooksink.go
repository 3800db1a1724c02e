// Package webhooksink implements an HTTP POST Sink, substituting
// {process_id}/{series_id}/{calculation_date} into the path template before
// posting the formatted result as its request body.
package webhooksink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/curetrace/engine/infrastructure/adapters"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// Sink POSTs a formatted result to a base URL plus a resolved path.
type Sink struct {
	BaseURL string
	Client  *http.Client
	PathCtx adapters.PathContext
}

// New constructs a webhooksink.Sink posting against baseURL, substituting
// pathCtx into every write's path template.
func New(baseURL string, pathCtx adapters.PathContext) *Sink {
	return &Sink{BaseURL: baseURL, Client: http.DefaultClient, PathCtx: pathCtx}
}

// Write POSTs formatted as JSON to BaseURL + the resolved path.
func (s *Sink) Write(ctx context.Context, formatted interface{}, pathTemplate string) (string, error) {
	path := adapters.ResolvePath(pathTemplate, s.PathCtx)
	url := s.BaseURL + "/" + path

	payload, err := json.Marshal(formatted)
	if err != nil {
		return "", engineerrors.AdapterError("webhooksink", "marshal", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", engineerrors.AdapterError("webhooksink", "request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", engineerrors.AdapterError("webhooksink", "post", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", engineerrors.AdapterError("webhooksink", "post", errNonSuccessStatus(resp.StatusCode))
	}
	return url, nil
}

type httpStatusError int

func (e httpStatusError) Error() string {
	return "webhook responded with non-success status"
}

func errNonSuccessStatus(code int) error {
	return httpStatusError(code)
}
