package transport

import (
	"io"
	"net/http"

	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// maxErrorBody caps how much of an error response is kept in the message.
const maxErrorBody = 512

// ReadBody reads and closes the response body, returning an
// *errors.APIError for any status other than 200.
func ReadBody(resp *http.Response, source string) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("source", source).Msg("Failed to close response body")
		}
	}()

	endpoint := ""
	if resp.Request != nil && resp.Request.URL != nil {
		endpoint = resp.Request.URL.String()
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := resp.Status
		if len(body) > 0 && resp.StatusCode != http.StatusNotFound {
			msg = string(body)
		}
		apiErr := errors.NewAPIError(source, resp.StatusCode, msg)
		apiErr.Endpoint = endpoint
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}
	return body, nil
}
