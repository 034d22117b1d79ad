package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	cerr "github.com/surf-rdm/surfmeta/cmd/surfmeta/errors"
	"github.com/surf-rdm/surfmeta/pkg/api/types/ckan"
)

// call POSTs a JSON payload to a CKAN action and decodes the result out
// of CKAN's response envelope into result (skipped when result is nil).
//
// CKAN reports its own failures inside the envelope with an __type
// discriminator; those map onto the error taxonomy. Anything that is not
// a well-formed envelope is a transport failure.
func (c *client) call(ctx context.Context, action string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransport, action, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.actionpath(action), bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransport, action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransport, action, err)
	}
	defer resp.Body.Close()

	return unmarshalEnvelope(action, resp, result)
}

func unmarshalEnvelope(action string, resp *http.Response, result any) error {
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: cannot read response: %s", ErrTransport, action, err)
	}

	env := ckan.Envelope{}
	if err := json.Unmarshal(buf, &env); err != nil {
		return cerr.NewCuiError(
			fmt.Sprintf("%s: broken response (status code = %d)", action, resp.StatusCode),
			cerr.WithCause(fmt.Errorf("%w: %s: %s", ErrTransport, action, err)),
			cerr.WithDetail(func(summary string) (string, error) {
				return summary + "\n" + string(buf), nil
			}),
		)
	}

	if !env.Success {
		return envelopeError(action, env.Error, resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("%w: %s: unexpected result shape: %s", ErrTransport, action, err)
	}
	return nil
}

func envelopeError(action string, detail *ckan.ErrorDetail, statusCode int) error {
	if detail == nil {
		return fmt.Errorf(
			"%w: %s: failed without detail (status code = %d)",
			ErrTransport, action, statusCode,
		)
	}

	var sentinel error
	switch detail.Type {
	case "Not Found Error":
		sentinel = ErrNotFound
	case "Authorization Error":
		sentinel = ErrNotAuthorized
	case "Validation Error":
		sentinel = ErrValidation
	default:
		sentinel = ErrTransport
	}
	return cerr.NewCuiError(
		fmt.Sprintf("%s: %s", action, detail),
		cerr.WithCause(fmt.Errorf("%w: %s: %s", sentinel, action, detail.Message)),
		cerr.WithVerbose(fmt.Sprintf("status code = %d", statusCode)),
	)
}
