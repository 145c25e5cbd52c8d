package rest

import (
	"fmt"
	"maps"
	"strings"

	"nakula/pkg/core"
)

// buildRequest turns a logical call into a transport-ready RequestSpec.
//
// URI parameters are appended to the URL before the authentication provider
// runs so the provider sees the complete parameter set; the final URL is then
// re-derived from the provider's returned URI parameters, sorted by key so
// signatures are reproducible.
func (c *Client) buildRequest(method, uri string, o *callOptions,
	position core.ParameterPosition, arraySerialization core.ArraySerialization, requestID int64,
) (*core.RequestSpec, *core.APIError) {
	resolved := o.params.Resolve()

	uriParams := core.Params{}
	bodyParams := core.Params{}
	if position == core.PositionInURI {
		uriParams = resolved
	} else {
		bodyParams = resolved
	}

	rawURL := joinURL(c.config.BaseURL, uri)

	var providerHeaders map[string]string
	if o.signed && c.auth != nil {
		signURL := rawURL
		if len(uriParams) > 0 {
			signURL = rawURL + "?" + core.EncodeQuery(uriParams, arraySerialization)
		}

		up, bp, headers, err := c.auth.Sign(method, signURL, uriParams, bodyParams, true, arraySerialization, position)
		if err != nil {
			return nil, core.NewValidationError("request signing failed", err)
		}
		verifyParamsAccounted(resolved, up, bp)
		uriParams, bodyParams, providerHeaders = up, bp, headers
	}

	finalURL := rawURL
	if len(uriParams) > 0 {
		finalURL = rawURL + "?" + core.EncodeQuery(uriParams, arraySerialization)
	}

	// Header priority: provider headers, overridden by caller-supplied extras;
	// client-standard headers only fill names not already present.
	headers := make(map[string]string)
	maps.Copy(headers, providerHeaders)
	maps.Copy(headers, o.headers)
	for k, v := range c.config.StandardHeaders {
		if _, ok := headers[k]; !ok {
			headers[k] = v
		}
	}

	body := ""
	if position == core.PositionInBody {
		var apiErr *core.APIError
		body, apiErr = c.serializeBody(bodyParams, arraySerialization, headers)
		if apiErr != nil {
			return nil, apiErr
		}
	}

	return &core.RequestSpec{
		ID:      requestID,
		Method:  method,
		URL:     finalURL,
		Headers: headers,
		Body:    body,
	}, nil
}

// serializeBody encodes body parameters in the configured format. When no
// body parameters exist the configured empty-body placeholder is used so the
// content type is never omitted.
func (c *Client) serializeBody(bodyParams core.Params, arraySerialization core.ArraySerialization, headers map[string]string) (string, *core.APIError) {
	contentType := "application/json"
	if c.config.BodyFormat == core.BodyFormatFormEncoded {
		contentType = "application/x-www-form-urlencoded"
	}

	body := c.config.EmptyBodyContent
	if len(bodyParams) > 0 {
		switch c.config.BodyFormat {
		case core.BodyFormatFormEncoded:
			body = core.EncodeQuery(bodyParams, arraySerialization)
		default:
			data, err := c.serializer.Marshal(bodyParams)
			if err != nil {
				return "", core.NewValidationError("serialize request body", err)
			}
			body = string(data)
		}
	}

	if _, ok := headers["Content-Type"]; !ok {
		headers["Content-Type"] = contentType
	}
	return body, nil
}

// verifyParamsAccounted enforces the authentication provider contract: every
// original parameter key appears in exactly one of the returned sets. A
// violation is a misconfigured collaborator, not a runtime condition.
func verifyParamsAccounted(original, uriParams, bodyParams core.Params) {
	for key := range original {
		_, inURI := uriParams[key]
		_, inBody := bodyParams[key]
		if inURI == inBody {
			panic(fmt.Sprintf("authentication provider contract violation: parameter %q must appear in exactly one of uri/body parameter sets", key))
		}
	}
}

func joinURL(base, uri string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(uri, "/")
}
