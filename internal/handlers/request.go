// Package handlers provides HTTP and Lambda handlers for the churn prediction engine.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ErrUnsupportedBody is returned for bodies that are neither form-encoded nor JSON.
var ErrUnsupportedBody = errors.New("unsupported request body")

// MaxBodyBytes bounds prediction request bodies.
const MaxBodyBytes = 64 << 10

// ParseFields turns a form-encoded or JSON body into prediction fields.
// JSON values may be strings, numbers or booleans.
func ParseFields(contentType string, body []byte) (map[string]string, error) {
	mediaType := ""
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: bad content type %q", ErrUnsupportedBody, contentType)
		}
		mediaType = mt
	}

	switch {
	case mediaType == "application/json",
		mediaType == "" && bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")):
		return parseJSONFields(body)
	case mediaType == "application/x-www-form-urlencoded", mediaType == "":
		return parseFormFields(body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBody, mediaType)
	}
}

func parseFormFields(body []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedBody, err)
	}
	return fieldsFromValues(values), nil
}

func fieldsFromValues(values url.Values) map[string]string {
	fields := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return fields
}

func parseJSONFields(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrUnsupportedBody, err)
	}

	fields := make(map[string]string, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case string:
			fields[key] = val
		case json.Number:
			fields[key] = val.String()
		case bool:
			fields[key] = boolField(val)
		case nil:
			// treated as missing
		default:
			return nil, fmt.Errorf("%w: field %s must be a scalar", ErrUnsupportedBody, key)
		}
	}
	return fields, nil
}

// HasCrCard and IsActiveMember are 0/1 flags.
func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// requestFields reads the prediction fields from an HTTP request.
func requestFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBody, err)
	}

	return ParseFields(r.Header.Get("Content-Type"), buf.Bytes())
}

// headerValue does a case-insensitive lookup in API Gateway headers.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// lambdaRequestID prefers the API Gateway request id.
func lambdaRequestID(req events.APIGatewayProxyRequest) string {
	if id := headerValue(req.Headers, "X-Request-Id"); id != "" {
		return id
	}
	return req.RequestContext.RequestID
}
