package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/coronavstech/companies/internal/company/models"
)

const (
	maxBodyBytes   = 1 << 20
	maxMemoryBytes = 32 << 20
)

// omitBlankFormValue lists optional fields for which an empty form value
// means "not sent". Blank-able text fields keep the empty string and a blank
// name is still reported.
var omitBlankFormValue = map[string]bool{
	models.FieldStatus:     true,
	models.FieldLastUpdate: true,
}

// decodeInput reads a JSON, url-encoded or multipart body. On failure the
// response has been written and ok is false.
func (h *HTTPHandler) decodeInput(w http.ResponseWriter, r *http.Request) (*models.CompanyInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			writeDetail(w, http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported media type %q in request.", ct))
			return nil, false
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/json":
		data, err := decodeJSONObject(r.Body)
		if err != nil {
			var notObject *notObjectError
			if errors.As(err, &notObject) {
				writeJSON(w, http.StatusBadRequest, map[string][]string{
					"non_field_errors": {notObject.Error()},
				})
				return nil, false
			}
			writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
			return nil, false
		}
		return inputFromMap(data), true
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemoryBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			writeDetail(w, http.StatusBadRequest, "Form parse error - "+err.Error())
			return nil, false
		}
		data := make(map[string]interface{}, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) == 0 || (values[0] == "" && omitBlankFormValue[key]) {
				continue
			}
			data[key] = values[0]
		}
		return inputFromMap(data), true
	default:
		writeDetail(w, http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported media type %q in request.", mediaType))
		return nil, false
	}
}

type notObjectError struct {
	got string
}

func (n *notObjectError) Error() string {
	return fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", n.got)
}

// decodeJSONObject decodes a single JSON object. An empty body is an empty
// object.
func decodeJSONObject(body io.Reader) (map[string]interface{}, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}

	switch data := v.(type) {
	case map[string]interface{}:
		return data, nil
	case []interface{}:
		return nil, &notObjectError{got: "list"}
	case string:
		return nil, &notObjectError{got: "str"}
	case json.Number:
		return nil, &notObjectError{got: "number"}
	case bool:
		return nil, &notObjectError{got: "bool"}
	default:
		return nil, &notObjectError{got: "null"}
	}
}
