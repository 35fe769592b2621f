package rest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
)

// JSONContentType content type for JSON request bodies
const JSONContentType = "application/json"

// FormFile file attached to a multipart payload
type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

// EncodeJSON marshal v for use as a request body
func EncodeJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeJSON unmarshal a response body into v, unwrapping an optional
// `{"data": ...}` envelope used by some endpoints
func DecodeJSON(payload []byte, v interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && len(envelope.Data) > 0 {
		payload = envelope.Data
	}
	return json.Unmarshal(payload, v)
}

// EncodeMultipart build a multipart/form-data body from plain fields and files
func EncodeMultipart(fields map[string]string, files ...*FormFile) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range files {
		if file == nil {
			continue
		}
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// EntityID pick the canonical identifier from the fields a response may
// carry. The deployed API emits Mongo style `_id`, some endpoints `id`;
// resolvers expose a single ID so the rest of the system never sees the
// naming inconsistency
func EntityID(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}
