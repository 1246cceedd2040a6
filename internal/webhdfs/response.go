package webhdfs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyBody is returned when a structured reply has no content.
	ErrEmptyBody = errors.New("webhdfs: empty response body")
	// ErrMissingMember is returned when the expected wrapper is absent.
	ErrMissingMember = errors.New("webhdfs: missing response member")
)

// RemoteException is the error document returned by the service for non-2xx
// responses.
type RemoteException struct {
	Exception     string `json:"exception"`
	Message       string `json:"message"`
	JavaClassName string `json:"javaClassName"`
}

func (e *RemoteException) String() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Exception
	}
	return fmt.Sprintf("%s: %s", e.Exception, e.Message)
}

// ExtractRemoteException unwraps {"RemoteException": {...}}. It returns nil
// when the body is not such a document.
func ExtractRemoteException(body []byte) *RemoteException {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var envelope struct {
		RemoteException *RemoteException `json:"RemoteException"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.RemoteException == nil {
		return nil
	}
	if envelope.RemoteException.Exception == "" && envelope.RemoteException.Message == "" {
		return nil
	}
	return envelope.RemoteException
}

// ExtractMember returns the raw JSON stored under key in a top level object.
// Unknown sibling members are ignored. A missing member is reported as an
// error since every structured reply carries exactly one wrapper.
func ExtractMember(body []byte, key string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyBody
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingMember, key)
	}
	return raw, nil
}

// DecodeMember decodes the member stored under key into out.
func DecodeMember(body []byte, key string, out any) error {
	raw, err := ExtractMember(body, key)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		raw = []byte("null")
	}
	return json.Unmarshal(raw, out)
}
