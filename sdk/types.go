package sdk

import (
	"encoding/json"
	"net/url"
)

// ResourceQuery holds the optional filters of a resource listing. Empty
// fields are not sent; set fields must all match.
type ResourceQuery struct {
	ID           string
	Name         string
	ResourceType string
}

func (q ResourceQuery) values() url.Values {
	v := url.Values{}
	if q.ID != "" {
		v.Set("id", q.ID)
	}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.ResourceType != "" {
		v.Set("resourceType", q.ResourceType)
	}
	return v
}

// HealthStatus is the body of a readiness probe.
type HealthStatus struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
	Store      string `json:"store,omitempty"`
}

// envelope is the success wrapper of every API response.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}
