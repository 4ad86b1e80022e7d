package service

import "fmt"

// ServiceError is a failure reported by the matcher service itself:
// a non-2xx status or a body whose status field is not "success".
// Message holds the service's own user-facing sentence ("detail" or
// "message" field), when one was present.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("matcher service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("matcher service returned %d: %s", e.StatusCode, e.Message)
}
