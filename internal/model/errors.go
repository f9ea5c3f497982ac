package model

import "fmt"

// ConfigurationError indicates the client was used before credentials were supplied.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Message
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

// AuthenticationError indicates the portal rejected the credentials. The portal
// answers HTTP 200 either way; the only reliable signal is the missing
// view-state input in the login response.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication: " + e.Message
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

// TransportError represents a failed HTTP exchange: non-2xx status, timeout, or
// connection failure.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Timeout    bool
	Cause      error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("transport [%s]: timeout on %s", e.Op, e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport [%s]: unexpected status %d from %s", e.Op, e.StatusCode, e.URL)
	case e.Cause != nil:
		return fmt.Sprintf("transport [%s]: %s: %v", e.Op, e.URL, e.Cause)
	}
	return fmt.Sprintf("transport [%s]: request to %s failed", e.Op, e.URL)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a transport error for a non-2xx response
func NewTransportError(op, url string, statusCode int) *TransportError {
	return &TransportError{Op: op, URL: url, StatusCode: statusCode}
}

// NewTransportTimeout creates a transport error for an expired request deadline
func NewTransportTimeout(op, url string, cause error) *TransportError {
	return &TransportError{Op: op, URL: url, Timeout: true, Cause: cause}
}

// WrapTransportError wraps a connection-level failure
func WrapTransportError(op, url string, cause error) *TransportError {
	return &TransportError{Op: op, URL: url, Cause: cause}
}

// MenuDiscoveryError indicates the expected navigation fragment was absent from
// the portal's partial-update response.
type MenuDiscoveryError struct {
	Message string
}

func (e *MenuDiscoveryError) Error() string {
	return "menu discovery: " + e.Message
}

// NewMenuDiscoveryError creates a new menu discovery error
func NewMenuDiscoveryError(message string) *MenuDiscoveryError {
	return &MenuDiscoveryError{Message: message}
}

// MalformedDocumentError indicates the DTE XML lacked expected structure or an
// expected value format.
type MalformedDocumentError struct {
	Field   string
	Message string
	Cause   error
}

func (e *MalformedDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed document [%s]: %s (%v)", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed document [%s]: %s", e.Field, e.Message)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// NewMalformedDocumentError creates a new malformed document error
func NewMalformedDocumentError(field, message string, cause error) *MalformedDocumentError {
	return &MalformedDocumentError{Field: field, Message: message, Cause: cause}
}

// IntegrityError indicates content recovered through the contingency path
// failed its signature check.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string {
	return "integrity: " + e.Message
}

// NewIntegrityError creates a new integrity error
func NewIntegrityError(message string) *IntegrityError {
	return &IntegrityError{Message: message}
}
