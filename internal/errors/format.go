package errors

import (
	"encoding/json"
)

// jsonError is the wire representation of a SentinelError.
type jsonError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Kind      string            `json:"kind"`
	Severity  string            `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
	Cause     string            `json:"cause,omitempty"`
	Retryable bool              `json:"retryable"`
}

// FormatJSON renders err (wrapping plain errors under ERR_I01) for machine consumption.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}
	se, ok := err.(*SentinelError)
	if !ok {
		se = Wrap(ErrCodeIndexAddFailed, err)
	}
	je := jsonError{
		Code:      se.Code,
		Message:   se.Message,
		Kind:      string(se.Kind),
		Severity:  string(se.Severity),
		Details:   se.Details,
		Retryable: se.Retryable,
	}
	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}
	return json.Marshal(je)
}

// LogAttrs flattens err into key-value pairs suitable for slog.Any/slog.Group.
func LogAttrs(err error) map[string]any {
	if err == nil {
		return nil
	}
	se, ok := err.(*SentinelError)
	if !ok {
		return map[string]any{"error": err.Error()}
	}
	out := map[string]any{
		"error_code": se.Code,
		"message":    se.Message,
		"kind":       string(se.Kind),
		"severity":   string(se.Severity),
		"retryable":  se.Retryable,
	}
	if se.Cause != nil {
		out["cause"] = se.Cause.Error()
	}
	for k, v := range se.Details {
		out["detail_"+k] = v
	}
	return out
}
