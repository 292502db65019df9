package openai

import (
	"context"
	"errors"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/content-alchemist/internal/core/domain"
	"github.com/kirillkom/content-alchemist/internal/infrastructure/resilience"
)

// classifyServiceError separates transient service failures (retried) from
// permanent ones (auth, malformed request). Schema violations are
// transient: a re-ask often yields a well-formed reply, but they do not
// count against the circuit breaker since the connection is healthy.
func classifyServiceError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}
	if domain.IsKind(err, domain.ErrSchemaViolation) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: false,
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isRetryableHTTPStatus(apiErr.HTTPStatusCode) {
			return resilience.ErrorClassification{
				Retryable:     true,
				RecordFailure: true,
			}
		}
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
