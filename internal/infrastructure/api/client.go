package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/shop-client/internal/domain"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// TokenSource provee la credencial bearer que se adjunta a cada petición
// autenticada. La implementa el session store.
type TokenSource interface {
	Token() string
}

// Client cliente JSON-sobre-HTTP del backend de la tienda.
// Usa net/http de la stdlib; clasifica cada fallo en la taxonomía de
// domain.APIError y señala todo 401 vía el hook de fallo de autenticación.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logger.Logger

	// onAuthFailure se invoca ante cada respuesta clase 401, sin importar qué
	// operación la produjo. La idempotencia del teardown la garantiza el store.
	onAuthFailure func()
}

// NewClient construye el cliente. onAuthFailure puede ser nil (tests).
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, onAuthFailure func(), log *logger.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		tokens:        tokens,
		log:           log,
		onAuthFailure: onAuthFailure,
	}
}

// errorBody cuerpo de error estructurado que devuelve el backend.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"` // algunos endpoints usan "error" en vez de "message"
}

// do ejecuta una petición JSON y decodifica la respuesta en out (out nil = descartar cuerpo).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqID := uuid.NewString()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.NewValidationError(fmt.Sprintf("serializar request: %v", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return domain.NewValidationError(fmt.Sprintf("crear HTTP request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug().Str("request_id", reqID).Str("method", method).Str("path", path).Msg("petición API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Str("request_id", reqID).Err(err).Msg("fallo de transporte")
		return domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewNetworkError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := domain.NewAuthError(resp.StatusCode, parseErrorCode(rawBody), parseErrorMessage(rawBody))
		c.log.Debug().Str("request_id", reqID).Msg("respuesta 401: señal de fallo de autenticación")
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewApplicationError(resp.StatusCode, parseErrorCode(rawBody), parseErrorMessage(rawBody))
	}

	if out == nil || len(rawBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return domain.NewApplicationError(resp.StatusCode, "BAD_RESPONSE", fmt.Sprintf("decodificar respuesta: %v", err))
	}
	return nil
}

func parseErrorCode(raw []byte) string {
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		return eb.Code
	}
	return ""
}

func parseErrorMessage(raw []byte) string {
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
