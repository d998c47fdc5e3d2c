// Пакет marketplace — REST-клиент внешнего бэкенда маркетплейса курсов.
// Успех — любой 2xx; тело разбирается только при JSON Content-Type.
// GET-запросы повторяются (API_READ_RETRIES), записи выполняются ровно один раз.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ErrNotFound — объект не найден на стороне бэкенда (или в его списке).
var ErrNotFound = errors.New("объект не найден")

// Две известные формулировки поля error для повторной записи на курс.
var alreadyEnrolledMessages = map[string]struct{}{
	"Already enrolled":                     {},
	"User already enrolled in this course": {},
}

// APIError — ответ бэкенда с не-2xx статусом.
type APIError struct {
	StatusCode int
	// ErrorField — значение поля "error" из JSON-тела (может быть пустым)
	ErrorField string
	// Message — человекочитаемое описание: error, message или текст статуса
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("бэкенд вернул статус %d: %s", e.StatusCode, e.Message)
}

// IsAlreadyEnrolled распознаёт ответ "уже записан" на POST /enrollments.
func IsAlreadyEnrolled(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	_, ok := alreadyEnrolledMessages[strings.TrimSpace(apiErr.ErrorField)]
	return ok
}

// IsNotFound — true для ErrNotFound и для ответа 404.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client — HTTP-клиент бэкенда маркетплейса.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New создаёт клиент.
// readRetries — сколько раз повторить GET при сетевой ошибке или 5xx.
func New(baseURL string, timeout time.Duration, readRetries int, logger *slog.Logger) *Client {
	log := logger.With(slog.String("component", "marketplace_client"))

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(readRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryReadsOnly).
		SetLogger(restyLogger{logger: log})

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug("Ответ бэкенда",
			slog.String("method", resp.Request.Method),
			slog.String("url", resp.Request.URL),
			slog.Int("status", resp.StatusCode()),
			slog.Duration("duration", resp.Time()),
		)
		return nil
	})

	return &Client{http: rc, logger: log}
}

// retryReadsOnly — повтор только для GET и только при сетевой ошибке или 5xx.
func retryReadsOnly(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// request готовит запрос с контекстом и X-Request-ID.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
}

// do выполняет запрос и разбирает JSON-ответ в out (если out != nil).
func (c *Client) do(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if !resp.IsSuccess() {
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := decodeJSON(resp.Header().Get("Content-Type"), resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

// newAPIError строит APIError, не падая на не-JSON телах ошибок.
func newAPIError(resp *resty.Response) *APIError {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	// Некорректное тело — то же самое, что пустой объект
	_ = decodeJSON(resp.Header().Get("Content-Type"), resp.Body(), &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		ErrorField: body.Error,
		Message:    msg,
	}
}

// decodeJSON разбирает тело только при JSON Content-Type; пустое или
// не-JSON тело оставляет out нетронутым.
func decodeJSON(contentType string, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 || !isJSON(contentType) {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("декодирование JSON-ответа: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
