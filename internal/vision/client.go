// Package vision реализует клиента внешнего OCR-сервиса, распознающего
// показатели состава тела с фотографии листа InBody. Сервис возвращает
// структуру фиксированной формы; точность распознавания не гарантируется,
// результат показывается тренеру для ручной проверки.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client клиент OCR-сервиса.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент OCR-сервиса.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RecognizeRequest запрос на распознавание снимка.
type RecognizeRequest struct {
	Image    string `json:"image"` // base64
	MimeType string `json:"mime_type"`
}

// RecognizeResponse распознанные показатели. Нераспознанное поле приходит null.
type RecognizeResponse struct {
	MeasuredAt  *string  `json:"measured_at"` // "2006-01-02"
	Weight      *float64 `json:"weight"`
	BodyFatPct  *float64 `json:"body_fat_pct"`
	MuscleMass  *float64 `json:"muscle_mass"`
	BMI         *float64 `json:"bmi"`
	VisceralFat *float64 `json:"visceral_fat"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Recognize отправляет снимок листа InBody на распознавание.
func (c *Client) Recognize(ctx context.Context, image []byte, mimeType string) (*RecognizeResponse, error) {
	req, err := c.newRequest(ctx, "POST", "/v1/inbody", RecognizeRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		MimeType: mimeType,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var result RecognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
