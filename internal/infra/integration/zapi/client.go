package zapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.z-api.io"

var ErrNotConfigured = errors.New("z-api não configurada")

type Client struct {
	baseURL     string
	instanceID  string
	token       string
	clientToken string
	http        *http.Client
	log         *zap.Logger
}

func NewClient(baseURL, instanceID, token, clientToken string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		instanceID:  instanceID,
		token:       token,
		clientToken: clientToken,
		http:        &http.Client{Timeout: 60 * time.Second},
		log:         log,
	}
}

// SendDocument envia um arquivo como documento; a extensão vai na rota.
func (c *Client) SendDocument(ctx context.Context, input SendDocumentInput) (*SendDocumentResponse, error) {
	if c.instanceID == "" || c.token == "" {
		return nil, ErrNotConfigured
	}

	phone, err := FormatPhone(input.Phone)
	if err != nil {
		return nil, err
	}

	payload := sendDocumentPayload{
		Phone:    phone,
		Document: fmt.Sprintf("data:%s;base64,%s", MimeType(input.FileName), base64.StdEncoding.EncodeToString(input.Content)),
		FileName: input.FileName,
		Caption:  input.Caption,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar payload z-api: %w", err)
	}

	url := fmt.Sprintf("%s/instances/%s/token/%s/send-document/%s", c.baseURL, c.instanceID, c.token, Extension(input.FileName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição z-api: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientToken != "" {
		req.Header.Set("Client-Token", c.clientToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao chamar z-api: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out SendDocumentResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &out); err != nil {
			return nil, fmt.Errorf("resposta z-api inválida: %w", err)
		}
	}

	c.log.Info("documento enviado via z-api",
		zap.String("file", input.FileName),
		zap.String("zaap_id", out.ZaapID))
	return &out, nil
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone devolve só dígitos com DDI 55, o formato que a Z-API espera.
func FormatPhone(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return "", fmt.Errorf("telefone inválido: %q", raw)
	}

	// Com "+" o número já traz o DDI; sem ele tratamos como nacional (BR).
	input := digits
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		input = "+" + digits
	}
	num, err := phonenumbers.Parse(input, "BR")
	if err == nil && phonenumbers.IsPossibleNumber(num) {
		return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"), nil
	}

	if strings.HasPrefix(digits, "55") {
		return digits, nil
	}
	return "55" + digits, nil
}

func Extension(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if ext == "" {
		return "pdf"
	}
	return ext
}

func MimeType(fileName string) string {
	switch Extension(fileName) {
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
