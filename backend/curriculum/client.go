// Package curriculum generates learning plans for goals through an external webhook.
package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/config"
)

var ErrDisabled = errors.New("curriculum webhook not configured")

const generateOp = "curriculum.generate"

// Request is the webhook payload for one goal.
type Request struct {
	GoalID          uint   `json:"goalId"`
	GoalDescription string `json:"goalDescription"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	UserID          uint   `json:"userId"`
	UserName        string `json:"userName"`
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// WebhookClient posts goals to the configured webhook and returns the plan text.
type WebhookClient struct {
	url     string
	timeout time.Duration
	debug   bool
	log     *zap.Logger
}

func NewWebhookClient(cfg config.CurriculumConfig, log *zap.Logger) *WebhookClient {
	return &WebhookClient{
		url:     cfg.WebhookURL,
		timeout: cfg.Timeout,
		debug:   cfg.Debug,
		log:     log.Named("curriculum.webhook"),
	}
}

type webhookResponse struct {
	Curriculum string `json:"curriculum"`
}

func (c *WebhookClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.url == "" {
		return "", ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.debug {
		c.log.Debug("calling webhook", zap.String("url", c.url), zap.Any("payload", req))
	}

	agent := fiber.Post(c.url).JSON(req).Timeout(c.timeout)
	if err := agent.Parse(); err != nil {
		return "", apperr.Upstream(generateOp, fmt.Errorf("prepare webhook request: %w", err))
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", apperr.Upstream(generateOp, fmt.Errorf("webhook request: %w", errors.Join(errs...)))
	}
	if c.debug {
		c.log.Debug("webhook responded", zap.Int("status", code), zap.ByteString("body", body))
	}
	if code < 200 || code >= 300 {
		return "", apperr.Upstream(generateOp, fmt.Errorf("webhook returned status %d", code))
	}

	text, err := parseCurriculum(body)
	if err != nil {
		return "", apperr.Upstream(generateOp, err)
	}
	return text, nil
}

// parseCurriculum accepts {"curriculum": "..."} or a plain text body. The
// text is returned verbatim.
func parseCurriculum(body []byte) (string, error) {
	var resp webhookResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if strings.TrimSpace(resp.Curriculum) != "" {
			return resp.Curriculum, nil
		}
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("webhook returned an empty curriculum")
	}
	return text, nil
}
