package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"storebot/app/internal/assistant"
	"storebot/app/internal/telegram"
)

const (
	directionNative   = "native"
	directionPhonetic = "phonetic"
	healthPath        = "/healthz"
)

type queryInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" maxLength:"4096" doc:"Customer message"`
	}
}

type queryResponse struct {
	Body struct {
		Kind          string `json:"kind" enum:"reply,failure"`
		Text          string `json:"text"`
		AuxiliaryLink string `json:"auxiliary_link,omitempty"`
		State         string `json:"state"`
		Cause         string `json:"cause,omitempty"`
	}
}

type transliterateInput struct {
	Text      string `query:"text" required:"true" maxLength:"4096"`
	Direction string `query:"direction" enum:"native,phonetic" default:"native"`
}

type transliterateResponse struct {
	Body struct {
		Input     string `json:"input"`
		Output    string `json:"output"`
		Direction string `json:"direction"`
	}
}

// webhookInput reads the raw body so Bot API fields we do not model are
// accepted.
type webhookInput struct {
	SecretToken string `header:"X-Telegram-Bot-Api-Secret-Token"`
	RawBody     []byte
}

type healthResponse struct {
	Status int
	Body   struct {
		Status  string `json:"status"`
		Webhook string `json:"webhook"`
	}
}

func (s *Server) registerQueryRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "run-query",
		Method:      stdhttp.MethodPost,
		Path:        "/api/v1/query",
		Summary:     "Answer a customer message",
	}, s.queryHandler)
}

func (s *Server) registerTransliterateRoute() {
	huma.Get(s.api, "/api/v1/transliterate", s.transliterateHandler, func(op *huma.Operation) {
		op.Summary = "Transliterate text"
	})
}

func (s *Server) registerWebhookRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "telegram-webhook",
		Method:        stdhttp.MethodPost,
		Path:          "/telegram/webhook",
		Summary:       "Receive Telegram updates",
		DefaultStatus: stdhttp.StatusOK,
	}, s.webhookHandler)
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, healthPath, s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) queryHandler(ctx context.Context, input *queryInput) (*queryResponse, error) {
	text := strings.TrimSpace(input.Body.Text)
	if text == "" {
		return nil, huma.Error400BadRequest("text must not be blank")
	}

	result := s.pipeline.Run(ctx, text)
	if ctx.Err() != nil {
		return nil, huma.Error503ServiceUnavailable("request cancelled")
	}

	resp := &queryResponse{}
	resp.Body.Kind = result.Kind.String()
	resp.Body.Text = result.Text
	resp.Body.AuxiliaryLink = result.AuxiliaryLink
	resp.Body.State = result.State.String()
	if result.Cause != assistant.KindNone {
		resp.Body.Cause = result.Cause.String()
	}
	return resp, nil
}

func (s *Server) transliterateHandler(ctx context.Context, input *transliterateInput) (*transliterateResponse, error) {
	resp := &transliterateResponse{}
	resp.Body.Input = input.Text
	resp.Body.Direction = input.Direction

	switch input.Direction {
	case directionPhonetic:
		resp.Body.Output = s.engine.ToPhoneticSpelling(input.Text)
	case "", directionNative:
		resp.Body.Direction = directionNative
		resp.Body.Output = s.engine.ToNativeScript(input.Text)
	default:
		return nil, huma.Error400BadRequest("direction must be native or phonetic")
	}

	return resp, nil
}

func (s *Server) webhookHandler(ctx context.Context, input *webhookInput) (*struct{}, error) {
	if subtle.ConstantTimeCompare([]byte(input.SecretToken), []byte(s.webhookSecret)) != 1 {
		s.logWarn(ctx, nil, "webhook secret mismatch")
		return nil, huma.Error401Unauthorized("invalid webhook secret")
	}

	var update telegram.Update
	if err := json.Unmarshal(input.RawBody, &update); err != nil {
		s.logWarn(ctx, logrus.Fields{"error": err.Error()}, "decoding webhook update")
		return nil, huma.Error400BadRequest("invalid update payload")
	}

	telegram.Route(context.WithoutCancel(ctx), update, s.chat)
	return nil, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{Status: stdhttp.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Webhook = "disabled"
	if s.chat != nil {
		resp.Body.Webhook = "enabled"
	}
	return resp, nil
}

func (s *Server) logWarn(ctx context.Context, fields logrus.Fields, message string) {
	if s.logger == nil {
		return
	}
	entry := s.logger.WithFields(fields)
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	entry.Warn(message)
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
