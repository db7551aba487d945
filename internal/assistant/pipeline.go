// Package assistant answers customer product questions: it extracts a product
// name, transliterates it, searches the storefront and composes a reply.
package assistant

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"storebot/app/internal/catalog"
	"storebot/app/internal/llm"
	"storebot/app/internal/translit"
)

// Pipeline runs one query cycle per inbound message. Stages run strictly in
// order and a failing stage ends the run.
type Pipeline interface {
	Run(ctx context.Context, text string) Result
}

// PipelineOptions wires the pipeline collaborators.
type PipelineOptions struct {
	Engine           *translit.Engine
	Catalog          catalog.Searcher
	Model            llm.Completer
	StorefrontDomain string
	StageTimeout     time.Duration
	Messages         Messages
	Logger           *logrus.Logger
	SentryHub        *sentry.Hub
}

type pipeline struct {
	engine       *translit.Engine
	catalog      catalog.Searcher
	model        llm.Completer
	domain       string
	stageTimeout time.Duration
	messages     Messages
	logger       *logrus.Logger
	sentryHub    *sentry.Hub
}

var _ Pipeline = (*pipeline)(nil)

// NewPipeline validates opts and builds a Pipeline.
func NewPipeline(opts PipelineOptions) (Pipeline, error) {
	if opts.Engine == nil {
		return nil, eris.New("transliteration engine is required")
	}
	if opts.Catalog == nil {
		return nil, eris.New("catalog searcher is required")
	}
	if opts.Model == nil {
		return nil, eris.New("language model is required")
	}

	domain := strings.Trim(strings.TrimSpace(opts.StorefrontDomain), "/")
	if domain == "" {
		return nil, eris.New("storefront domain is required")
	}

	return &pipeline{
		engine:       opts.Engine,
		catalog:      opts.Catalog,
		model:        opts.Model,
		domain:       domain,
		stageTimeout: opts.StageTimeout,
		messages:     opts.Messages.withDefaults(),
		logger:       opts.Logger,
		sentryHub:    opts.SentryHub,
	}, nil
}

func (p *pipeline) Run(ctx context.Context, text string) Result {
	question := strings.TrimSpace(text)
	fields := logrus.Fields{"run_id": uuid.NewString()}
	p.transition(fields, StateReceived)

	name := p.extractName(ctx, question, fields)
	p.transition(fields, StateNameExtracted)

	nativeName := strings.TrimSpace(p.engine.ToNativeScript(name))
	fields["native_name"] = nativeName
	p.transition(fields, StateNameTransliterated)

	outcome := p.search(ctx, nativeName, fields)
	switch outcome.Kind {
	case OutcomeNotFound:
		p.transition(fields, StateFailed)
		return Failure(p.messages.notFound(outcome.Query), KindCatalogEmpty)
	case OutcomeServiceError:
		p.transition(fields, StateFailed)
		return Failure(p.messages.ConnectionError, KindCatalogUnavailable)
	}
	fields["matches"] = len(outcome.Items)
	p.transition(fields, StateSearchCompleted)

	reply, err := p.compose(ctx, question, outcome.Items)
	if err != nil {
		p.recordError(ctx, fields, err, KindCompositionFailure, "composing reply")
		p.transition(fields, StateFailed)
		return Failure(p.messages.ComposeApology, KindCompositionFailure)
	}
	p.transition(fields, StateReplyComposed)

	result := Reply(reply, AuxiliaryLink(p.domain, nativeName))
	p.transition(fields, StateDone)
	return result
}

// extractName asks the model for the product name and falls back to the raw
// message when the model fails or answers with nothing.
func (p *pipeline) extractName(ctx context.Context, question string, fields logrus.Fields) string {
	if question == "" {
		return ""
	}

	stageCtx, cancel := p.stageContext(ctx)
	defer cancel()

	extracted, err := p.model.Complete(stageCtx, extractionPrompt(question), extractionTemperature)
	if err != nil {
		p.recordError(ctx, fields, err, KindExtractionFailure, "extracting product name, using raw message")
		return question
	}

	name := cleanExtractedName(extracted)
	if name == "" {
		p.recordError(ctx, fields, eris.New("extracted product name is empty"), KindExtractionFailure, "extracting product name, using raw message")
		return question
	}

	fields["extracted_name"] = name
	return name
}

func (p *pipeline) search(ctx context.Context, nativeName string, fields logrus.Fields) SearchOutcome {
	if nativeName == "" {
		return NotFound(nativeName)
	}

	stageCtx, cancel := p.stageContext(ctx)
	defer cancel()

	items, err := p.catalog.Search(stageCtx, nativeName)
	if err != nil {
		p.recordError(ctx, fields, err, KindCatalogUnavailable, "searching catalog")
		return ServiceError(err.Error())
	}

	if len(items) == 0 {
		p.recordError(ctx, fields, nil, KindCatalogEmpty, "catalog returned no products")
		return NotFound(nativeName)
	}

	return Found(items)
}

func (p *pipeline) compose(ctx context.Context, question string, items []catalog.Product) (string, error) {
	stageCtx, cancel := p.stageContext(ctx)
	defer cancel()

	prompt := compositionPrompt(question, items, p.messages.Currency)
	reply, err := p.model.Complete(stageCtx, prompt, compositionTemperature)
	if err != nil {
		return "", eris.Wrap(err, "composing reply")
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", eris.New("composed reply is empty")
	}
	return reply, nil
}

func (p *pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}

func (p *pipeline) transition(fields logrus.Fields, state State) {
	if p.logger == nil {
		return
	}
	p.logger.WithFields(fields).WithField("state", state.String()).Debug("pipeline transition")
}

// recordError logs a stage problem. Only failures the user sees as an apology
// reach Sentry.
func (p *pipeline) recordError(ctx context.Context, fields logrus.Fields, err error, kind ErrorKind, message string) {
	if ctx.Err() != nil {
		if p.logger != nil {
			p.logger.WithFields(fields).WithField("kind", kind.String()).Debug("pipeline cancelled")
		}
		return
	}

	if p.logger != nil {
		entry := p.logger.WithFields(fields).WithField("kind", kind.String())
		if err != nil {
			entry = entry.WithField("error", err.Error())
		}
		switch kind {
		case KindCatalogEmpty, KindExtractionFailure:
			entry.Warn(message)
		default:
			entry.Error(message)
		}
	}

	if err == nil || kind == KindCatalogEmpty || kind == KindExtractionFailure {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if p.sentryHub != nil {
		p.sentryHub.CaptureException(err)
	}
}

// AuxiliaryLink builds the storefront search URL for a native-script name.
func AuxiliaryLink(domain, nativeName string) string {
	return fmt.Sprintf("https://%s/?s=%s&post_type=product", domain, url.QueryEscape(nativeName))
}

func cleanExtractedName(raw string) string {
	name := strings.TrimSpace(raw)
	if idx := strings.IndexAny(name, "\r\n"); idx >= 0 {
		name = name[:idx]
	}
	name = strings.Trim(name, " \t\"'`«»“”.")
	return strings.TrimSpace(name)
}
