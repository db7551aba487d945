package bootstrap

import (
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"storebot/app/internal/assistant"
	"storebot/app/internal/catalog"
	"storebot/app/internal/config"
	apphttp "storebot/app/internal/http"
	"storebot/app/internal/llm"
	"storebot/app/internal/telegram"
	"storebot/app/internal/translit"
)

type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

type Result struct {
	Pipeline   assistant.Pipeline
	Dispatcher *assistant.Dispatcher
	HTTPServer *apphttp.Server
	// Poller is nil in webhook mode.
	Poller  *telegram.Poller
	Cleanup func()
}

// Build composes the assistant from configuration and returns the constructed components.
func Build(deps Dependencies) (Result, error) {
	cfg := deps.Config

	engine, err := translit.NewEngine(translit.ArmenianTable())
	if err != nil {
		return Result{}, eris.Wrap(err, "creating transliteration engine")
	}

	catalogClient, err := catalog.NewClient(catalog.ClientOptions{
		BaseURL:        cfg.StorefrontURL,
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		Timeout:        cfg.CatalogTimeout,
		Logger:         deps.Logger,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "creating catalog client")
	}

	llmClient, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  deps.Logger,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "creating llm client")
	}
	if deps.Logger != nil {
		deps.Logger.WithFields(logrus.Fields{
			"endpoint": llmClient.BaseURL(),
			"model":    cfg.LLMModel,
		}).Info("llm client configured")
	}

	completer, err := llm.NewCompleter(llm.CompleterOptions{
		Client: llmClient,
		Model:  cfg.LLMModel,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "initialising llm completer")
	}

	pipeline, err := assistant.NewPipeline(assistant.PipelineOptions{
		Engine:           engine,
		Catalog:          catalogClient,
		Model:            completer,
		StorefrontDomain: catalogClient.Domain(),
		StageTimeout:     cfg.StageTimeout,
		Logger:           deps.Logger,
		SentryHub:        deps.SentryHub,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "creating query pipeline")
	}

	bot, err := telegram.NewClient(telegram.ClientOptions{
		Token:  cfg.TelegramToken,
		APIURL: cfg.TelegramAPIURL,
		Logger: deps.Logger,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "creating telegram client")
	}

	dispatcher, err := assistant.NewDispatcher(assistant.DispatcherOptions{
		Pipeline:      pipeline,
		Sender:        bot,
		MaxConcurrent: cfg.MaxConcurrentChats,
		Logger:        deps.Logger,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "creating dispatcher")
	}

	serverOpts := apphttp.Options{
		Pipeline:  pipeline,
		Engine:    engine,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	}

	var poller *telegram.Poller
	if cfg.GatewayMode == config.GatewayWebhook {
		serverOpts.Chat = dispatcher
		serverOpts.WebhookSecret = cfg.TelegramWebhookSecret
	} else {
		poller, err = telegram.NewPoller(telegram.PollerOptions{
			Source:  bot,
			Handler: dispatcher,
			Logger:  deps.Logger,
		})
		if err != nil {
			dispatcher.Close()
			return Result{}, eris.Wrap(err, "creating telegram poller")
		}
	}

	httpServer, err := apphttp.NewServer(serverOpts)
	if err != nil {
		dispatcher.Close()
		return Result{}, eris.Wrap(err, "initialising http server")
	}

	return Result{
		Pipeline:   pipeline,
		Dispatcher: dispatcher,
		HTTPServer: httpServer,
		Poller:     poller,
		Cleanup:    dispatcher.Close,
	}, nil
}
