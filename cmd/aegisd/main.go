package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/voocel/aegis/classifier"
	"github.com/voocel/aegis/config"
	"github.com/voocel/aegis/dispatch"
	"github.com/voocel/aegis/guardrail"
	"github.com/voocel/aegis/handler"
	"github.com/voocel/aegis/observer"
	"github.com/voocel/aegis/policy"
	"github.com/voocel/aegis/router"
	"github.com/voocel/aegis/tools"
)

func main() {
	listen := flag.String("listen", "", "http listen address (overrides AEGIS_LISTEN)")
	policyPath := flag.String("policy", "", "policy rules file (overrides AEGIS_POLICY_FILE)")
	authToken := flag.String("auth-token", "", "optional shared token for http api")
	envFile := flag.String("env-file", "", "optional .env file to load")
	useLLMRouter := flag.Bool("llm-router", false, "route with an llm instead of intent matching")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "aegis config error:", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *policyPath != "" {
		cfg.PolicyPath = *policyPath
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}

	store, err := policy.Open(cfg.PolicyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "aegis policy error:", err)
		os.Exit(1)
	}

	obs := observer.NewCompositeObserver(
		observer.NewLoggerObserver(os.Stdout),
	)

	handlers := handler.Builtin()
	d, err := dispatch.New(dispatch.Config{
		Input:    buildInputScreen(cfg, obs),
		Router:   buildRouter(cfg, handlers, *useLLMRouter),
		Handlers: handlers,
		Action:   guardrail.NewPolicyGuardrail(store),
		Tools:    tools.Builtin(),
		Observer: obs,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "aegis init error:", err)
		os.Exit(1)
	}

	if err := runHTTP(cfg, d, store); err != nil {
		fmt.Fprintln(os.Stderr, "aegis http error:", err)
		os.Exit(1)
	}
}

// buildInputScreen returns nil when no classifier token is configured;
// the input stage is then skipped and a warning is printed.
func buildInputScreen(cfg *config.Config, obs observer.Observer) guardrail.InputGuardrail {
	if cfg.HFToken == "" {
		fmt.Fprintln(os.Stderr, "aegis: HF_API_TOKEN not set, input screening disabled")
		return nil
	}
	return &guardrail.InputScreen{
		Text:          classifier.NewHFTextClassifier(cfg.TextModelURL, cfg.HFToken, cfg.ClassifierTimeout),
		Image:         classifier.NewHFImageClassifier(cfg.ImageModelURL, cfg.HFToken, cfg.ClassifierTimeout),
		Fetcher:       classifier.NewHTTPImageFetcher(cfg.ClassifierTimeout),
		TextThreshold: cfg.TextThreshold,
		NSFWThreshold: cfg.NSFWThreshold,
	}
}

func buildRouter(cfg *config.Config, handlers *handler.Registry, useLLM bool) router.Router {
	if useLLM && cfg.LLMAPIKey != "" {
		model := router.NewLiteLLMModel(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL)
		return router.NewLLMRouter(model, handlers, cfg.DefaultHandler)
	}
	return router.NewIntentRouter(handlers, cfg.DefaultHandler)
}
