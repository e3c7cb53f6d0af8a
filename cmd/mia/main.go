// Package main provides the terminal agent for medical image analysis.
// It reads an image from disk, runs the diagnostic loop against the
// configured model provider and renders the resulting markdown report.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Cyclone1070/mia/internal/analysis"
	"github.com/Cyclone1070/mia/internal/config"
	"github.com/Cyclone1070/mia/internal/credential"
	"github.com/Cyclone1070/mia/internal/imaging"
	"github.com/Cyclone1070/mia/internal/orchestrator"
	"github.com/Cyclone1070/mia/internal/provider/gemini"
	providermodel "github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/Cyclone1070/mia/internal/provider/openai"
	"github.com/Cyclone1070/mia/internal/tool"
	"github.com/Cyclone1070/mia/internal/tool/websearch"
	"github.com/Cyclone1070/mia/internal/ui"
	uimodels "github.com/Cyclone1070/mia/internal/ui/models"
	uiservices "github.com/Cyclone1070/mia/internal/ui/services"
	"github.com/charmbracelet/bubbles/spinner"
)

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config          *config.Config
	Credentials     *credential.Store
	UI              ui.UserInterface
	ProviderFactory func(context.Context) (providermodel.Provider, error)
}

// modelCatalog lists the models offered in the /model popup per provider.
// /model <name> accepts any name, so the catalog does not limit choice.
var modelCatalog = map[string][]string{
	"openai": {"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"},
	"gemini": {"gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-1.5-pro", "gemini-1.5-flash"},
}

func createRealUI() ui.UserInterface {
	channels := ui.NewUIChannels()
	renderer := uiservices.NewGlamourRenderer()
	spinnerFactory := func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}
	return ui.NewUI(channels, renderer, spinnerFactory)
}

// modelForProvider resolves the configured model name. Switching the
// provider to Gemini without picking a model would otherwise leave the
// OpenAI default in place.
func modelForProvider(cfg *config.Config) string {
	if cfg.Provider == "gemini" && cfg.Model == config.DefaultConfig().Model {
		return "gemini-2.0-flash"
	}
	return cfg.Model
}

func createRealProviderFactory(cfg *config.Config, credentials *credential.Store) func(context.Context) (providermodel.Provider, error) {
	return func(ctx context.Context) (providermodel.Provider, error) {
		apiKey, err := credentials.MustGet()
		if err != nil {
			return nil, err
		}

		model := modelForProvider(cfg)
		switch cfg.Provider {
		case "openai":
			client := openai.NewRealOpenAIClient(apiKey)
			return openai.New(client, model), nil
		case "gemini":
			client, err := gemini.NewRealGeminiClientWithKey(ctx, apiKey)
			if err != nil {
				return nil, fmt.Errorf("failed to create Gemini client: %w", err)
			}
			return gemini.New(client, model), nil
		default:
			return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
		}
	}
}

// createRegistry assembles the tools the model may call during a run.
func createRegistry(cfg *config.Config) *tool.Registry {
	registry := tool.NewRegistry()
	if cfg.Tools.WebSearchEnabled {
		registry.Register(websearch.New(
			cfg.Tools.SearchMaxResults,
			time.Duration(cfg.Tools.SearchTimeoutSeconds)*time.Second,
			time.Duration(cfg.Tools.SearchMinIntervalMs)*time.Millisecond,
		))
	}
	return registry
}

func envAPIKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}

func providerLabel(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "gemini":
		return "Gemini"
	}
	return provider
}

// newLogger builds the process logger. The TUI owns stdout and stderr, so
// logging goes to the configured file as JSON and is discarded otherwise.
func newLogger(path string) (*slog.Logger, func()) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), func() { f.Close() }
}

func main() {
	// Load configuration (from defaults + ~/.config/mia/config.json)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	logger, closeLog := newLogger(cfg.LogFile)
	defer closeLog()
	slog.SetDefault(logger)

	slog.Info("mia starting", "provider", cfg.Provider, "model", cfg.Model)

	credentials := credential.NewStore()
	if key := envAPIKey(cfg.Provider); key != "" {
		if err := credentials.Set(key); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring API key from environment: %v\n", err)
		}
	}

	deps := Dependencies{
		Config:          cfg,
		Credentials:     credentials,
		UI:              createRealUI(),
		ProviderFactory: createRealProviderFactory(cfg, credentials),
	}

	// NOTE: context.Background() intentionally; the UI manages its own
	// lifecycle via Ctrl+C and /quit, which cancel the run context below.
	runInteractive(context.Background(), deps)
}

func runInteractive(ctx context.Context, deps Dependencies) {
	userInterface := deps.UI

	// Create cancellable context for goroutines
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	// Provider shared between goroutines, replaced on /key
	slot := &providerSlot{}

	// Loop progress events, translated to status bar updates. The channel
	// is closed by the analysis goroutine once no more runs can start.
	events := make(chan orchestrator.Event, 64)

	wg.Add(1)
	go func() {
		defer wg.Done()
		forwardEvents(events, userInterface)
	}()

	// Goroutine #1: analysis REPL
	wg.Add(1)
	go func() {
		defer wg.Done()
		runAnalysisLoop(runCtx, deps, slot, events)
	}()

	// Goroutine #2: command handler
	wg.Add(1)
	go func() {
		defer wg.Done()
		runCommandLoop(runCtx, deps, slot)
	}()

	// Run UI in main thread (blocks until exit)
	if err := userInterface.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running UI: %v\n", err)
		os.Exit(1)
	}

	// UI exited, trigger shutdown
	cancel()

	// Wait for goroutines to finish
	wg.Wait()
}

// providerSlot shares the active provider between the analysis loop and
// the command handler. It is empty until a usable API key is known.
type providerSlot struct {
	mu sync.Mutex
	p  providermodel.Provider
}

func (s *providerSlot) get() providermodel.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

func (s *providerSlot) set(p providermodel.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

func runAnalysisLoop(ctx context.Context, deps Dependencies, slot *providerSlot, events chan<- orchestrator.Event) {
	// No run is in flight once this loop returns, so closing here lets
	// the event forwarder drain and exit.
	defer close(events)

	userInterface := deps.UI

	<-userInterface.Ready() // Wait for UI to be ready

	stageDir, err := os.MkdirTemp("", "mia-*")
	if err != nil {
		slog.Error("failed to create staging directory", "err", err)
		userInterface.WriteStatus("error", "Initialization failed")
		userInterface.WriteMessage(fmt.Sprintf("Error: failed to create staging directory: %v", err))
		userInterface.WriteMessage("The application cannot start. Press Ctrl+C to exit.")
		return // DEGRADED MODE: UI runs but analysis never starts
	}
	defer os.RemoveAll(stageDir)

	registry := createRegistry(deps.Config)

	userInterface.WriteStatus("ready", "Ready")

	for {
		select {
		case <-ctx.Done():
			return // Exit on cancellation
		default:
		}

		if err := ensureProvider(ctx, deps, slot); err != nil {
			if ctx.Err() != nil {
				return
			}
			userInterface.WriteStatus("error", "Provider setup failed")
			userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
			continue
		}

		path, err := userInterface.ReadInput(ctx, "Path to a medical image (PNG or JPEG)")
		if err != nil {
			return // UI closed or context cancelled
		}

		analyzeFile(ctx, deps, slot, registry, events, stageDir, path)
	}
}

// ensureProvider builds the provider once an API key is available,
// prompting for one when neither the environment nor /key supplied it.
func ensureProvider(ctx context.Context, deps Dependencies, slot *providerSlot) error {
	if slot.get() != nil {
		return nil
	}

	userInterface := deps.UI

	if _, ok := deps.Credentials.Get(); !ok {
		prompt := fmt.Sprintf("Enter your %s API key", providerLabel(deps.Config.Provider))
		key, err := userInterface.ReadSecret(ctx, prompt)
		if err != nil {
			return err
		}
		if err := deps.Credentials.Set(key); err != nil {
			return err
		}
		userInterface.WriteMessage("API key saved.")
	}

	p, err := deps.ProviderFactory(ctx)
	if err != nil {
		slog.Error("provider setup failed", "provider", deps.Config.Provider, "err", err)
		// A fresh key is required before the next attempt
		deps.Credentials.Clear()
		return err
	}
	slot.set(p)
	slog.Info("provider ready", "provider", deps.Config.Provider, "model", p.GetModel())

	userInterface.SetModel(p.GetModel())
	userInterface.WriteStatus("ready", "Ready")
	return nil
}

func analyzeFile(ctx context.Context, deps Dependencies, slot *providerSlot, registry *tool.Registry, events chan<- orchestrator.Event, stageDir, path string) {
	userInterface := deps.UI

	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		userInterface.WriteStatus("error", "Could not read image")
		userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
		return
	}

	info, err := imaging.Describe(data)
	if err != nil {
		userInterface.WriteStatus("error", "Unsupported image")
		userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
		return
	}
	userInterface.WriteImageInfo(uimodels.ImagePanel{
		Path:        path,
		MIME:        info.MIME,
		Width:       info.Width,
		Height:      info.Height,
		ByteSize:    info.ByteSize,
		Fingerprint: info.Fingerprint,
	})

	p := slot.get()
	if p == nil {
		// /key clear raced the path prompt; the next loop pass re-prompts
		userInterface.WriteStatus("error", "No API key")
		return
	}

	loop := orchestrator.New(p, registry, events, orchestrator.Options{
		MaxIterations:  deps.Config.MaxIterations,
		ActConcurrency: deps.Config.ActConcurrency,
		Generation: &providermodel.GenerateConfig{
			Temperature: &deps.Config.Temperature,
		},
	})
	session := analysis.NewSession(deps.Credentials, loop, deps.Config, stageDir)

	slog.Info("analysis started", "path", path, "mime", info.MIME, "bytes", info.ByteSize)
	userInterface.WriteStatus("thinking", "Analyzing image")
	report, err := session.Analyze(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if providermodel.IsAuthError(err) {
			slog.Warn("API key rejected", "err", err)
			// The key was rejected; force a fresh one before the next run
			deps.Credentials.Clear()
			slot.set(nil)
			userInterface.WriteStatus("error", "API key rejected")
			userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
			return
		}
		slog.Error("analysis failed", "err", err)
		userInterface.WriteStatus("error", "Analysis failed")
		userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
		return
	}
	slog.Info("analysis complete",
		"elapsed", report.Elapsed,
		"steps", report.Steps,
		"tool_results", report.ToolResults,
	)

	userInterface.WriteReport(report.Markdown)

	status := fmt.Sprintf("Report ready in %s", report.Elapsed.Round(time.Second))
	if report.ToolResults > 0 {
		status = fmt.Sprintf("%s (%d searches)", status, report.ToolResults)
	}
	userInterface.WriteStatus("done", status)
}

// forwardEvents translates loop progress into status bar updates.
// It exits when the events channel is closed.
func forwardEvents(events <-chan orchestrator.Event, userInterface ui.UserInterface) {
	for ev := range events {
		switch ev := ev.(type) {
		case orchestrator.ThinkingEvent:
			userInterface.WriteStatus("thinking", "Analyzing image")
		case orchestrator.ToolStartEvent:
			label := ev.Name
			if ev.Query != "" {
				label = fmt.Sprintf("%s %q", ev.Name, ev.Query)
			}
			userInterface.WriteStatus("searching", label)
		case orchestrator.ToolEndEvent:
			if ev.Failed {
				userInterface.WriteStatus("searching", ev.Name+" failed")
			} else {
				userInterface.WriteStatus("thinking", "Reviewing search results")
			}
		}
	}
}

func runCommandLoop(ctx context.Context, deps Dependencies, slot *providerSlot) {
	userInterface := deps.UI

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-userInterface.Commands():
			slog.Debug("ui command", "type", cmd.Type)
			switch cmd.Type {
			case "list_models":
				names := modelCatalog[deps.Config.Provider]
				if len(names) == 0 {
					userInterface.WriteMessage(fmt.Sprintf("No model list for provider %q. Use /model <name>.", deps.Config.Provider))
					continue
				}
				userInterface.WriteModelList(names)

			case "switch_model":
				name := cmd.Args["model"]
				p := slot.get()
				if p == nil {
					userInterface.WriteMessage("Set an API key first with /key.")
					continue
				}
				if err := p.SetModel(name); err != nil {
					userInterface.WriteMessage(fmt.Sprintf("Error switching model: %v", err))
				} else {
					userInterface.SetModel(name)
					userInterface.WriteMessage(fmt.Sprintf("Switched to model: %s", name))
				}

			case "set_key":
				rekey(ctx, deps, slot, cmd.Args["key"])

			case "clear_key":
				deps.Credentials.Clear()
				slot.set(nil)
				userInterface.WriteMessage("API key cleared. You will be asked for a new one before the next analysis.")
			}
		}
	}
}

// rekey replaces the stored key and rebuilds the provider, keeping the
// current model selection.
func rekey(ctx context.Context, deps Dependencies, slot *providerSlot, key string) {
	userInterface := deps.UI

	if err := deps.Credentials.Set(key); err != nil {
		userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
		return
	}

	prev := ""
	if p := slot.get(); p != nil {
		prev = p.GetModel()
	}

	p, err := deps.ProviderFactory(ctx)
	if err != nil {
		deps.Credentials.Clear()
		slot.set(nil)
		userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
		return
	}
	if prev != "" {
		if err := p.SetModel(prev); err != nil {
			userInterface.WriteMessage(fmt.Sprintf("Error restoring model: %v", err))
		}
	}

	slot.set(p)
	userInterface.SetModel(p.GetModel())
	userInterface.WriteMessage("API key saved.")
}
