//go:build integration

package main

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/mia/internal/config"
	"github.com/Cyclone1070/mia/internal/credential"
	providermodel "github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/Cyclone1070/mia/internal/testing/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_InitRegistry(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Tools.WebSearchEnabled = true

	registry := createRegistry(cfg)

	search, ok := registry.Get("web_search")
	require.True(t, ok, "web_search should be registered when enabled")
	assert.Equal(t, "web_search", search.Name())

	decl := search.Declaration()
	assert.NotEmpty(t, decl.Name)
	assert.NotEmpty(t, decl.Description)

	decls := registry.Declarations()
	assert.Len(t, decls, 1, "Only web search should be registered")
}

func TestMain_InitRegistryWebSearchDisabled(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Tools.WebSearchEnabled = false

	registry := createRegistry(cfg)

	_, ok := registry.Get("web_search")
	assert.False(t, ok, "web_search should not be registered when disabled")
	assert.Empty(t, registry.Declarations())
}

func TestMain_ProviderFactoryRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	credentials := credential.NewStore()

	factory := createRealProviderFactory(cfg, credentials)
	_, err := factory(context.Background())

	assert.ErrorIs(t, err, credential.ErrNotSet)
}

func TestMain_ProviderFactoryRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Provider = "claude"
	credentials := credential.NewStore()
	require.NoError(t, credentials.Set("test-key"))

	factory := createRealProviderFactory(cfg, credentials)
	_, err := factory(context.Background())

	assert.ErrorContains(t, err, `unsupported provider "claude"`)
}

func TestMain_ModelForProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{"openai keeps default", "openai", "gpt-4o-mini", "gpt-4o-mini"},
		{"gemini substitutes default", "gemini", "gpt-4o-mini", "gemini-2.0-flash"},
		{"gemini keeps explicit choice", "gemini", "gemini-1.5-pro", "gemini-1.5-pro"},
		{"openai keeps explicit choice", "openai", "gpt-4o", "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Provider = tt.provider
			cfg.Model = tt.model
			assert.Equal(t, tt.want, modelForProvider(cfg))
		})
	}
}

func TestMain_ModelCatalogCoversConfiguredProviders(t *testing.T) {
	t.Parallel()

	for _, provider := range []string{"openai", "gemini"} {
		assert.NotEmpty(t, modelCatalog[provider],
			"Provider %s should have models in the /model popup", provider)
	}
}

func TestMain_EnvAPIKeyPerProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GEMINI_API_KEY", "sk-gemini")

	assert.Equal(t, "sk-openai", envAPIKey("openai"))
	assert.Equal(t, "sk-gemini", envAPIKey("gemini"))
	assert.Empty(t, envAPIKey("claude"), "Unknown providers have no env var")
}

func TestMain_GoroutineCleanup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping goroutine cleanup test in short mode")
	}

	initialGoroutines := runtime.NumGoroutine()

	// Create cancellable context for shutdown
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create readiness signal
	readyChan := make(chan struct{})
	var readyOnce sync.Once

	mockUI := testhelpers.NewMockUI()
	mockUI.StartBlocker = make(chan struct{})
	mockUI.InputFunc = blockingInput()
	mockUI.OnReadyCalled = func() {
		readyOnce.Do(func() { close(readyChan) })
	}

	credentials := credential.NewStore()
	require.NoError(t, credentials.Set("test-key"))

	deps := Dependencies{
		Config:      config.DefaultConfig(),
		Credentials: credentials,
		UI:          mockUI,
		ProviderFactory: func(ctx context.Context) (providermodel.Provider, error) {
			return testhelpers.NewMockProvider(), nil
		},
	}

	// Run interactive mode in background
	done := make(chan bool)
	go func() {
		runInteractive(appCtx, deps)
		done <- true
	}()

	// Wait for startup signal (instead of sleep)
	select {
	case <-readyChan:
		// Ready to proceed
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for runInteractive to start")
	}

	// Verify goroutines started (proxy for "app is running")
	midCount := runtime.NumGoroutine()
	assert.Greater(t, midCount, initialGoroutines, "Background goroutines should have started")

	// Trigger shutdown
	cancel()
	close(mockUI.StartBlocker)

	// Verify graceful shutdown
	select {
	case <-done:
		// Success - runInteractive exited
	case <-time.After(2 * time.Second):
		t.Fatal("runInteractive did not stop after context cancellation")
	}

	// Allow time for cleanup
	time.Sleep(100 * time.Millisecond)
	runtime.GC()

	// Verify goroutines cleaned up (no leaks)
	finalCount := runtime.NumGoroutine()
	assert.LessOrEqual(t, finalCount, initialGoroutines,
		"Goroutines should clean up after shutdown (no leaks allowed)")
}

func TestMain_UIStartsBeforeProviderSetup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping UI startup timing test in short mode")
	}

	// Track event order
	events := []string{}
	mu := sync.Mutex{}

	// Track when UI ready
	readyChan := make(chan struct{})
	var readyOnce sync.Once
	mockUI := testhelpers.NewMockUI()
	mockUI.StartBlocker = make(chan struct{})
	mockUI.InputFunc = blockingInput()
	mockUI.OnReadyCalled = func() {
		mu.Lock()
		events = append(events, "UI_READY")
		mu.Unlock()
		readyOnce.Do(func() { close(readyChan) })
	}

	// Track when provider starts init
	providerStartChan := make(chan struct{})
	var providerOnce sync.Once
	providerFactory := func(ctx context.Context) (providermodel.Provider, error) {
		mu.Lock()
		events = append(events, "PROVIDER_START")
		mu.Unlock()
		providerOnce.Do(func() { close(providerStartChan) })

		time.Sleep(100 * time.Millisecond) // Simulate slow init
		return testhelpers.NewMockProvider(), nil
	}

	credentials := credential.NewStore()
	require.NoError(t, credentials.Set("test-key"))

	deps := Dependencies{
		Config:          config.DefaultConfig(),
		Credentials:     credentials,
		UI:              mockUI,
		ProviderFactory: providerFactory,
	}

	// Run test
	start := time.Now()
	done := make(chan struct{})
	go func() {
		runInteractive(context.Background(), deps)
		close(done)
	}()

	// Assert UI ready within reasonable time
	select {
	case <-readyChan:
		elapsed := time.Since(start)
		assert.Less(t, elapsed, 1*time.Second,
			"UI should be ready within 1s (proves responsiveness)")
	case <-time.After(2 * time.Second):
		t.Fatal("UI never signaled ready")
	}

	// Assert provider starts eventually
	select {
	case <-providerStartChan:
		// Success
	case <-time.After(3 * time.Second):
		t.Fatal("Provider never started initializing")
	}

	close(mockUI.StartBlocker)
	<-done

	// Assert correct order (sequencing, not timing)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"UI_READY", "PROVIDER_START"}, events,
		"UI must signal ready before provider construction starts")
}
