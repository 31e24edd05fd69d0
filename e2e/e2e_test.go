//go:build e2e

// Package e2e provides end-to-end tests for the testwright generation
// dashboard, driving a real browser against an in-process server.
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/testwright/testwright/pkg/progress"
	"github.com/testwright/testwright/pkg/web"
)

const (
	testPort = 18090
	baseURL  = "http://127.0.0.1:18090"

	pollTimeout  = 5 * time.Second
	pollInterval = 100 * time.Millisecond

	serverStartTimeout = 10 * time.Second
)

var (
	pw      *playwright.Playwright
	browser playwright.Browser
	hub     *web.Hub
	buffer  *web.Buffer
)

func TestMain(m *testing.M) {
	code := 1
	defer func() {
		os.Exit(code)
	}()

	hub = web.NewHub()
	buffer = web.NewBuffer(0)

	// seed some history so late-joining clients have something to replay
	seed := []web.Event{
		web.NewOutputEvent(progress.PhaseRecord, "recording login for role \"admin\""),
		web.NewOutputEvent(progress.PhaseAgent, "generating tests as role \"admin\""),
	}
	for _, e := range seed {
		buffer.Add(e)
	}

	srv := web.NewServer(web.ServerConfig{
		Port:    testPort,
		Role:    "admin",
		BaseURL: "https://app.example.com",
	}, hub, buffer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := srv.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	}()

	if err := waitForServer(serverStartTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "server not ready: %v\n", err)
		return
	}

	if err := setupPlaywright(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup playwright: %v\n", err)
		return
	}
	defer teardownPlaywright()

	code = m.Run()
}

func waitForServer(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("server did not become ready within %s", timeout)
}

func setupPlaywright() error {
	var err error
	pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	return nil
}

func teardownPlaywright() {
	if browser != nil {
		_ = browser.Close()
	}
	if pw != nil {
		_ = pw.Stop()
	}
}

func newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	t.Cleanup(func() { _ = page.Close() })
	return page
}

func navigateToDashboard(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(baseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		t.Fatalf("navigate to dashboard: %v", err)
	}
}
