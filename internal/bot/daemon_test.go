package bot

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopfloor/toolcrib/internal/config"
)

func daemonTestCfg() *config.Config {
	return &config.Config{
		Platform:  "discord",
		ChannelID: "C123",
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Drawings:  config.DrawingsConfig{Dir: ""},
		Limits:    config.LimitsConfig{MaxQuantity: 10000},
		Stamps:    engineTestStamps,
	}
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, cond func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewDaemon_Validation(t *testing.T) {
	cases := []struct {
		name string
		opts DaemonOpts
		want string
	}{
		{"nil db", DaemonOpts{Config: daemonTestCfg(), Adapter: NewMockAdapter()}, "db is required"},
		{"nil config", DaemonOpts{DB: openEngineTestDB(t), Adapter: NewMockAdapter()}, "config is required"},
		{"nil adapter", DaemonOpts{DB: openEngineTestDB(t), Config: daemonTestCfg()}, "adapter is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDaemon(tc.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestDaemonRun_OnlineAndShutdown(t *testing.T) {
	mock := NewMockAdapter()
	var buf bytes.Buffer

	cfg := daemonTestCfg()
	cfg.Drawings.Dir = t.TempDir()
	d, err := NewDaemon(DaemonOpts{
		DB:      openEngineTestDB(t),
		Config:  cfg,
		Adapter: mock,
		Out:     &buf,
	})
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	waitFor(t, func() bool {
		return strings.Contains(buf.String(), "Toolcrib online")
	}, 2*time.Second)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}

	output := buf.String()
	if !strings.Contains(output, "Toolcrib shutting down") {
		t.Errorf("missing shutdown message in output: %s", output)
	}
	if !strings.Contains(output, "Toolcrib stopped") {
		t.Errorf("missing stopped message in output: %s", output)
	}
}

func TestDaemonRun_InboundRoutedToEngine(t *testing.T) {
	mock := NewMockAdapter()
	var buf bytes.Buffer

	cfg := daemonTestCfg()
	cfg.Drawings.Dir = t.TempDir()
	d, err := NewDaemon(DaemonOpts{
		DB:      openEngineTestDB(t),
		Config:  cfg,
		Adapter: mock,
		Out:     &buf,
	})
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	waitFor(t, func() bool {
		return strings.Contains(buf.String(), "Toolcrib online")
	}, 2*time.Second)

	mock.SimulateInbound(InboundMessage{
		ChannelID: "C123", UserID: "U1", UserName: "vova", Text: "/start",
	})
	waitFor(t, func() bool {
		last, ok := mock.LastSent()
		return ok && last.Text == "What would you like to do?"
	}, 2*time.Second)

	cancel()
	<-done
}

func TestDaemonRun_AdapterCloseEndsRun(t *testing.T) {
	mock := NewMockAdapter()
	var buf bytes.Buffer

	cfg := daemonTestCfg()
	cfg.Drawings.Dir = t.TempDir()
	d, err := NewDaemon(DaemonOpts{
		DB:      openEngineTestDB(t),
		Config:  cfg,
		Adapter: mock,
		Out:     &buf,
	})
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- d.Run(context.Background())
	}()

	waitFor(t, func() bool {
		return strings.Contains(buf.String(), "Toolcrib online")
	}, 2*time.Second)

	mock.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
	if !strings.Contains(buf.String(), "inbound channel closed") {
		t.Errorf("missing channel closed message: %s", buf.String())
	}
}
