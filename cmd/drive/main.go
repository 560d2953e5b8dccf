// Drive command-line client.
//
// Sub-commands:
//
//	drive login [-server url] [-device name]   Authenticate and save a token
//	drive logout                               Revoke and delete the saved token
//	drive ls [folder-id]                       List a folder (root by default)
//	drive trash                                List the trash
//	drive recent                               List recently updated files
//	drive sort <folder-id> <attr> [asc|desc]   List a folder sorted by name, updated_at or size
//	drive mkdir <parent-id> <name>             Create a folder
//	drive rm <id>...                           Move files to the trash
//	drive get <id>...                          Download files (several are zipped)
//	drive put <folder-id> <path>...            Upload local files
//	drive offline [id]                         Toggle offline availability, or list
//	drive open <id>                            Open a file with the default application
//	drive url <id>                             Print a direct download link
//	drive shell                                Interactive session
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fruitsalade/drive/internal/config"
	"github.com/fruitsalade/drive/internal/drive"
	"github.com/fruitsalade/drive/internal/logging"
	"github.com/fruitsalade/drive/internal/metrics"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/platform"
	"github.com/fruitsalade/drive/internal/registry"
	"github.com/fruitsalade/drive/internal/remote"
	"github.com/fruitsalade/drive/internal/retry"
	"github.com/fruitsalade/drive/internal/storage"
	"github.com/fruitsalade/drive/internal/view"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "login":
		cmdLogin(args)
		return
	case "logout":
		cmdLogout(args)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	if !a.run(ctx, cmd, args) {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Drive client

Usage: drive <command> [args]

Commands:
  login [-server url] [-device name]   Authenticate and save a token
  logout                               Revoke and delete the saved token
  ls [folder-id]                       List a folder (root by default)
  trash                                List the trash
  recent                               List recently updated files
  sort <folder-id> <attr> [asc|desc]   Sort by name, updated_at or size
  mkdir <parent-id> <name>             Create a folder
  rm <id>...                           Move files to the trash
  get <id>...                          Download files (several are zipped)
  put <folder-id> <path>...            Upload local files
  offline [id]                         Toggle offline availability, or list
  open <id>                            Open a file with the default application
  url <id>                             Print a direct download link
  shell                                Interactive session

Configuration is read from the environment (DRIVE_SERVER_URL, DRIVE_TOKEN,
DRIVE_PLATFORM, DRIVE_OFFLINE_BACKEND, DRIVE_REGISTRY_BACKEND, LOG_LEVEL, ...).`)
}

// app holds the wired client components.
type app struct {
	cfg      *config.Config
	client   *remote.Client
	drive    *drive.Drive
	bus      *notify.Bus
	state    *view.Reducer
	registry registry.Registry
	store    storage.Backend
	token    *remote.TokenFile
	metrics  *http.Server
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: "stderr"}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	a := &app{cfg: cfg}

	token := cfg.Token
	if token == "" {
		if tf, err := remote.LoadToken(config.TokenFilePath()); err == nil {
			a.token = tf
			token = tf.Token
			if tf.Server != "" && os.Getenv("DRIVE_SERVER_URL") == "" {
				cfg.ServerURL = tf.Server
			}
		}
	}

	rc := retry.DefaultConfig()
	if cfg.RetryAttempts > 0 {
		rc.MaxAttempts = cfg.RetryAttempts
	}
	a.client = remote.New(remote.Config{
		BaseURL:     cfg.ServerURL,
		Timeout:     cfg.Timeout,
		RetryConfig: rc,
		AuthToken:   token,
	})

	if a.token != nil && a.token.IsExpired(time.Minute) {
		logging.Info("saved token expired, refreshing")
		if err := a.client.RefreshToken(ctx, a.token); err != nil {
			return nil, fmt.Errorf("saved token has expired, run 'drive login': %w", err)
		}
		if err := remote.SaveToken(config.TokenFilePath(), a.token); err != nil {
			logging.Warn("failed to save refreshed token", zap.Error(err))
		}
	}

	a.registry, err = registry.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open offline registry: %w", err)
	}

	var p platform.Platform
	switch cfg.Platform {
	case "device":
		a.store, err = storage.NewBackend(ctx, cfg)
		if err != nil {
			a.registry.Close()
			return nil, fmt.Errorf("open offline storage: %w", err)
		}
		p = platform.NewDevice(platform.DeviceConfig{DownloadDir: cfg.DownloadDir, Store: a.store})
	default:
		p = platform.NewDesktop(cfg.DownloadDir)
	}

	offline, err := a.registry.List(ctx)
	if err != nil {
		logging.Warn("list offline registry", zap.Error(err))
	}
	ids := make([]string, len(offline))
	for i, e := range offline {
		ids[i] = e.FileID
	}
	metrics.SetOfflineFiles(len(ids))

	a.state = view.NewReducer(ids...)
	a.bus = notify.NewBus(a.state)
	a.drive = drive.New(a.client,
		drive.WithPlatform(p),
		drive.WithRegistry(a.registry),
		drive.WithDispatcher(a.bus),
		drive.WithPageSize(cfg.PageSize),
		drive.WithRecentLimit(cfg.RecentLimit),
	)

	if cfg.MetricsAddr != "" {
		a.metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("metrics server failed", zap.Error(err))
			}
		}()
		logging.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	logging.Debug("client ready",
		zap.String("server", cfg.ServerURL),
		zap.String("platform", p.Name()),
		zap.String("registry", cfg.RegistryBackend))
	return a, nil
}

func (a *app) close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.metrics.Shutdown(ctx)
		cancel()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.registry != nil {
		a.registry.Close()
	}
	logging.Sync()
}

func cmdLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	serverURL := fs.String("server", os.Getenv("DRIVE_SERVER_URL"), "Server URL")
	deviceName := fs.String("device", "", "Device name (default: hostname)")
	fs.Parse(args)

	if *serverURL == "" {
		*serverURL = "http://localhost:8080"
	}
	if *deviceName == "" {
		name, _ := os.Hostname()
		*deviceName = name
	}

	c := remote.New(remote.Config{BaseURL: *serverURL, Timeout: 30 * time.Second})

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}

	tf, err := c.Login(context.Background(), username, string(passwordBytes), *deviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := remote.SaveToken(config.TokenFilePath(), tf); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save token: %v\n", err)
	}
	fmt.Printf("Login successful! Logged in as %s. Token saved to %s\n", tf.Username, config.TokenFilePath())
}

func cmdLogout(args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Parse(args)

	tf, err := remote.LoadToken(config.TokenFilePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "No saved token found.\n")
		os.Exit(1)
	}

	c := remote.New(remote.Config{BaseURL: tf.Server, Timeout: 10 * time.Second, AuthToken: tf.Token})
	if err := c.Logout(context.Background()); err != nil {
		logging.Debug("server logout failed (token may already be expired)", zap.Error(err))
	}

	if err := remote.DeleteToken(config.TokenFilePath()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to delete token file: %v\n", err)
	}
	fmt.Println("Logged out successfully.")
}
