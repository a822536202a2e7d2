package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tartampluch/birthday-bot/internal/config"
	"github.com/tartampluch/birthday-bot/internal/engine"
	"github.com/tartampluch/birthday-bot/internal/mailer"
	"github.com/tartampluch/birthday-bot/internal/scheduler"
	"github.com/tartampluch/birthday-bot/internal/server"
)

// main is the application entry point.
// It delegates execution to runMain so deferred calls (like closing the log
// file) run before the process exits; os.Exit() does not run defers.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. Environment
	// -------------------------------------------------------------------------
	// A local .env file is optional; real environment variables win.
	dotEnvErr := godotenv.Load(config.DotEnvFile)

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	debugMode, _ := strconv.ParseBool(os.Getenv(config.EnvDebug))
	logCloser := setupLogging(debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}
	if dotEnvErr != nil {
		slog.Debug(config.ErrDotEnv, config.LogKeyComponent, config.CompMain, config.LogKeyError, dotEnvErr)
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads settings, wires dependencies and blocks until ctx is cancelled.
func run(ctx context.Context) error {
	settings, err := config.LoadSettings(config.NewViper(), config.KeyringLookup)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettings, err)
	}

	// Dependency Injection.
	composer, err := mailer.NewComposer()
	if err != nil {
		return err
	}
	notifier := &mailer.Mailer{
		Composer:   composer,
		Dispatcher: mailer.NewDispatcher(mailer.NewSender(settings), mailer.OptionsFromSettings(settings)),
	}

	checker := &engine.Checker{
		Clock:         engine.RealClock{Loc: settings.Location},
		Notifier:      notifier,
		VCardPath:     settings.VCardPath,
		DefaultBefore: settings.DefaultBefore,
		Summary:       composer.Summary,
	}

	srv := server.NewBotServer(settings.BindAddr, settings.Port, checker)
	checker.Publisher = srv

	daily, err := scheduler.NewDaily(settings.CheckSchedule, settings.Location, func() {
		slog.Info(config.MsgScheduledRun, config.LogKeyComponent, config.CompScheduler)
		checker.RunCheck(ctx, config.TriggerScheduled)
	})
	if err != nil {
		return err
	}

	// Serve a calendar right away instead of waiting for the first check.
	checker.Publish()

	// The scheduler shares the server's lifetime: if the listener fails to
	// start, the scheduler stops as well.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		daily.Run(runCtx)
	}()

	err = srv.Start(runCtx)
	stop()
	wg.Wait()
	return err
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
