// Command mwctl runs one Merchant Warrior operation and prints the result as JSON.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/secrets"
	"github.com/kevin07696/merchantwarrior-go/internal/config"
	"github.com/kevin07696/merchantwarrior-go/pkg/httpclient"
	"github.com/kevin07696/merchantwarrior-go/pkg/logging"
	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: mwctl <command> [arguments]

commands:
  query <transactionID> [-extended]
  card-info <cardID> <cardKey>
  remove-card <cardID> <cardKey>
  refund <amount> <currency> <transactionID> <refundAmount>
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, err := parseCommand(args)
	if err != nil {
		fmt.Fprintf(stderr, "mwctl: %v\n\n%s", err, usage)
		return exitUsage
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "mwctl: %v\n", err)
		return exitError
	}

	zl := initLogger(cfg.Logger)
	logger := zl.Zap()
	defer logger.Sync()

	client, err := newClient(ctx, cfg, zl)
	if err != nil {
		logger.Error("Failed to initialize client", zap.Error(err))
		fmt.Fprintf(stderr, "mwctl: %v\n", err)
		return exitError
	}

	result, err := cmd.execute(ctx, client)
	if err != nil {
		logger.Error("Operation failed",
			zap.String("command", cmd.name),
			zap.String("kind", string(merchantwarrior.KindOf(err))),
			zap.Error(err),
		)
		fmt.Fprintf(stderr, "mwctl: %v\n", err)
		return exitError
	}

	if err := writeResult(stdout, cmd.name, result); err != nil {
		fmt.Fprintf(stderr, "mwctl: %v\n", err)
		return exitError
	}
	return exitOK
}

// newClient resolves the passphrase and builds the API client
func newClient(ctx context.Context, cfg *config.Config, zl *logging.ZapLogger) (*merchantwarrior.Client, error) {
	logger := zl.Zap()
	reader, err := initSecretReader(ctx, cfg.Secrets, logger)
	if err != nil {
		return nil, err
	}

	passphrase, err := secrets.ResolvePassphrase(ctx, reader, cfg.Secrets.PassphrasePath, cfg.Merchant.APIPassphrase)
	if err != nil {
		return nil, err
	}

	clientCfg := cfg.Merchant.ClientConfig()
	clientCfg.APIPassphrase = passphrase

	opts := append([]merchantwarrior.Option{
		merchantwarrior.WithHTTPClient(httpclient.NewHTTPClient(httpclient.GatewayClientConfig(), cfg.Merchant.HTTPTimeout())),
		merchantwarrior.WithLogger(zl),
	}, cfg.Merchant.ClientOptions()...)

	client := merchantwarrior.NewClient(clientCfg, opts...)

	logger.Debug("Merchant Warrior client initialized",
		zap.String("payment_url", client.PaymentURL()),
		zap.String("token_url", client.TokenURL()),
		zap.Bool("test_mode", clientCfg.TestMode),
	)
	return client, nil
}

// initLogger initializes the logger. Output goes to stderr so stdout stays JSON.
func initLogger(cfg config.LoggerConfig) *logging.ZapLogger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	build := logging.NewZapProduction
	if cfg.Development {
		build = logging.NewZapDevelopment
	}

	logger, err := build(level)
	if err != nil {
		return logging.NewZap(zap.NewNop())
	}
	return logger
}
