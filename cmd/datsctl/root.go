package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethaccount/dats/src/app"
	"github.com/ethaccount/dats/src/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	envFile    = ".env"
	minBalance string

	rootCmd = &cobra.Command{
		Use:   "datsctl",
		Short: "Submit ERC-4337 user operations for the DATS settings contract",
		Long: `datsctl derives the counterfactual smart account of the configured signing key,
builds calldata for the DATS settings contract, the test token and the universal router,
and submits it as a sponsored user operation.

Configuration is read from the environment, after loading --env-file when it exists.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.LoadEnvFile(envFile)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&minBalance, "min-balance", "", "fail before submitting when the account holds less of TOKEN_ADDRESS (base units)")
}

// commandContext is cancelled on SIGINT / SIGTERM and carries the stderr logger.
func commandContext(levelStr string) (context.Context, context.CancelFunc) {
	logger := app.InitLogger(levelStr, os.Stderr)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return logger.WithContext(ctx), cancel
}

// withApplication loads the configuration, wires the application and runs fn with it.
func withApplication(fn func(ctx context.Context, application *app.Application) error) error {
	config, err := app.NewAppConfig()
	if err != nil {
		bootLogger := app.InitLogger("info", os.Stderr)
		bootLogger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, cancel := commandContext(*config.LogLevel)
	defer cancel()

	application, err := app.NewApplication(ctx, *config)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to initialize application")
		return err
	}
	defer application.Shutdown(ctx)

	if err := fn(ctx, application); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

// submit runs one operation through the execution pipeline and prints its result.
func submit(cmd *cobra.Command, action string, build service.CallDataBuilder) error {
	return withApplication(func(ctx context.Context, application *app.Application) error {
		return runOperation(ctx, cmd, application, action, build)
	})
}

func runOperation(ctx context.Context, cmd *cobra.Command, application *app.Application, action string, build service.CallDataBuilder) error {
	if minBalance != "" {
		min, ok := new(big.Int).SetString(minBalance, 0)
		if !ok || min.Sign() < 0 {
			return fmt.Errorf("invalid --min-balance %q", minBalance)
		}
		account, err := application.Execution.Account(ctx)
		if err != nil {
			return err
		}
		if err := application.Accounts.RequireTokenBalance(ctx, application.Config().TokenAddress, account.Sender, min); err != nil {
			return err
		}
	}

	result, err := application.Execution.Execute(ctx, action, build)
	if err != nil {
		return err
	}
	if err := printJSON(cmd, result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("user operation %s reverted in transaction %s", result.UserOpHash.Hex(), result.TxHash.Hex())
	}
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
