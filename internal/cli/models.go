package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/gitguard/internal/config"
	"github.com/dshills/gitguard/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Message provider management",
}

func providerList() string {
	return strings.Join(providers.Names(), ", ")
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and their default models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range providers.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, providers.DefaultModel(name))
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			fail(stderr, ExitUsageError, "%v", err)
			return
		}

		fmt.Fprintf(stdout, "Checking %s...\n", cfg.Provider)

		p, err := providers.New(cfg.Provider, cfg.Model)
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		_, err = p.Generate(ctx, providers.Request{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		})
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return
		}

		fmt.Fprintf(stdout, "OK: %s is configured and responding\n", p.Name())
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
