package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/gitguard/internal/gitctx"
	"github.com/dshills/gitguard/internal/output"
	"github.com/dshills/gitguard/internal/secrets"
)

var flagStdin bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the staged changes for secrets",
	Long: "Scans the staged diff, or a unified diff read from stdin with --stdin, " +
		"and exits 1 when any secret is found.",
	Args: cobra.NoArgs,
	Run:  runScan,
}

func init() {
	f := scanCmd.Flags()
	f.BoolVar(&flagStdin, "stdin", false, "Read the diff from stdin instead of the index")
	f.StringVarP(&flagFormat, "format", "f", "", "Output format (text, json, markdown, sarif)")
	f.StringVarP(&flagOut, "out", "o", "", "Write the report to this file")
	f.BoolVar(&flagShowContext, "show-context", false, "Show the masked source line of each finding")
	f.BoolVar(&flagSkipScan, "skip-secret-scan", false, "Exit 0 without scanning for secrets")
}

func runScan(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	s, err := newSession(stderr)
	if err != nil {
		fail(stderr, ExitUsageError, "%v", err)
		return
	}
	defer s.Close()

	if s.cfg.SkipSecretScan {
		s.audit().Warn("secret scan skipped", zap.Bool("skipped", true))
		fmt.Fprintln(stderr, "Secret scan skipped (skipSecretScan is set).")
		return
	}

	writer, err := output.GetWriter(s.cfg.Format, output.Options{ShowContext: flagShowContext})
	if err != nil {
		fail(stderr, ExitUsageError, "%v", err)
		return
	}

	var (
		diff   string
		source = "staged"
		info   output.RepoInfo
	)
	if flagStdin {
		source = "stdin"
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			fail(stderr, ExitRuntimeError, "reading stdin: %v", err)
			return
		}
		diff = string(data)
	} else {
		repo, err := gitctx.Open(ctx, "")
		if err != nil {
			fail(stderr, ExitUsageError, "%v", err)
			return
		}
		meta := repo.Meta(ctx)
		info = output.RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
		diff, err = repo.StagedDiff(ctx)
		if err != nil {
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}
	}

	sc, err := s.newScanner()
	if err != nil {
		fail(stderr, ExitRuntimeError, "%v", err)
		return
	}
	start := time.Now()
	findings, err := sc.Scan(ctx, diff)
	if err != nil {
		fail(stderr, ExitRuntimeError, "%v", err)
		return
	}
	report := output.NewReport(version, source, info, findings, time.Since(start))

	s.audit().Info("secret scan",
		zap.String("run_id", report.RunID),
		zap.String("source", source),
		zap.Int("findings", len(findings)),
		zap.Strings("files", report.Files),
	)

	if flagOut != "" {
		err = output.WriteReport(report, s.cfg.Format, flagOut, output.Options{ShowContext: flagShowContext})
	} else {
		err = writer.Write(stdout, report)
	}
	if err != nil {
		fail(stderr, ExitRuntimeError, "writing report: %v", err)
		return
	}

	if len(findings) > 0 {
		exitCode = ExitFindings
	}
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the secret patterns in effect",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		s, err := newSession(stderr)
		if err != nil {
			fail(stderr, ExitUsageError, "%v", err)
			return
		}
		defer s.Close()
		printPatterns(stdout, s.registry.Patterns())
		if s.cfg.Secrets.ExtendedRules {
			fmt.Fprintln(stdout, "\nExtended gitleaks rules enabled.")
		}
	},
}

func printPatterns(w io.Writer, patterns []secrets.Pattern) {
	for _, p := range patterns {
		mark := ""
		if p.ReportInExamples {
			mark = "  (also in example files)"
		}
		fmt.Fprintf(w, "%s%s\n", p.Name, mark)
	}
}
