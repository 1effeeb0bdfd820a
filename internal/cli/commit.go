package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/gitguard/internal/cache"
	"github.com/dshills/gitguard/internal/gitctx"
	"github.com/dshills/gitguard/internal/message"
	"github.com/dshills/gitguard/internal/output"
	"github.com/dshills/gitguard/internal/providers"
	"github.com/dshills/gitguard/internal/remediate"
	"github.com/dshills/gitguard/internal/secrets"
)

var (
	flagMessage string
	flagDryRun  bool
	flagNoCache bool
)

// stdinIsTerminal reports whether the remediation prompt can be answered.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Scan the staged changes and commit them",
	Long: "Scans the staged diff for secrets, resolves any findings interactively, " +
		"then commits with the given message or one generated by the configured provider.",
	Args: cobra.NoArgs,
	Run:  runCommit,
}

func init() {
	f := commitCmd.Flags()
	f.StringVarP(&flagMessage, "message", "m", "", "Commit message (skips generation)")
	f.BoolVar(&flagDryRun, "dry-run", false, "Print the commit message without committing")
	f.BoolVar(&flagSkipScan, "skip-secret-scan", false, "Commit without scanning for secrets")
	f.StringVar(&flagProvider, "provider", "", "LLM provider ("+providerList()+")")
	f.StringVar(&flagModel, "model", "", "Model name for the provider")
	f.StringVar(&flagExclude, "exclude", "", "Comma-separated globs left out of the message prompt")
	f.IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Diff bytes sent to the provider (negative disables truncation)")
	f.BoolVar(&flagShowContext, "show-context", false, "Show the masked source line of each finding")
	f.BoolVar(&flagNoCache, "no-cache", false, "Always ask the provider for a new message")
}

func runCommit(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	s, err := newSession(stderr)
	if err != nil {
		fail(stderr, ExitUsageError, "%v", err)
		return
	}
	defer s.Close()

	repo, err := gitctx.Open(ctx, "")
	if err != nil {
		fail(stderr, ExitUsageError, "%v", err)
		return
	}

	staged, err := repo.StagedFiles(ctx)
	if err != nil {
		fail(stderr, ExitRuntimeError, "%v", err)
		return
	}
	if len(staged) == 0 {
		fmt.Fprintln(stderr, "Nothing staged to commit.")
		exitCode = ExitUsageError
		return
	}

	var diff string
	if s.cfg.SkipSecretScan {
		s.audit().Warn("secret scan skipped",
			zap.Bool("skipped", true),
			zap.Strings("files", staged),
		)
		diff, err = repo.StagedDiff(ctx)
		if err != nil {
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}
	} else {
		sc, err := s.newScanner()
		if err != nil {
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}
		res, err := remediate.Gate(ctx, repo, sc, newWorkflow(s, repo, stderr))
		switch {
		case errors.Is(err, remediate.ErrUnstageFailed):
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		case errors.Is(err, remediate.ErrNoDecision):
			fmt.Fprintln(stderr, "Secrets found and stdin is not a terminal. Commit aborted.")
			exitCode = ExitFindings
			return
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(stderr, "Interrupted. Commit aborted.")
			exitCode = ExitFindings
			return
		case err != nil:
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}
		if res.Outcome.State == remediate.StateAborted {
			fmt.Fprintln(stderr, "Commit aborted.")
			exitCode = ExitFindings
			return
		}
		if len(res.Files) == 0 {
			fmt.Fprintln(stderr, "All staged files were unstaged. Nothing left to commit.")
			return
		}
		if len(res.Removed) > 0 {
			fmt.Fprintf(stderr, "Unstaged %d file(s); committing the remaining %d.\n", len(res.Removed), len(res.Files))
		}
		diff = res.Diff
	}

	msg := flagMessage
	if msg == "" {
		msg, err = generateMessage(cmd, s, diff)
		if err != nil {
			if providers.IsAuthError(err) {
				fail(stderr, ExitAuthError, "%v", err)
				return
			}
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}
	}

	if flagDryRun {
		fmt.Fprintln(stdout, msg)
		return
	}
	if err := repo.Commit(ctx, msg); err != nil {
		fail(stderr, ExitRuntimeError, "%v", err)
		return
	}
	fmt.Fprintln(stdout, firstLine(msg))
}

func newWorkflow(s *session, repo *gitctx.Repo, stderr io.Writer) *remediate.Workflow {
	w := &remediate.Workflow{
		Unstager: repo,
		Logger:   s.audit(),
		Render: func(findings []secrets.Finding) {
			fmt.Fprintf(stderr, "Potential secrets detected: %d finding(s)\n", len(findings))
			_ = output.WriteFindings(stderr, findings, flagShowContext)
			fmt.Fprintln(stderr)
		},
	}
	if stdinIsTerminal() {
		w.Source = remediate.NewPrompt(os.Stdin, stderr)
	}
	return w
}

func generateMessage(cmd *cobra.Command, s *session, diff string) (string, error) {
	gen, err := providers.New(s.cfg.Provider, s.cfg.Model)
	if err != nil {
		return "", err
	}
	p := message.Build(diff, message.Options{
		Exclude:      s.cfg.Exclude,
		MaxDiffBytes: s.cfg.MaxDiffBytes,
		Redactor:     s.redactor(),
	})
	if p.Truncated {
		s.logger.Info("prompt diff truncated", zap.Int("maxDiffBytes", s.cfg.MaxDiffBytes))
	}

	model := s.cfg.Model
	if model == "" {
		model = providers.DefaultModel(gen.Name())
	}
	c, err := cache.New(s.cfg.Cache.Enabled && !flagNoCache, s.cfg.Cache.Dir, s.cfg.Cache.TTLSeconds)
	if err != nil {
		s.logger.Warn("message cache unavailable", zap.Error(err))
		c, _ = cache.New(false, "", 0)
	}
	key := cache.Key(gen.Name(), model, p.System, p.User)
	if msg, ok := c.Get(key); ok {
		s.logger.Debug("commit message cache hit", zap.String("key", key))
		return msg, nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating commit message with %s...\n", gen.Name())
	msg, err := message.Generate(cmd.Context(), gen, p)
	if err != nil {
		return "", err
	}
	if err := c.Put(key, gen.Name(), model, msg); err != nil {
		s.logger.Warn("caching commit message", zap.Error(err))
	}
	return msg, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
