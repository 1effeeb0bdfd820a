package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gitguard/internal/gitctx"
)

const (
	hookMarkerStart = "# >>> gitguard pre-commit hook >>>"
	hookMarkerEnd   = "# <<< gitguard pre-commit hook <<<"
)

var hookFailOpen bool

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install gitguard as a git pre-commit hook",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		hookPath, err := getHookPath(cmd)
		if err != nil {
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}

		section := generateHookScript(flagRules, hookFailOpen)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fail(stderr, ExitRuntimeError, "reading hook file: %v", err)
			return
		}

		var content string
		if len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fail(stderr, ExitRuntimeError, "creating hooks directory: %v", err)
			return
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(stderr, ExitRuntimeError, "writing hook file: %v", err)
			return
		}

		fmt.Fprintf(stdout, "Installed gitguard pre-commit hook at %s\n", hookPath)
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the gitguard pre-commit hook",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		hookPath, err := getHookPath(cmd)
		if err != nil {
			fail(stderr, ExitRuntimeError, "%v", err)
			return
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(stdout, "No pre-commit hook found.")
				return
			}
			fail(stderr, ExitRuntimeError, "reading hook file: %v", err)
			return
		}

		content := removeHookSection(string(existing))

		// Only the shebang left
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fail(stderr, ExitRuntimeError, "removing hook file: %v", err)
				return
			}
			fmt.Fprintf(stdout, "Removed gitguard pre-commit hook at %s\n", hookPath)
			return
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(stderr, ExitRuntimeError, "writing hook file: %v", err)
			return
		}
		fmt.Fprintf(stdout, "Removed gitguard section from %s\n", hookPath)
	},
}

func getHookPath(cmd *cobra.Command) (string, error) {
	repo, err := gitctx.Open(cmd.Context(), "")
	if err != nil {
		return "", err
	}
	dir, err := repo.HooksDir(cmd.Context())
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pre-commit"), nil
}

// generateHookScript renders the marker-delimited hook section. Commits made
// by gitguard commit were already scanned and carry gitctx.SkipHookEnv.
// Scanner errors block the commit unless failOpen is set.
func generateHookScript(rules string, failOpen bool) string {
	args := "gitguard scan"
	if rules != "" {
		args += " --rules " + shellQuote(rules)
	}

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	fmt.Fprintf(&b, "if [ \"$%s\" != \"1\" ]; then\n", gitctx.SkipHookEnv)
	b.WriteString("  " + args + "\n")
	b.WriteString("  GITGUARD_EXIT=$?\n")
	b.WriteString("  if [ $GITGUARD_EXIT -eq 1 ]; then\n")
	b.WriteString("    echo \"gitguard: secrets detected in staged changes, commit blocked\"\n")
	b.WriteString("    exit 1\n")
	b.WriteString("  elif [ $GITGUARD_EXIT -ge 2 ]; then\n")
	if failOpen {
		b.WriteString("    echo \"gitguard: scan failed (exit $GITGUARD_EXIT), allowing commit\"\n")
	} else {
		b.WriteString("    echo \"gitguard: scan failed (exit $GITGUARD_EXIT), commit blocked\"\n")
		b.WriteString("    exit 1\n")
	}
	b.WriteString("  fi\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(hookMarkerEnd):], "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return existing
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(hookMarkerEnd):], "\n")
	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().BoolVar(&hookFailOpen, "fail-open", false, "Allow the commit when the scan itself fails")
}
