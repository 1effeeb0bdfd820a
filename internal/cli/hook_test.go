package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateHookScript(t *testing.T) {
	script := generateHookScript("", false)

	if !strings.HasPrefix(script, hookMarkerStart) {
		t.Error("Script missing start marker")
	}
	if !strings.HasSuffix(script, hookMarkerEnd+"\n") {
		t.Error("Script missing end marker")
	}
	if !strings.Contains(script, `if [ "$GITGUARD_SCANNED" != "1" ]; then`) {
		t.Error("Script does not skip commits already scanned by gitguard")
	}
	if !strings.Contains(script, "  gitguard scan\n") {
		t.Error("Script missing gitguard scan invocation")
	}
	if !strings.Contains(script, "GITGUARD_EXIT=$?") {
		t.Error("Script missing exit code capture")
	}
	if strings.Count(script, "exit 1") != 2 {
		t.Error("Script should block on findings and on scan errors")
	}
	if strings.Contains(script, "allowing commit") {
		t.Error("Default script must fail closed")
	}
}

func TestGenerateHookScript_FailOpen(t *testing.T) {
	script := generateHookScript("", true)
	if !strings.Contains(script, "allowing commit") {
		t.Error("fail-open script should allow the commit on scan errors")
	}
	if strings.Count(script, "exit 1") != 1 {
		t.Error("fail-open script should only block on findings")
	}
}

func TestGenerateHookScript_Rules(t *testing.T) {
	script := generateHookScript("/etc/gitguard/it's rules.yaml", false)
	if !strings.Contains(script, `gitguard scan --rules '/etc/gitguard/it'\''s rules.yaml'`) {
		t.Errorf("rules path not quoted:\n%s", script)
	}
}

func TestReplaceHookSection_NoExisting(t *testing.T) {
	existing := "#!/bin/sh\nsome-other-hook\n"
	section := generateHookScript("", false)

	result := replaceHookSection(existing, section)

	if !strings.HasPrefix(result, existing) {
		t.Error("Existing content should be preserved")
	}
	if !strings.HasSuffix(result, section) {
		t.Error("New section should be appended")
	}
}

func TestReplaceHookSection_ExistingSection(t *testing.T) {
	oldSection := generateHookScript("", true)
	existing := "#!/bin/sh\nbefore\n" + oldSection + "after\n"
	newSection := generateHookScript("", false)

	result := replaceHookSection(existing, newSection)

	if result != "#!/bin/sh\nbefore\n"+newSection+"after\n" {
		t.Errorf("unexpected result:\n%s", result)
	}
	if strings.Count(result, hookMarkerStart) != 1 {
		t.Error("Old section should be replaced, not duplicated")
	}
}

func TestReplaceHookSection_NoTrailingNewline(t *testing.T) {
	section := generateHookScript("", false)
	result := replaceHookSection("#!/bin/sh\nsome-hook", section)
	if result != "#!/bin/sh\nsome-hook\n"+section {
		t.Errorf("unexpected result:\n%s", result)
	}
}

func TestRemoveHookSection(t *testing.T) {
	section := generateHookScript("", false)
	existing := "#!/bin/sh\nbefore\n" + section + "after\n"

	result := removeHookSection(existing)

	if result != "#!/bin/sh\nbefore\nafter\n" {
		t.Errorf("unexpected result:\n%s", result)
	}
}

func TestRemoveHookSection_NoSection(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook\n"
	if result := removeHookSection(existing); result != existing {
		t.Error("Content without gitguard section should be unchanged")
	}
}

func TestHookInstallUninstall(t *testing.T) {
	isolate(t)
	dir := setupRepo(t)
	hookPath := filepath.Join(dir, ".git", "hooks", "pre-commit")

	code, out, _ := runCLI(t, "", "hook", "install")
	if code != ExitSuccess {
		t.Fatalf("install exit = %d", code)
	}
	if !strings.Contains(out, "Installed gitguard pre-commit hook") {
		t.Errorf("stdout = %q", out)
	}
	data, err := os.ReadFile(hookPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh\n"+hookMarkerStart) {
		t.Errorf("hook content:\n%s", data)
	}
	info, err := os.Stat(hookPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Error("hook is not executable")
	}

	// Reinstalling keeps a single section.
	runCLI(t, "", "hook", "install")
	data, _ = os.ReadFile(hookPath)
	if strings.Count(string(data), hookMarkerStart) != 1 {
		t.Error("reinstall duplicated the section")
	}

	code, _, _ = runCLI(t, "", "hook", "uninstall")
	if code != ExitSuccess {
		t.Fatalf("uninstall exit = %d", code)
	}
	if _, err := os.Stat(hookPath); !os.IsNotExist(err) {
		t.Error("hook file with only the gitguard section should be removed")
	}

	_, out, _ = runCLI(t, "", "hook", "uninstall")
	if !strings.Contains(out, "No pre-commit hook found.") {
		t.Errorf("stdout = %q", out)
	}
}

func TestHookUninstall_KeepsOtherHooks(t *testing.T) {
	isolate(t)
	dir := setupRepo(t)
	hookPath := filepath.Join(dir, ".git", "hooks", "pre-commit")
	if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(hookPath, []byte("#!/bin/sh\nmake lint\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	runCLI(t, "", "hook", "install")
	runCLI(t, "", "hook", "uninstall")

	data, err := os.ReadFile(hookPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/bin/sh\nmake lint\n" {
		t.Errorf("hook content = %q", data)
	}
}
