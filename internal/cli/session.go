package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/gitguard/internal/config"
	"github.com/dshills/gitguard/internal/logging"
	"github.com/dshills/gitguard/internal/redact"
	"github.com/dshills/gitguard/internal/secrets"
)

// Shared flags
var (
	flagLogLevel      string
	flagAuditLog      string
	flagRules         string
	flagExtendedRules bool
	flagProvider      string
	flagModel         string
	flagFormat        string
	flagOut           string
	flagExclude       string
	flagMaxDiffBytes  int
	flagShowContext   bool
	flagSkipScan      bool
)

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	if flagAuditLog != "" {
		m["auditLog"] = flagAuditLog
	}
	if flagRules != "" {
		m["secrets.rulesFile"] = flagRules
	}
	if flagExtendedRules {
		m["secrets.extendedRules"] = "true"
	}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagExclude != "" {
		m["exclude"] = strings.Join(splitComma(flagExclude), ",")
	}
	if flagMaxDiffBytes != 0 {
		m["maxDiffBytes"] = strconv.Itoa(flagMaxDiffBytes)
	}
	if flagSkipScan {
		m["skipSecretScan"] = "true"
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// session holds what every scanning command builds from the effective
// configuration.
type session struct {
	cfg      config.Config
	logger   *zap.Logger
	closeLog func() error
	registry *secrets.Registry
}

// newSession loads configuration and builds the logger and pattern registry.
// Console logs go to stderr.
func newSession(stderr io.Writer) (*session, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		AuditLog: cfg.AuditLog,
		Writer:   stderr,
	})
	if err != nil {
		return nil, err
	}

	rules, err := secrets.LoadRules(cfg.Secrets.RulesFile)
	if err != nil {
		closeLog()
		return nil, err
	}
	reg, err := secrets.NewRegistry(rules)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("building pattern registry: %w", err)
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		closeLog: closeLog,
		registry: reg,
	}, nil
}

// newScanner builds the secret scanner from the session's registry and
// settings. Callers honouring skipSecretScan never call it.
func (s *session) newScanner() (*secrets.Scanner, error) {
	opts := []secrets.Option{
		secrets.WithRegistry(s.registry),
		secrets.WithLogger(s.logger.Named("scan")),
		secrets.WithWorkers(s.cfg.Secrets.Workers),
		secrets.WithMaxMatchDisplay(s.cfg.Secrets.MaxMatchDisplay),
	}
	if s.cfg.Secrets.ExtendedRules {
		d, err := secrets.NewGitleaksDetector()
		if err != nil {
			return nil, err
		}
		opts = append(opts, secrets.WithLineDetector(d))
	}
	return secrets.NewScanner(opts...), nil
}

// audit returns the logger whose records reach the audit log.
func (s *session) audit() *zap.Logger {
	return s.logger.Named(logging.AuditName)
}

func (s *session) redactor() *redact.Redactor {
	return redact.New(s.registry, s.cfg.RedactPaths)
}

func (s *session) Close() {
	if s.closeLog != nil {
		_ = s.closeLog()
	}
}

// fail reports err on stderr and sets the exit code.
func fail(w io.Writer, code int, format string, args ...any) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
	exitCode = code
}
