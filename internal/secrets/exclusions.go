package secrets

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	regexp "github.com/wasilibs/go-re2"
)

// placeholderWords are case-insensitive substrings that mark a value as a
// documentation placeholder rather than a credential.
var placeholderWords = []string{
	"example",
	"your_api_key_here",
	"your-api-key-here",
	"your_api_key",
	"yourapikey",
	"your_token",
	"your_secret",
	"placeholder",
	"changeme",
	"change_me",
	"replace_me",
	"replaceme",
	"insert_",
	"dummy",
	"sample",
	"redacted",
	"<your",
}

var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^x{3,}`),
	regexp.MustCompile(`(?i)x{6,}`),
	regexp.MustCompile(`^\*{3,}`),
	regexp.MustCompile(`^\.{3,}`),
	regexp.MustCompile(`^<[^>]+>$`),
	regexp.MustCompile(`^\$\{[^}]*\}$`),
	regexp.MustCompile(`^\{\{.*\}\}$`),
	regexp.MustCompile(`(?i)^(?:fake|dummy|mock)[_-]`),
}

// testPasswords are values that show up in fixtures and tutorials. Matched
// exactly, case-insensitively.
var testPasswords = map[string]struct{}{
	"password":     {},
	"password1":    {},
	"password123":  {},
	"passw0rd":     {},
	"p@ssw0rd":     {},
	"p@ssword":     {},
	"secret":       {},
	"secret123":    {},
	"test":         {},
	"test123":      {},
	"test1234":     {},
	"testing":      {},
	"testpassword": {},
	"testpass":     {},
	"admin":        {},
	"admin123":     {},
	"root":         {},
	"toor":         {},
	"changeme":     {},
	"letmein":      {},
	"qwerty":       {},
	"qwerty123":    {},
	"123456":       {},
	"12345678":     {},
	"123456789":    {},
	"hunter2":      {},
	"default":      {},
	"guest":        {},
	"pass":         {},
	"pass123":      {},
}

// exampleEnvSuffixes name env files that document configuration rather than
// carry it.
var exampleEnvSuffixes = []string{
	".env.example",
	".env.template",
	".env.sample",
}

// IsExampleEnvFile reports whether filePath follows an example, template, or
// sample env file convention.
func IsExampleEnvFile(filePath string) bool {
	base := strings.ToLower(filepath.Base(filePath))
	for _, suffix := range exampleEnvSuffixes {
		if strings.HasSuffix(base, suffix) || base == strings.TrimPrefix(suffix, ".") {
			return true
		}
	}
	return false
}

// IsFalsePositive reports whether candidate should be discarded as a
// non-secret. Candidates inside example env files are discarded unless
// reportInExamples is set, which private key patterns carry.
func (r *Registry) IsFalsePositive(candidate, filePath string, reportInExamples bool) bool {
	if !reportInExamples && IsExampleEnvFile(filePath) {
		return true
	}
	return r.IsPlaceholder(candidate)
}

// IsPlaceholder reports whether candidate is a known placeholder, a run of a
// single repeated character, or a common test password.
func (r *Registry) IsPlaceholder(candidate string) bool {
	v := strings.Trim(strings.TrimSpace(candidate), "\"'`")
	if v == "" {
		return true
	}
	if repeatedChar(v) {
		return true
	}
	lower := strings.ToLower(v)
	if _, ok := testPasswords[lower]; ok {
		return true
	}
	for _, w := range placeholderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	for _, lit := range r.allowlist {
		if strings.Contains(lower, lit) {
			return true
		}
	}
	for _, re := range placeholderPatterns {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

func repeatedChar(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	for _, r := range s[size:] {
		if r != first {
			return false
		}
	}
	return true
}
