package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// Cross-language semantic-overlay recognizers (spec.md §3's "optional"
// overlay fields beyond api_endpoints/cross_cutting_concerns, which the
// language-specific parsers already populate). One shared line scan keeps
// every parser at its ≤1-traversal-per-artifact-kind budget (spec.md
// §4.5) rather than adding a second full pass per overlay kind.
var (
	configUsagePattern = regexp.MustCompile(`\bos\.(?:environ(?:\.get)?|getenv)\s*\(\s*["']([\w.]+)["']|process\.env\.(\w+)`)
	dbQueryPattern      = regexp.MustCompile(`\b(\w+)\.(?:execute|query|raw)\s*\(`)
	errorHandlerPattern = regexp.MustCompile(`^\s*(except\b|try\s*:|\.catch\s*\(|catch\s*\()`)
	sideEffectPattern   = regexp.MustCompile(`\b(print|console\.(?:log|warn|error)|open|fs\.write\w*|requests\.\w+|fetch)\s*\(`)
	concurrencyPattern  = regexp.MustCompile(`\b(await|async\s+def|threading\.Thread|asyncio\.\w+|Promise\.all|goroutine|go\s+func)\b`)
)

// securityRule is one entry of spec.md §4.10's enumerated security rule
// set. Matching happens here, during parsing, rather than in the
// analytical scan (C10), which only projects over the store's already-
// populated security_risks table.
type securityRule struct {
	riskType string
	level    model.RiskLevel
	reason   string
	pattern  *regexp.Regexp
}

var securityRules = []securityRule{
	{"hardcoded_secret", model.RiskCritical, "literal secret assigned to a credential-shaped variable",
		regexp.MustCompile(`(?i)\b(password|secret|api_?key|token)\s*[:=]\s*["'][^"'\s]{4,}["']`)},
	{"weak_crypto", model.RiskMedium, "use of a broken or deprecated hash/cipher",
		regexp.MustCompile(`(?i)\b(md5|sha1|des|rc4)\s*\(`)},
	{"sql_string_concat", model.RiskHigh, "SQL statement built via string concatenation/formatting",
		regexp.MustCompile(`(?i)(select|insert|update|delete)\b.*["'].*(\+|%s|\{\})`)},
	{"shell_true", model.RiskHigh, "subprocess invoked with shell=True",
		regexp.MustCompile(`shell\s*=\s*True`)},
	{"eval_exec", model.RiskCritical, "dynamic code execution via eval/exec",
		regexp.MustCompile(`\b(eval|exec)\s*\(`)},
	{"insecure_deserialization", model.RiskHigh, "deserializing untrusted data via pickle/yaml.load",
		regexp.MustCompile(`\bpickle\.loads?\s*\(|yaml\.load\s*\([^)]*\)(?:[^L]|$)`)},
	{"debug_mode_on", model.RiskMedium, "debug mode left enabled",
		regexp.MustCompile(`(?i)\bdebug\s*=\s*True\b|DEBUG\s*=\s*true`)},
	{"bare_except", model.RiskLow, "bare except swallows all exceptions",
		regexp.MustCompile(`^\s*except\s*:\s*$`)},
	{"insecure_randomness", model.RiskMedium, "non-cryptographic randomness used where security matters",
		regexp.MustCompile(`\brandom\.(?:random|randint|choice)\s*\(`)},
	{"aws_key", model.RiskCritical, "AWS access key literal",
		regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"private_key_header", model.RiskCritical, "embedded private key material",
		regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA )?PRIVATE KEY-----`)},
	{"security_todo", model.RiskLow, "TODO/FIXME flagging a known security gap",
		regexp.MustCompile(`(?i)(?:TODO|FIXME).*\b(security|vuln|auth|inject|xss|csrf)\b`)},
}

func scanSecurityRisks(r *model.ParseResult, path string, lines []string) {
	for i, line := range lines {
		lineNo := i + 1
		for _, rule := range securityRules {
			if rule.pattern.MatchString(line) {
				r.SecurityRisks = append(r.SecurityRisks, model.SecurityRisk{
					File: path, RiskType: rule.riskType, RiskLevel: rule.level,
					Reason: rule.reason, Line: lineNo, Snippet: strings.TrimSpace(line),
				})
			}
		}
	}
}

func scanOverlays(r *model.ParseResult, path string, lines []string) {
	for i, line := range lines {
		lineNo := i + 1

		if m := configUsagePattern.FindStringSubmatch(line); m != nil {
			key := m[1]
			if key == "" {
				key = m[2]
			}
			r.ConfigUsages = append(r.ConfigUsages, model.ConfigUsage{
				File: path, Key: key, Kind: model.ConfigUsageEnv, Line: lineNo,
			})
		}
		if m := dbQueryPattern.FindStringSubmatch(line); m != nil {
			r.DatabaseQueries = append(r.DatabaseQueries, model.DatabaseQuery{
				File: path, ORMType: m[1], Line: lineNo, Statement: strings.TrimSpace(line),
			})
		}
		if errorHandlerPattern.MatchString(line) {
			r.ErrorHandlers = append(r.ErrorHandlers, model.ErrorHandler{
				File: path, HandlerType: "try_except_catch", Line: lineNo,
			})
		}
		if m := sideEffectPattern.FindStringSubmatch(line); m != nil {
			r.SideEffects = append(r.SideEffects, model.SideEffect{
				File: path, EffectType: m[1], Line: lineNo,
			})
		}
		if m := concurrencyPattern.FindStringSubmatch(line); m != nil {
			r.ConcurrencyPatterns = append(r.ConcurrencyPatterns, model.ConcurrencyPattern{
				File: path, PatternType: m[1], Line: lineNo,
			})
		}
	}
	scanSecurityRisks(r, path, lines)
}
