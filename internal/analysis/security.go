package analysis

import "sort"

// SecurityFinding is one security_risks row annotated with the scan's
// static remediation text for its risk type.
type SecurityFinding struct {
	RiskType    string `json:"risk_type"`
	Level       string `json:"level"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Reason      string `json:"reason"`
	Snippet     string `json:"snippet,omitempty"`
	Remediation string `json:"remediation"`
}

// SecurityReport groups every recorded risk by severity with an overall
// label, per spec.md §4.10.
type SecurityReport struct {
	OverallRisk    string            `json:"overall_risk"`
	CountsByLevel  map[string]int    `json:"counts_by_level"`
	Findings       []SecurityFinding `json:"findings"`
}

var remediations = map[string]string{
	"hardcoded_secret":         "move the value into environment configuration or a secret manager",
	"weak_crypto":              "use a modern hash (sha256+) or authenticated cipher",
	"sql_string_concat":        "use parameterized queries instead of string concatenation",
	"shell_true":               "pass an argument list and avoid shell=True",
	"eval_exec":                "avoid dynamic code execution; parse/validate input explicitly",
	"insecure_deserialization": "use a safe loader (e.g. yaml.safe_load) or a non-pickle format",
	"debug_mode_on":            "disable debug mode in production configuration",
	"bare_except":              "catch specific exception types",
	"insecure_randomness":      "use the secrets module or a CSPRNG for security-sensitive values",
	"aws_key":                  "revoke the key and load credentials from the environment/secret store",
	"private_key_header":       "remove the key from source control and rotate it",
	"security_todo":            "resolve the flagged security gap before release",
}

func (a *Analyzer) SecurityScan() (*SecurityReport, error) {
	return withCache(a, "security_scan", struct{}{}, func() (*SecurityReport, error) {
		risks, err := a.db.IterSecurityRisks()
		if err != nil {
			return nil, queryErr("security_scan", err)
		}

		report := &SecurityReport{CountsByLevel: map[string]int{"low": 0, "medium": 0, "high": 0, "critical": 0}}
		for _, r := range risks {
			level := string(r.RiskLevel)
			report.CountsByLevel[level]++
			report.Findings = append(report.Findings, SecurityFinding{
				RiskType: r.RiskType, Level: level, File: r.File, Line: r.Line,
				Reason: r.Reason, Snippet: r.Snippet, Remediation: remediations[r.RiskType],
			})
		}

		sort.Slice(report.Findings, func(i, j int) bool {
			pi, pj := levelRank(report.Findings[i].Level), levelRank(report.Findings[j].Level)
			if pi != pj {
				return pi > pj
			}
			return report.Findings[i].File < report.Findings[j].File
		})

		switch {
		case report.CountsByLevel["critical"] > 0:
			report.OverallRisk = "critical"
		case report.CountsByLevel["high"] > 0:
			report.OverallRisk = "high"
		case report.CountsByLevel["medium"] > 0:
			report.OverallRisk = "medium"
		case report.CountsByLevel["low"] > 0:
			report.OverallRisk = "low"
		default:
			report.OverallRisk = "none"
		}
		return report, nil
	})
}

func levelRank(level string) int {
	switch level {
	case "critical":
		return 3
	case "high":
		return 2
	case "medium":
		return 1
	default:
		return 0
	}
}
