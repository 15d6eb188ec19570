package secrets

import "regexp"

// Pattern defines a secret detection pattern.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// DefaultPatterns returns the credentials students and staff are likely to
// paste into a question: their own session, service configuration, and keys
// from coursework code. Order matters only for naming; Redact keeps the
// earliest of overlapping matches.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			// Authorization header copied from the browser dev tools.
			Name:  "Bearer Token",
			Regex: regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-_.~+/]{20,}=*`),
		},
		{
			// The backend session, alone or as the jwt cookie.
			Name:  "Session Token",
			Regex: regexp.MustCompile(`(?:\bjwt=)?eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`),
		},
		{
			Name:  "Model API Key",
			Regex: regexp.MustCompile(`\bsk-(?:ant-|proj-)?[A-Za-z0-9\-_]{20,}`),
		},
		{
			Name:  "Connection String",
			Regex: regexp.MustCompile(`(?:postgres(?:ql)?|mongodb(?:\+srv)?|rediss?|mysql)://\S+`),
		},
		{
			// DB_PASSWORD=..., JWT_SECRET: ... in .env files and shells.
			// ${VAR:default} placeholders are not values.
			Name:  "Credential Assignment",
			Regex: regexp.MustCompile(`\b[A-Z][A-Z0-9_]*(?:PASSWORD|SECRET|API_KEY|TOKEN)\s*[=:]\s*["']?[^\s"'$}{]\S*`),
		},
		{
			// password:/api_key: lines of a YAML config.
			Name:  "Config Secret",
			Regex: regexp.MustCompile(`(?m)^\s*(?:password|api_key|secret)\s*:\s*["']?[^\s"'$}{]\S*`),
		},
		{
			Name:  "Private Key",
			Regex: regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
		},
		{
			Name:  "AWS Access Key",
			Regex: regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		},
		{
			Name:  "GitHub Token",
			Regex: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
		},
	}
}
