package domain

import (
	"fmt"
	"strings"
)

// ExecEnv selects how the browser is provisioned.
type ExecEnv string

const (
	// EnvLocal uses a locally installed browser.
	EnvLocal ExecEnv = "local"
	// EnvServerless uses a packaged, lambda-compatible browser build.
	EnvServerless ExecEnv = "serverless"
)

func ParseExecEnv(s string) (ExecEnv, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local", "dev":
		return EnvLocal, nil
	case "serverless", "lambda", "vercel":
		return EnvServerless, nil
	default:
		return "", fmt.Errorf("unknown exec env %q (valid: local, serverless)", s)
	}
}
