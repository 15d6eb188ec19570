// Package intent maps a free-text chat message to the single intent that
// decides which backend data is fetched for it.
package intent

import (
	"strings"

	"github.com/kannou1/PFE/internal/types"
)

// Classify returns the first intent whose rule matches message, or general.
func Classify(message string) types.Intent {
	if strings.TrimSpace(message) == "" {
		return types.IntentGeneral
	}
	for _, r := range defaultRules {
		if r.Regex.MatchString(message) {
			return r.Intent
		}
	}
	return types.IntentGeneral
}
