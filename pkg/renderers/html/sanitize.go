package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	resultPolicyOnce sync.Once
	resultPolicy     *bluemonday.Policy
)

// resultSanitizer keeps inline formatting only. It backs the trusted-result
// mode, where the service may return light markup in the final result.
func resultSanitizer() *bluemonday.Policy {
	resultPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "sub", "sup", "br", "span", "mark")
		policy.AllowAttrs("class").OnElements("span", "code", "mark")
		resultPolicy = policy
	})
	return resultPolicy
}

func sanitizeResult(policy *bluemonday.Policy, raw string) string {
	if policy == nil {
		policy = resultSanitizer()
	}
	return strings.TrimSpace(policy.Sanitize(raw))
}
