package grading

import "strings"

// KeywordMatch partitions a keyword list into terms present in the
// submission and terms missing from it. Keywords are trimmed and
// lower-cased; matching is substring containment.
func KeywordMatch(keywords []string, submission string) (matched, missing []string) {
	sub := strings.ToLower(submission)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(sub, k) {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}
	return matched, missing
}

// topicKeywords maps a topic trigger found in a challenge's
// title/description to the terms a correct answer should mention. The
// entries are heuristic sample data tuned for the seeded security
// curriculum, checked in authored order.
var topicKeywords = []struct {
	Category string
	Keywords []string
}{
	{"csrf", []string{"csrf", "token", "cross-site", "forgery", "request"}},
	{"xss", []string{"xss", "script", "cross-site", "scripting", "injection", "sanitize"}},
	{"sql", []string{"sql", "injection", "query", "database", "input", "parameterized"}},
	{"path", []string{"path", "traversal", "directory", "file", "sanitize", "validate"}},
	{"traversal", []string{"path", "traversal", "directory", "../", "file", "access"}},
	{"file", []string{"file", "path", "traversal", "inclusion", "lfi", "rfi", "validate"}},
	{"command", []string{"command", "injection", "shell", "execute", "os", "system"}},
	{"buffer", []string{"buffer", "overflow", "memory", "bounds", "stack"}},
	{"authentication", []string{"authentication", "password", "login", "session", "credential"}},
	{"authorization", []string{"authorization", "permission", "access", "role", "privilege"}},
	{"encryption", []string{"encryption", "decrypt", "cipher", "key", "ssl", "tls", "https"}},
	{"phishing", []string{"phishing", "suspicious", "fake", "malicious", "link", "email"}},
	{"vulnerability", []string{"vulnerability", "exploit", "attack", "security", "flaw"}},
	{"input", []string{"input", "validation", "sanitize", "sanitization", "user", "untrusted"}},
	{"open", []string{"file", "path", "traversal", "access", "validate", "sanitize"}},
}

// AutoKeywords infers a topic category from a challenge's title and
// description when no keyword list was authored. Returns the matched
// category and its keyword set, or "" and nil when no category applies.
func AutoKeywords(title, description string) (string, []string) {
	context := strings.ToLower(title) + " " + strings.ToLower(description)
	for _, entry := range topicKeywords {
		if strings.Contains(context, entry.Category) {
			return entry.Category, entry.Keywords
		}
	}
	return "", nil
}
