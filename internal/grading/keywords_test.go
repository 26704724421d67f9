package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordMatch(t *testing.T) {
	matched, missing := KeywordMatch([]string{" CSRF ", "Token", "", "forgery"}, "add a csrf token to every form")
	assert.Equal(t, []string{"csrf", "token"}, matched)
	assert.Equal(t, []string{"forgery"}, missing)
}

func TestKeywordMatchNoneFound(t *testing.T) {
	matched, missing := KeywordMatch([]string{"encryption", "cipher"}, "restart the server")
	assert.Empty(t, matched)
	assert.Len(t, missing, 2)
}

func TestAutoKeywords(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		description  string
		wantCategory string
	}{
		{
			name:         "category from title",
			title:        "CSRF Protection Basics",
			description:  "Secure the transfer form",
			wantCategory: "csrf",
		},
		{
			name:         "category from description",
			title:        "Login Lab",
			description:  "Exploit the SQL injection in the login form",
			wantCategory: "sql",
		},
		{
			name:         "earlier entry wins on overlap",
			title:        "Path Traversal",
			description:  "Read files outside the web root",
			wantCategory: "path",
		},
		{
			name:         "no category",
			title:        "Warmup",
			description:  "Introduce yourself",
			wantCategory: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, keywords := AutoKeywords(tt.title, tt.description)
			assert.Equal(t, tt.wantCategory, category)
			if tt.wantCategory == "" {
				assert.Nil(t, keywords)
			} else {
				assert.NotEmpty(t, keywords)
			}
		})
	}
}
