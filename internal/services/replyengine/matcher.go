package replyengine

import (
	"strings"

	"github.com/replyflow/replyflow/internal/models"
)

// Match returns the first rule triggered by the message text. EXACT
// rules require the trimmed message to equal the keyword ignoring case;
// PARTIAL rules require the keyword to appear anywhere in the message
// ignoring case. Rules are checked in stored order, first hit wins.
func Match(rules []*models.Reply, text string) (*models.Reply, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return nil, false
	}

	for _, rule := range rules {
		keyword := strings.ToLower(strings.TrimSpace(rule.Keyword))
		if keyword == "" {
			continue
		}
		switch rule.MatchType {
		case models.MatchExact:
			if trimmed == keyword {
				return rule, true
			}
		case models.MatchPartial:
			if strings.Contains(trimmed, keyword) {
				return rule, true
			}
		}
	}
	return nil, false
}
