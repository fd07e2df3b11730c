package replyengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/models"
)

func TestMatch(t *testing.T) {
	rules := []*models.Reply{
		{ID: 1, Keyword: "price", MatchType: models.MatchExact, Reply: "Our prices"},
		{ID: 2, Keyword: "ship", MatchType: models.MatchPartial, Reply: "Shipping info"},
		{ID: 3, Keyword: "shipping", MatchType: models.MatchExact, Reply: "Exact shipping"},
	}

	tests := []struct {
		name   string
		text   string
		wantID int
		wantOK bool
	}{
		{name: "exact match", text: "price", wantID: 1, wantOK: true},
		{name: "exact match ignores case and spacing", text: "  PriCe \n", wantID: 1, wantOK: true},
		{name: "exact does not match inside a sentence", text: "what is the price?", wantOK: false},
		{name: "partial match inside a sentence", text: "do you ship to Berlin?", wantID: 2, wantOK: true},
		{name: "first hit wins over later exact", text: "shipping", wantID: 2, wantOK: true},
		{name: "no rule matches", text: "hello there", wantOK: false},
		{name: "empty message", text: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(rules, tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestMatch_SkipsEmptyKeywords(t *testing.T) {
	rules := []*models.Reply{
		{ID: 1, Keyword: "   ", MatchType: models.MatchPartial},
		{ID: 2, Keyword: "hi", MatchType: models.MatchExact},
	}

	got, ok := Match(rules, "hi")
	require.True(t, ok)
	assert.Equal(t, 2, got.ID)
}
