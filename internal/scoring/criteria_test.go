package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godilite/feedback-server/internal/repository/models"
)

func TestResolveCriteria(t *testing.T) {
	t.Run("catalog in display order", func(t *testing.T) {
		sp := models.ServicePoint{Criteria: []models.Criterion{
			{Title: "Courtesy", DisplayOrder: 2},
			{Title: "Speed", DisplayOrder: 1},
			{Title: "other", DisplayOrder: 0},
		}}
		assert.Equal(t, []string{"Speed", "Courtesy"}, ResolveCriteria(sp, DefaultFallbackCriteria))
	})

	t.Run("empty catalog uses fallback", func(t *testing.T) {
		got := ResolveCriteria(models.ServicePoint{}, DefaultFallbackCriteria)
		assert.Equal(t, DefaultFallbackCriteria, got)
	})

	t.Run("fallback never contains other", func(t *testing.T) {
		got := ResolveCriteria(models.ServicePoint{}, []string{"Speed", "Other"})
		assert.Equal(t, []string{"Speed"}, got)
	})
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		scores   map[string]int
		want     bool
	}{
		{"nothing selected", nil, nil, true},
		{"all scored", []string{"Speed", "Courtesy"}, map[string]int{"Speed": 5, "Courtesy": 1}, true},
		{"one missing", []string{"Speed", "Courtesy"}, map[string]int{"Speed": 5}, false},
		{"zero score", []string{"Speed"}, map[string]int{"Speed": 0}, false},
		{"score above range", []string{"Speed"}, map[string]int{"Speed": 6}, false},
		{"other placeholder ignored", []string{"Speed", "Other"}, map[string]int{"Speed": 3}, true},
		{"extra scores ignored", []string{"Speed"}, map[string]int{"Speed": 3, "Gone": 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAdvance(tt.selected, tt.scores))
		})
	}
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "Park", Abbreviate("Park"))
	assert.Equal(t, "Parki", Abbreviate("Parki"))
	assert.Equal(t, "Parki...", Abbreviate("Parking"))
	assert.Equal(t, "Ñandú...", Abbreviate("Ñandúes grandes"))
}
