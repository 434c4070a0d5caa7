package models

import (
	"sort"
	"strings"
	"time"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// Rating subcategory tags.
const (
	TagPunctuality   = "punctuality"
	TagCommunication = "communication"
	TagEmpathy       = "empathy"
	TagAttention     = "attention"
	TagClarity       = "clarity"
	TagRespect       = "respect"
)

var knownTags = map[string]bool{
	TagPunctuality:   true,
	TagCommunication: true,
	TagEmpathy:       true,
	TagAttention:     true,
	TagClarity:       true,
	TagRespect:       true,
}

// Rating is the score one participant of a completed turn gives the other.
type Rating struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TurnID        uint      `json:"turn_id" gorm:"not null;uniqueIndex:idx_rating_turn_rater"`
	RaterID       uint      `json:"rater_id" gorm:"not null;uniqueIndex:idx_rating_turn_rater"`
	RatedID       uint      `json:"rated_id" gorm:"not null;index"`
	Score         int       `json:"score" gorm:"not null"`
	Subcategories string    `json:"subcategories"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// Tags splits the comma-joined subcategories.
func (r *Rating) Tags() []string {
	return SplitTags(r.Subcategories)
}

func IsKnownTag(tag string) bool {
	return knownTags[tag]
}

// NormalizeTags lowercases, trims, dedupes and sorts tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

func SplitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	return NormalizeTags(strings.Split(joined, ","))
}

func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
