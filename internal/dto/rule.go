package dto

import "github.com/junyours/occ-admission-sub002/internal/models"

// CreateRuleRequest produces one rule per selected course.
type CreateRuleRequest struct {
	PersonalityType string   `json:"personality_type" validate:"required"`
	MinScore        int      `json:"min_score" validate:"min=0,max=100"`
	MaxScore        int      `json:"max_score" validate:"min=0,max=100"`
	Courses         []string `json:"courses" validate:"required,min=1,dive,required"`
	AcademicYear    string   `json:"academic_year" validate:"required"`
}

// UpdateRuleRequest modifies a single existing rule.
type UpdateRuleRequest struct {
	PersonalityType   string `json:"personality_type" validate:"required"`
	MinScore          int    `json:"min_score" validate:"min=0,max=100"`
	MaxScore          int    `json:"max_score" validate:"min=0,max=100"`
	RecommendedCourse string `json:"recommended_course" validate:"required"`
	AcademicYear      string `json:"academic_year" validate:"required"`
}

// RuleRangeGroup holds the rules sharing one "{min}%-{max}%" score range.
type RuleRangeGroup struct {
	Range string                      `json:"range"`
	Rules []models.RecommendationRule `json:"rules"`
}

// RuleTypeGroup buckets a personality type's rules by score range.
type RuleTypeGroup struct {
	PersonalityType string           `json:"personality_type"`
	Total           int              `json:"total"`
	Ranges          []RuleRangeGroup `json:"ranges"`
}

// GenerateRulesResult reports the outcome of a bulk generation run. Created
// counts are per personality type; Delta is the change against the rule
// counts snapshotted before the run.
type GenerateRulesResult struct {
	TotalCreated int            `json:"total_created"`
	Created      map[string]int `json:"created"`
	Delta        map[string]int `json:"delta"`
}
