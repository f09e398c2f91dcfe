package domain

// ValidationResult - outcome of checking one text against a rule set.
type ValidationResult struct {
	IsValid              bool               `json:"is_valid"`
	MatchedPatterns      []string           `json:"matched_patterns"`
	ViolatedAntiPatterns []string           `json:"violated_antipatterns"`
	SuggestedFixes       []string           `json:"suggested_fixes"`
	ValidationScore      int                `json:"validation_score"`
	Feedback             ValidationFeedback `json:"detailed_feedback"`
}

// ValidationFeedback - diagnostic snapshot accompanying a validation.
// Informational only; scoring decisions never read it.
type ValidationFeedback struct {
	ContentLength       int               `json:"content_length"`
	SectionsFound       int               `json:"sections_found"`
	MatchedPatternCount int               `json:"matched_pattern_count"`
	ViolationCount      int               `json:"violation_count"`
	Voice               VoiceAnalysis     `json:"voice_analysis"`
	Structure           StructureAnalysis `json:"structure_analysis"`
	Medical             MedicalAnalysis   `json:"medical_analysis"`
}

type VoiceAnalysis struct {
	FirstPersonUsage int  `json:"first_person_usage"`
	ThirdPersonUsage int  `json:"third_person_usage"`
	VoiceConsistent  bool `json:"voice_consistency"`
}

type StructureAnalysis struct {
	SectionCount    int     `json:"section_count"`
	ParagraphCount  int     `json:"paragraph_count"`
	AvgParagraphLen float64 `json:"average_paragraph_length"`
}

type MedicalAnalysis struct {
	SuccessRateRanges int `json:"success_rate_ranges"`
	AbsoluteClaims    int `json:"absolute_claims"`
	MedicalTerms      int `json:"medical_terms"`
}
