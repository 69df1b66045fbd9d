package types

// ClassificationResult is the external classifier's verdict for one
// question text. Domain confidence is folded into TopicConfidence.
type ClassificationResult struct {
	SpecificTopic        string  `json:"specific_topic"`
	ParentTopic          string  `json:"parent_topic"`
	Domain               string  `json:"domain"`
	Skill                string  `json:"skill"`
	Difficulty           string  `json:"difficulty"`
	TopicConfidence      float64 `json:"topic_confidence"`
	SkillConfidence      float64 `json:"skill_confidence"`
	DifficultyConfidence float64 `json:"difficulty_confidence"`
	ModelID              string  `json:"model_id"`
}

func (r ClassificationResult) ConceptPath() ConceptPath {
	return ConceptPath{
		Domain:        r.Domain,
		ParentTopic:   r.ParentTopic,
		SpecificTopic: r.SpecificTopic,
	}
}
