package types

// ConceptLevel is the depth of a node in the syllabus tree
// (domain -> parent_topic -> specific_topic). Questions link only to
// specific_topic leaves.
type ConceptLevel string

const (
	ConceptLevelDomain   ConceptLevel = "domain"
	ConceptLevelParent   ConceptLevel = "parent_topic"
	ConceptLevelSpecific ConceptLevel = "specific_topic"
)

type Concept struct {
	Name  string       `json:"name"`
	Level ConceptLevel `json:"level"`
}

// ConceptPath is a full root-to-leaf slice of the syllabus tree, as
// returned by the classifier.
type ConceptPath struct {
	Domain        string `json:"domain"`
	ParentTopic   string `json:"parent_topic"`
	SpecificTopic string `json:"specific_topic"`
}

type Skill struct {
	Name string `json:"name"`
}

type Difficulty struct {
	Name string `json:"name"`
}
