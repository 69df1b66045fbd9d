package types

// Aggregate rows returned by the graph store's group-by queries. The
// analytics services consume these; they carry raw counts so accuracy
// division (and its zero-total guard) happens in exactly one place.

type ExamAccuracy struct {
	ExamID   int64   `json:"exam_id"`
	ExamName string  `json:"exam_name"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type ConceptAgg struct {
	Name      string `json:"concept"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Total     int    `json:"total"`
}

type SkillAgg struct {
	Name    string `json:"skill"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// MemberConceptAgg is one cohort member's attempt record on one concept.
type MemberConceptAgg struct {
	StudentID int64  `json:"student_id"`
	Concept   string `json:"concept"`
	Correct   int    `json:"correct"`
	Total     int    `json:"total"`
}

type StudentAgg struct {
	StudentID int64 `json:"student_id"`
	Correct   int   `json:"correct"`
	Total     int   `json:"total"`
}

// TagWrite is the unit a tag writer hands to the graph store: the edges
// of one tagging action plus, for classifier output, the syllabus
// ancestors of the concept leaf. Client tags carry no Path because the
// client supplies only the leaf.
type TagWrite struct {
	Path  *ConceptPath
	Edges []TagEdge
}
