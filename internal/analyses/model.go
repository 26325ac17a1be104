package analyses

import "time"

// ScoreBreakdown holds the per-dimension sub-scores, each 0..100.
type ScoreBreakdown struct {
	HardSkills      int `json:"hard_skills"`
	ExperienceLevel int `json:"experience_level"`
	KeywordDensity  int `json:"keyword_density"`
	EducationCerts  int `json:"education_certs"`
	TitleAlignment  int `json:"title_alignment"`
}

// BulletRephrase pairs a resume bullet with its suggested rewrite.
type BulletRephrase struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
}

// Draft is a normalized analysis that has not been stored yet.
type Draft struct {
	MatchScore        int                 `json:"match_score"`
	ScoreBreakdown    ScoreBreakdown      `json:"score_breakdown"`
	MissingKeywords   map[string][]string `json:"missing_keywords"`
	NewBulletPoints   []string            `json:"new_bullet_points_to_add"`
	BulletsToRephrase []BulletRephrase    `json:"bullets_to_rephrase"`
	Summary           string              `json:"one_sentence_summary"`
}

// AnalysisResult is a stored analysis. Records never change after creation.
type AnalysisResult struct {
	ID                string              `json:"id"`
	MatchScore        int                 `json:"match_score"`
	ScoreBreakdown    ScoreBreakdown      `json:"score_breakdown"`
	MissingKeywords   map[string][]string `json:"missing_keywords"`
	NewBulletPoints   []string            `json:"new_bullet_points_to_add"`
	BulletsToRephrase []BulletRephrase    `json:"bullets_to_rephrase"`
	Summary           string              `json:"one_sentence_summary"`
	CreatedAt         time.Time           `json:"created_at"`
}

func newResult(id string, createdAt time.Time, d Draft) AnalysisResult {
	d = d.Clone()
	return AnalysisResult{
		ID:                id,
		MatchScore:        d.MatchScore,
		ScoreBreakdown:    d.ScoreBreakdown,
		MissingKeywords:   d.MissingKeywords,
		NewBulletPoints:   d.NewBulletPoints,
		BulletsToRephrase: d.BulletsToRephrase,
		Summary:           d.Summary,
		CreatedAt:         createdAt,
	}
}

// Draft returns the record without its identity fields.
func (r AnalysisResult) Draft() Draft {
	return Draft{
		MatchScore:        r.MatchScore,
		ScoreBreakdown:    r.ScoreBreakdown,
		MissingKeywords:   r.MissingKeywords,
		NewBulletPoints:   r.NewBulletPoints,
		BulletsToRephrase: r.BulletsToRephrase,
		Summary:           r.Summary,
	}.Clone()
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (r AnalysisResult) Clone() AnalysisResult {
	return newResult(r.ID, r.CreatedAt, r.Draft())
}

// Clone returns a deep copy. Nil collections come back empty, never nil.
func (d Draft) Clone() Draft {
	out := d
	out.MissingKeywords = make(map[string][]string, len(d.MissingKeywords))
	for category, keywords := range d.MissingKeywords {
		out.MissingKeywords[category] = append([]string{}, keywords...)
	}
	out.NewBulletPoints = append([]string{}, d.NewBulletPoints...)
	out.BulletsToRephrase = append([]BulletRephrase{}, d.BulletsToRephrase...)
	return out
}
