package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"resume-match-api/internal/llm"
)

const maxMissingKeywords = 25

// Client is a deterministic stand-in for the model, used when no API key is configured.
// It scores lexical overlap and emits the same JSON shape the model is asked for.
type Client struct{}

type response struct {
	MatchScore        float64          `json:"match_score"`
	ScoreBreakdown    breakdown        `json:"score_breakdown"`
	MissingKeywords   []keywordGroup   `json:"missing_keywords"`
	NewBulletPoints   []string         `json:"new_bullet_points_to_add"`
	BulletsToRephrase []rephrasedEntry `json:"bullets_to_rephrase"`
	Summary           string           `json:"one_sentence_summary"`
}

type breakdown struct {
	HardSkills      float64 `json:"hard_skills"`
	ExperienceLevel float64 `json:"experience_level"`
	KeywordDensity  float64 `json:"keyword_density"`
	EducationCerts  float64 `json:"education_certs"`
	TitleAlignment  float64 `json:"title_alignment"`
}

type keywordGroup struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

type rephrasedEntry struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
}

// AnalyzeResume never fails except on a canceled context.
func (Client) AnalyzeResume(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := analyze(input.ResumeText, input.JobDescription)
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal offline analysis: %w", err)
	}
	return raw, nil
}

func analyze(resume, job string) response {
	resumeTerms := termSet(tokenize(resume))
	jobTerms := unique(tokenize(job))

	var (
		matched       int
		skillsTotal   int
		skillsMatched int
		missingSkills []string
		missingOther  []string
	)
	for _, term := range jobTerms {
		_, isSkill := skillVocabulary[term]
		_, found := resumeTerms[term]
		if isSkill {
			skillsTotal++
		}
		if found {
			matched++
			if isSkill {
				skillsMatched++
			}
			continue
		}
		if isSkill {
			missingSkills = append(missingSkills, displayName(term))
		} else {
			missingOther = append(missingOther, term)
		}
	}

	density := ratio(matched, len(jobTerms), 0.5)
	hard := ratio(skillsMatched, skillsTotal, density)
	b := breakdown{
		HardSkills:      percent(hard),
		ExperienceLevel: percent(experienceFit(resume, job)),
		KeywordDensity:  percent(density),
		EducationCerts:  percent(educationFit(resumeTerms, job)),
		TitleAlignment:  percent(titleFit(resumeTerms, jobTerms)),
	}
	score := 0.45*b.HardSkills + 0.20*b.ExperienceLevel + 0.15*b.KeywordDensity + 0.10*b.EducationCerts + 0.10*b.TitleAlignment

	groups := groupMissing(missingSkills, missingOther)
	return response{
		MatchScore:        math.Round(score),
		ScoreBreakdown:    b,
		MissingKeywords:   groups,
		NewBulletPoints:   suggestBullets(missingSkills),
		BulletsToRephrase: rephrase(resume),
		Summary: fmt.Sprintf("Offline estimate: the resume covers %d of %d key terms from the job description (%d%% overall match).",
			matched, len(jobTerms), int(math.Round(score))),
	}
}

func groupMissing(skills, other []string) []keywordGroup {
	groups := []keywordGroup{}
	budget := maxMissingKeywords
	if n := min(len(skills), budget); n > 0 {
		groups = append(groups, keywordGroup{Category: "Technical Skills", Keywords: skills[:n]})
		budget -= n
	}
	if n := min(len(other), budget); n > 0 {
		groups = append(groups, keywordGroup{Category: "Keywords", Keywords: other[:n]})
	}
	return groups
}

func suggestBullets(missing []string) []string {
	bullets := []string{}
	for _, skill := range missing {
		if len(bullets) == 5 {
			break
		}
		bullets = append(bullets, fmt.Sprintf("Applied %s in production work, describing scope and a measurable result", skill))
	}
	if len(bullets) == 0 {
		bullets = append(bullets, "Quantify the impact of your most relevant project with concrete numbers")
	}
	return bullets
}

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•▪‣]|\d+[.)])\s+`)

func rephrase(resume string) []rephrasedEntry {
	out := []rephrasedEntry{}
	for _, line := range strings.Split(resume, "\n") {
		if !bulletPrefix.MatchString(line) {
			continue
		}
		original := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if original == "" {
			continue
		}
		out = append(out, rephrasedEntry{
			Original: original,
			Improved: strings.TrimSuffix(original, ".") + ", quantified with the outcome it delivered",
		})
		if len(out) == 3 {
			break
		}
	}
	return out
}

var yearsPattern = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years|yrs)`)

func maxYears(text string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

func experienceFit(resume, job string) float64 {
	required := maxYears(job)
	if required == 0 {
		return 0.7
	}
	have := maxYears(resume)
	if have == 0 {
		return 0.5
	}
	return math.Min(1, float64(have)/float64(required))
}

var educationTerms = []string{"degree", "bachelor", "master", "phd", "certification", "certified", "certificate"}

func educationFit(resumeTerms map[string]struct{}, job string) float64 {
	jobLower := strings.ToLower(job)
	asked := false
	for _, term := range educationTerms {
		if strings.Contains(jobLower, term) {
			asked = true
			if _, ok := resumeTerms[term]; ok {
				return 1
			}
		}
	}
	if !asked {
		return 0.8
	}
	return 0.4
}

var titleTerms = map[string]struct{}{
	"engineer": {}, "developer": {}, "architect": {}, "manager": {}, "analyst": {},
	"designer": {}, "scientist": {}, "lead": {}, "senior": {}, "principal": {},
	"staff": {}, "junior": {}, "consultant": {}, "administrator": {},
}

func titleFit(resumeTerms map[string]struct{}, jobTerms []string) float64 {
	var total, hit int
	for _, term := range jobTerms {
		if _, ok := titleTerms[term]; !ok {
			continue
		}
		total++
		if _, ok := resumeTerms[term]; ok {
			hit++
		}
	}
	return ratio(hit, total, 0.6)
}

func ratio(n, d int, fallback float64) float64 {
	if d == 0 {
		return fallback
	}
	return float64(n) / float64(d)
}

func percent(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v)) * 100)
}
