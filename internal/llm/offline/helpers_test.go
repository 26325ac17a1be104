package offline

import "resume-match-api/internal/llm"

func inputFor(resume, job string) llm.AnalyzeInput {
	return llm.AnalyzeInput{ResumeText: resume, JobDescription: job}
}
