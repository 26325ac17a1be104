package offline

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#.]*[a-z0-9+#]|[a-z0-9]`)

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if canonical, ok := synonyms[tok]; ok {
			tok = canonical
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, skill := skillVocabulary[tok]; !skill && (len(tok) < 3 || isNumeric(tok)) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func termSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func displayName(term string) string {
	if name, ok := skillVocabulary[term]; ok && name != "" {
		return name
	}
	return term
}

var synonyms = map[string]string{
	"golang":     "go",
	"k8s":        "kubernetes",
	"js":         "javascript",
	"ts":         "typescript",
	"postgresql": "postgres",
	"node.js":    "node",
	"nodejs":     "node",
	"py":         "python",
	"gcp":        "google-cloud",
	"ml":         "machine-learning",
}

// skillVocabulary maps canonical tokens to display names.
var skillVocabulary = map[string]string{
	"go": "Go", "python": "Python", "java": "Java", "javascript": "JavaScript", "typescript": "TypeScript",
	"rust": "Rust", "c++": "C++", "c#": "C#", "ruby": "Ruby", "php": "PHP", "scala": "Scala", "kotlin": "Kotlin",
	"swift": "Swift", "sql": "SQL", "node": "Node.js", "react": "React", "vue": "Vue", "angular": "Angular",
	"django": "Django", "flask": "Flask", "spring": "Spring", "graphql": "GraphQL", "grpc": "gRPC", "rest": "REST",
	"kubernetes": "Kubernetes", "docker": "Docker", "terraform": "Terraform", "ansible": "Ansible",
	"aws": "AWS", "azure": "Azure", "google-cloud": "Google Cloud", "lambda": "AWS Lambda",
	"postgres": "PostgreSQL", "mysql": "MySQL", "mongodb": "MongoDB", "redis": "Redis", "kafka": "Kafka",
	"rabbitmq": "RabbitMQ", "elasticsearch": "Elasticsearch", "snowflake": "Snowflake", "spark": "Spark",
	"linux": "Linux", "git": "Git", "ci": "CI", "cd": "CD", "jenkins": "Jenkins", "prometheus": "Prometheus",
	"grafana": "Grafana", "datadog": "Datadog", "microservices": "Microservices", "agile": "Agile", "scrum": "Scrum",
	"machine-learning": "Machine Learning", "tensorflow": "TensorFlow", "pytorch": "PyTorch", "pandas": "pandas",
	"figma": "Figma", "excel": "Excel", "tableau": "Tableau", "salesforce": "Salesforce", "jira": "Jira",
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "your": {}, "our": {}, "are": {}, "will": {},
	"this": {}, "that": {}, "from": {}, "have": {}, "has": {}, "who": {}, "all": {}, "can": {}, "not": {},
	"but": {}, "its": {}, "into": {}, "over": {}, "per": {}, "via": {}, "any": {}, "etc": {}, "able": {},
	"work": {}, "working": {}, "team": {}, "teams": {}, "role": {}, "years": {}, "year": {}, "yrs": {},
	"experience": {}, "experienced": {}, "strong": {}, "skills": {}, "knowledge": {}, "including": {},
	"using": {}, "use": {}, "plus": {}, "must": {}, "should": {}, "would": {}, "looking": {}, "join": {},
	"about": {}, "what": {}, "we": {}, "re": {}, "more": {}, "other": {}, "such": {}, "well": {}, "also": {},
	"their": {}, "they": {}, "them": {}, "than": {}, "then": {}, "out": {}, "new": {}, "like": {}, "good": {},
	"ability": {}, "requirements": {}, "responsibilities": {}, "preferred": {}, "required": {}, "nice": {},
}
