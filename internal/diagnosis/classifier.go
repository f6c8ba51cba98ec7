package diagnosis

import "strings"

// Classifier is one grade rule. Classify reports whether the rule matches
// the decoded grade text.
type Classifier interface {
	Name() string
	Classify(gradeText string) (Grade, bool)
}

// keywordClassifier matches when the text contains any of its keywords,
// case-insensitively.
type keywordClassifier struct {
	grade Grade
}

func (c keywordClassifier) Name() string { return string(c.grade) }

func (c keywordClassifier) Classify(gradeText string) (Grade, bool) {
	text := strings.ToLower(gradeText)
	for _, kw := range KeywordsFor(c.grade) {
		if strings.Contains(text, kw) {
			return c.grade, true
		}
	}
	return "", false
}

// DefaultClassifiers returns classifiers in priority order. Danger is
// checked first so ambiguous text never resolves to a milder grade.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		keywordClassifier{grade: GradeDanger},
		keywordClassifier{grade: GradeWarn},
		keywordClassifier{grade: GradeGood},
	}
}

// RunClassifiers executes classifiers in order and returns the first match
// with the matching rule's name, or GradeUnknown and "".
func RunClassifiers(classifiers []Classifier, gradeText string) (Grade, string) {
	for _, c := range classifiers {
		if g, ok := c.Classify(gradeText); ok {
			return g, c.Name()
		}
	}
	return GradeUnknown, ""
}

// Classify resolves grade text with the default rules.
func Classify(gradeText string) Grade {
	g, _ := RunClassifiers(DefaultClassifiers(), gradeText)
	return g
}
