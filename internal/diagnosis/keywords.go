package diagnosis

// keywordSeed lists the grade keywords the models are asked for, plus the
// Korean terms they tend to answer with.
var keywordSeed = []struct {
	Grade    Grade
	Keywords []string
}{
	{GradeDanger, []string{"danger", "위험"}},
	{GradeWarn, []string{"warn", "caution", "주의"}},
	{GradeGood, []string{"good", "양호", "적절"}},
}

// byGrade indexes keywords by grade.
var byGrade map[Grade][]string

func init() {
	byGrade = make(map[Grade][]string, len(keywordSeed))
	for _, s := range keywordSeed {
		byGrade[s.Grade] = s.Keywords
	}
}

// KeywordsFor returns the keywords that select grade.
func KeywordsFor(grade Grade) []string {
	return byGrade[grade]
}

// noneMarkers are example texts meaning "no example given".
var (
	noneSubstrings = []string{"없음", "none provided", "no example"}
	noneExact      = []string{"none", "n/a", "-"}
)
