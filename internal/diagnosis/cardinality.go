package diagnosis

// Advisory is the local child-count signal shown next to a diagnosis.
// The empty Advisory means the count is inside the comparability band.
type Advisory string

const (
	AdvisoryNone        Advisory = ""
	AdvisoryNoChildren  Advisory = "no children"
	AdvisorySingleItem  Advisory = "cannot compare, single item"
	AdvisoryExceedsBand Advisory = "exceeds comparability band, recommend sub-clustering"
)

// MaxComparable is the largest child count that raises no advisory.
const MaxComparable = 7

// CheckCardinality returns the advisory for a node with n children.
func CheckCardinality(n int) Advisory {
	switch {
	case n <= 0:
		return AdvisoryNoChildren
	case n == 1:
		return AdvisorySingleItem
	case n > MaxComparable:
		return AdvisoryExceedsBand
	}
	return AdvisoryNone
}
