package books

import (
	"fmt"
	"strings"
	"time"

	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/uptrace/bun"
	"golang.org/x/text/cases"
)

// Criteria are the optional search filters as they arrive from the list page.
// Empty values are ignored.
type Criteria struct {
	TitleContains   string `query:"title" json:"title" mod:"trim"`
	PublishedBefore string `query:"publishedBefore" json:"publishedBefore" mod:"trim" validate:"omitempty,date"`
	PublishedAfter  string `query:"publishedAfter" json:"publishedAfter" mod:"trim" validate:"omitempty,date"`
}

// Query is a parsed set of Criteria that can be applied to any select over
// books. The filters are ANDed together.
type Query struct {
	titleContains   string
	publishedBefore *time.Time
	publishedAfter  *time.Time
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildQuery parses criteria into a Query. A date criterion that is present
// but not in YYYY-MM-DD form is an error.
func BuildQuery(criteria Criteria) (*Query, error) {
	criteria = Criteria{
		TitleContains:   strings.TrimSpace(criteria.TitleContains),
		PublishedBefore: strings.TrimSpace(criteria.PublishedBefore),
		PublishedAfter:  strings.TrimSpace(criteria.PublishedAfter),
	}
	if err := binder.ValidateStruct(&criteria); err != nil {
		return nil, err
	}

	q := &Query{
		titleContains: criteria.TitleContains,
	}

	before, err := parseDateCriterion("publishedBefore", criteria.PublishedBefore)
	if err != nil {
		return nil, err
	}
	q.publishedBefore = before

	after, err := parseDateCriterion("publishedAfter", criteria.PublishedAfter)
	if err != nil {
		return nil, err
	}
	q.publishedAfter = after

	return q, nil
}

// Apply adds the filters to sq. The select must use the books table under
// its default alias.
func (q *Query) Apply(sq *bun.SelectQuery) *bun.SelectQuery {
	if q == nil {
		return sq
	}
	if q.titleContains != "" {
		sq = sq.Where(`b.title_search LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(foldTitle(q.titleContains))+"%")
	}
	if q.publishedBefore != nil {
		sq = sq.Where("b.publish_date <= ?", *q.publishedBefore)
	}
	if q.publishedAfter != nil {
		sq = sq.Where("b.publish_date >= ?", *q.publishedAfter)
	}
	return sq
}

// IsEmpty reports whether no filter will be applied.
func (q *Query) IsEmpty() bool {
	return q == nil || (q.titleContains == "" && q.publishedBefore == nil && q.publishedAfter == nil)
}

func parseDateCriterion(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, errcodes.ValidationError(fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field))
	}
	return &t, nil
}

// foldTitle is the case-folded form titles are stored and searched in. SQLite
// only folds ASCII letters in LIKE.
func foldTitle(s string) string {
	return cases.Fold().String(s)
}
