package database

import (
	"fmt"
	"strconv"
	"strings"

	"property-catalog/internal/models"
)

// Dialect captures the two places where the supported stores disagree:
// bind parameter syntax and the substring operator.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	Like        string
}

// QuestionDialect is used for MySQL and SQLite through GORM.
var QuestionDialect = Dialect{
	Name:        "question",
	Placeholder: func(int) string { return "?" },
	Like:        "LIKE",
}

// PostgresDialect numbers parameters ($1, $2, ...) and matches case-insensitively.
var PostgresDialect = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Like:        "ILIKE",
}

// likeEscape is the ESCAPE character used for every substring predicate.
const likeEscape = "!"

// Filter composes a parameterized WHERE clause for reads of live properties.
// Every read path builds its predicate through a Filter, which always starts
// with the soft-delete condition.
type Filter struct {
	dialect    Dialect
	conditions []string
	args       []interface{}
}

// NewFilter returns a filter that only matches live (not soft-deleted) rows.
func NewFilter(d Dialect) *Filter {
	f := &Filter{dialect: d}
	f.add("p.is_deleted = %s", false)
	return f
}

func (f *Filter) add(format string, arg interface{}) {
	placeholder := f.dialect.Placeholder(len(f.args) + 1)
	f.conditions = append(f.conditions, fmt.Sprintf(format, placeholder))
	f.args = append(f.args, arg)
}

func (f *Filter) addContains(column, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	f.add(column+" "+f.dialect.Like+" %s ESCAPE '"+likeEscape+"'", "%"+escapeLike(value)+"%")
}

// WithID restricts the filter to a single property id.
func (f *Filter) WithID(id int64) *Filter {
	f.add("p.id = %s", id)
	return f
}

// WithCriteria adds one condition per set criterion. Unset and blank values are wildcards.
func (f *Filter) WithCriteria(c models.SearchCriteria) *Filter {
	if c.City != nil {
		f.addContains("p.city", *c.City)
	}
	if c.District != nil {
		f.addContains("p.district", *c.District)
	}
	if c.Type != nil {
		f.add("p.type_id = %s", int64(*c.Type))
	}
	if c.Status != nil {
		f.add("p.status_id = %s", int64(*c.Status))
	}
	if c.MinPrice != nil {
		f.add("p.price >= %s", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		f.add("p.price <= %s", *c.MaxPrice)
	}
	return f
}

// Where returns the clause including the leading " WHERE ".
func (f *Filter) Where() string {
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

// Args returns the bound values in placeholder order.
func (f *Filter) Args() []interface{} {
	return f.args
}

// escapeLike makes %, _ and the escape character itself match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return r.Replace(s)
}
