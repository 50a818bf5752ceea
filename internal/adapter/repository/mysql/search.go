package mysql

import (
	"context"
	"fmt"
	"strings"

	requestDomain "srp-backend/internal/domain/request"
	"srp-backend/internal/domain/search"
)

var _ search.Finder = (*RequestRepository)(nil)

var columns = map[string]string{
	"request_id":        "requests.id",
	"division_id":       "requests.division_id",
	"user_id":           "requests.submitter_id",
	"killmail_id":       "requests.killmail_id",
	"status":            "requests.status",
	"details":           "requests.details",
	"base_payout":       "requests.base_payout",
	"payout":            "requests.payout",
	"request_timestamp": "requests.created_at",

	"pilot_id":           "killmails.pilot_id",
	"corporation_id":     "killmails.corporation_id",
	"alliance_id":        "killmails.alliance_id",
	"system_id":          "killmails.system_id",
	"constellation_id":   "killmails.constellation_id",
	"region_id":          "killmails.region_id",
	"type_id":            "killmails.type_id",
	"pilot_name":         "killmails.pilot_name",
	"type_name":          "killmails.type_name",
	"killmail_value":     "killmails.value",
	"killmail_timestamp": "killmails.timestamp",
}

var operators = map[search.Predicate]string{
	search.Equal:        "=",
	search.NotEqual:     "<>",
	search.Less:         "<",
	search.LessEqual:    "<=",
	search.Greater:      ">",
	search.GreaterEqual: ">=",
}

// statusRank orders statuses the same way request.ActionType.Rank does.
func statusRank() string {
	var b strings.Builder
	b.WriteString("CASE requests.status")
	for _, s := range requestDomain.Statuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, s.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(requestDomain.Statuses)+1)
	return b.String()
}

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in either MySQL or SQLite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func column(name string) (string, error) {
	col, ok := columns[name]
	if !ok {
		return "", fmt.Errorf("no column for search field %q", name)
	}
	return col, nil
}

// condition renders one filtered field. Exact terms are ORed with all Equal values
// folded into a single IN, range terms are ANDed, text terms match case-insensitive substrings.
func condition(ff search.FieldFilter) (string, []any, error) {
	col, err := column(ff.Field.Name)
	if err != nil {
		return "", nil, err
	}
	var (
		parts []string
		vars  []any
	)
	switch {
	case ff.Field.Kind == search.KindText:
		for _, t := range ff.Terms {
			parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '!'")
			vars = append(vars, "%"+likeEscaper.Replace(strings.ToLower(t.Value.(string)))+"%")
		}
		return "(" + strings.Join(parts, " OR ") + ")", vars, nil
	case ff.Field.Kind.Range():
		for _, t := range ff.Terms {
			p, v := term(col, t)
			parts = append(parts, p)
			vars = append(vars, v...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", vars, nil
	default:
		var in []any
		for _, t := range ff.Terms {
			if t.Predicate == search.Equal {
				in = append(in, t.Value)
				continue
			}
			p, v := term(col, t)
			parts = append(parts, p)
			vars = append(vars, v...)
		}
		if len(in) > 0 {
			parts = append([]string{col + " IN ?"}, parts...)
			vars = append([]any{in}, vars...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", vars, nil
	}
}

func term(col string, t search.Term) (string, []any) {
	switch t.Predicate {
	case search.Any:
		return "1 = 1", nil
	case search.None:
		return "1 = 0", nil
	}
	return col + " " + operators[t.Predicate] + " ?", []any{t.Value}
}

func orderBy(sorts []search.Sort) (string, error) {
	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		col, err := column(s.Key)
		if err != nil {
			return "", err
		}
		if s.Key == "status" {
			col = statusRank()
		}
		dir := "ASC"
		if s.Direction == search.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

// Filter runs s against the store. Requests are joined with their killmails so both
// sides of the field catalogue can be filtered and sorted on.
func (r *RequestRepository) Filter(ctx context.Context, s *search.Search) ([]requestDomain.Request, error) {
	tx := r.db.WithContext(ctx).
		Model(&requestDomain.Request{}).
		Select("requests.*").
		Joins("LEFT JOIN killmails ON killmails.id = requests.killmail_id")
	if s != nil {
		for _, ff := range s.Simplified() {
			sql, vars, err := condition(ff)
			if err != nil {
				return nil, err
			}
			tx = tx.Where(sql, vars...)
		}
	} else {
		s = search.New()
	}
	order, err := orderBy(s.EffectiveSorts())
	if err != nil {
		return nil, err
	}
	var out []requestDomain.Request
	if err := tx.Order(order).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("filter requests: %w", err)
	}
	return out, nil
}
