package repository

import (
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

// likeEscaper escapes the LIKE metacharacters so user input matches literally.
// Backslash is the PostgreSQL default LIKE escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereBuilder accumulates AND-ed conditions and their positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// buildEventFilter translates f into a WHERE clause over the events table.
// Every non-empty criterion must hold.
func buildEventFilter(f model.EventFilter) (string, []any) {
	w := &whereBuilder{}

	if q := strings.TrimSpace(f.Query); q != "" {
		p := w.arg("%" + likeEscaper.Replace(q) + "%")
		w.add(fmt.Sprintf(`(title_en ILIKE %[1]s OR title_ar ILIKE %[1]s
			OR description_en ILIKE %[1]s OR description_ar ILIKE %[1]s
			OR category_en ILIKE %[1]s OR category_ar ILIKE %[1]s
			OR EXISTS (SELECT 1 FROM jsonb_array_elements(tags) t
				WHERE t->>'en' ILIKE %[1]s OR t->>'ar' ILIKE %[1]s))`, p))
	}

	if c := strings.TrimSpace(f.Category); c != "" {
		p := w.arg(c)
		w.add(fmt.Sprintf("(lower(category_en) = lower(%[1]s) OR lower(category_ar) = lower(%[1]s))", p))
	}

	if tag := strings.TrimSpace(f.Tag); tag != "" {
		p := w.arg(tag)
		w.add(fmt.Sprintf(`EXISTS (SELECT 1 FROM jsonb_array_elements(tags) t
			WHERE lower(t->>'en') = lower(%[1]s) OR lower(t->>'ar') = lower(%[1]s))`, p))
	}

	if f.DateFrom != nil {
		w.add("event_date >= " + w.arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		w.add("event_date <= " + w.arg(*f.DateTo))
	}
	if f.MinPrice != nil {
		w.add("price >= " + w.arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		w.add("price <= " + w.arg(*f.MaxPrice))
	}

	return w.clause(), w.args
}
