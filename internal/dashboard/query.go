package dashboard

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/ahmethakanbesel/stock-dashboard/internal/apperror"
	"github.com/ahmethakanbesel/stock-dashboard/internal/market"
)

// Query parameter names used by the dashboard form.
const (
	ParamCompany = "empresa"
	ParamPeriod  = "periodo"
	ParamWindow  = "ma"
)

// Query is one dashboard interaction: which companies, which history period
// and which moving averages.
type Query struct {
	Names   []string      `json:"empresas"`
	Period  market.Period `json:"periodo"`
	Windows []int         `json:"medias"`
}

// ParseQuery reads a Query from form values. Before the form is submitted
// for the first time (no period present) the default windows apply;
// afterwards an empty window list means no averages.
func ParseQuery(v url.Values) (Query, *apperror.AppError) {
	q := Query{
		Names:  v[ParamCompany],
		Period: market.DefaultPeriod,
	}

	code := v.Get(ParamPeriod)
	if code != "" {
		p, ok := market.ParsePeriod(code)
		if !ok {
			return Query{}, apperror.New(apperror.BadRequest, fmt.Sprintf("invalid period %q", code))
		}
		q.Period = p
	}

	raw, submitted := v[ParamWindow]
	if !submitted && code == "" {
		q.Windows = market.DefaultWindows()
		return q, nil
	}

	for _, s := range raw {
		w, err := strconv.Atoi(s)
		if err != nil || !market.ValidWindow(w) {
			return Query{}, apperror.New(apperror.BadRequest, fmt.Sprintf("invalid moving average window %q", s))
		}
		if !slices.Contains(q.Windows, w) {
			q.Windows = append(q.Windows, w)
		}
	}
	return q, nil
}

// Values encodes the query back into form values.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, n := range q.Names {
		v.Add(ParamCompany, n)
	}
	v.Set(ParamPeriod, q.Period.Code)
	for _, w := range q.Windows {
		v.Add(ParamWindow, strconv.Itoa(w))
	}
	return v
}
