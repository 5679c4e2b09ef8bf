// Package query builds the filter payload sent to the Prisma Cloud alert
// endpoints.
package query

// Filter is a single (name, operator, value) condition. Names and operators
// are passed through unvalidated; the API rejects invalid combinations.
type Filter struct {
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Time units accepted by relative time ranges.
const (
	UnitMinute = "minute"
	UnitHour   = "hour"
	UnitDay    = "day"
	UnitWeek   = "week"
	UnitMonth  = "month"
	UnitYear   = "year"
)

// TimeRangeRelative is the only time range type the poller emits.
const TimeRangeRelative = "relative"

// TimeRangeValue is the amount/unit pair of a relative time range.
type TimeRangeValue struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// TimeRange selects events within the last Amount Units.
type TimeRange struct {
	Type  string         `json:"type"`
	Value TimeRangeValue `json:"value"`
}

// Relative returns a relative time range of amount units.
func Relative(unit string, amount int) TimeRange {
	return TimeRange{
		Type:  TimeRangeRelative,
		Value: TimeRangeValue{Amount: amount, Unit: unit},
	}
}

// Query is the request body of the alert listing endpoints.
type Query struct {
	WebClient bool      `json:"webClient"`
	Detailed  bool      `json:"detailed"`
	Filters   []Filter  `json:"filters"`
	TimeRange TimeRange `json:"timeRange"`
}

// DefaultFilters selects open high-severity alerts opened within the time range.
func DefaultFilters() []Filter {
	return []Filter{
		{Name: "alert.status", Operator: "=", Value: "open"},
		{Name: "policy.severity", Operator: "=", Value: "high"},
		{Name: "timeRange.type", Operator: "=", Value: "ALERT_OPENED"},
	}
}

// DefaultTimeRange is the last 24 hours.
func DefaultTimeRange() TimeRange {
	return Relative(UnitHour, 24)
}

// Default is the query used when nothing has been persisted yet.
func Default() Query {
	return NewBuilder().Build()
}

// Builder collects query overrides. The time range and flags are prefilled
// with their defaults at creation; filters fall back to DefaultFilters only
// when none were added by the time Build is called.
type Builder struct {
	webClient bool
	detailed  bool
	filters   []Filter
	timeRange TimeRange
}

// NewBuilder returns a builder with the default time range and both flags off.
func NewBuilder() *Builder {
	return &Builder{timeRange: DefaultTimeRange()}
}

// From seeds a builder with an existing query's time range and flags. Its
// filters are not copied, so callers can replace them.
func From(q Query) *Builder {
	return &Builder{
		webClient: q.WebClient,
		detailed:  q.Detailed,
		timeRange: q.TimeRange,
	}
}

func (b *Builder) WebClient(v bool) *Builder {
	b.webClient = v
	return b
}

func (b *Builder) Detailed(v bool) *Builder {
	b.detailed = v
	return b
}

// AddFilter appends a filter; once any filter is added the defaults are not used.
func (b *Builder) AddFilter(name, operator, value string) *Builder {
	b.filters = append(b.filters, Filter{Name: name, Operator: operator, Value: value})
	return b
}

// TimeRange overrides the relative time range.
func (b *Builder) TimeRange(unit string, amount int) *Builder {
	b.timeRange = Relative(unit, amount)
	return b
}

// Build produces the query. The builder may be reused afterwards.
func (b *Builder) Build() Query {
	filters := DefaultFilters()
	if len(b.filters) > 0 {
		filters = make([]Filter, len(b.filters))
		copy(filters, b.filters)
	}
	return Query{
		WebClient: b.webClient,
		Detailed:  b.detailed,
		Filters:   filters,
		TimeRange: b.timeRange,
	}
}
