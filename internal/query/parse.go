package query

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFilter parses "name=value" or "name!=value".
func ParseFilter(expr string) (Filter, error) {
	for _, op := range []string{"!=", "="} {
		idx := strings.Index(expr, op)
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(expr[:idx])
		value := strings.TrimSpace(expr[idx+len(op):])
		if name == "" {
			return Filter{}, fmt.Errorf("filter %q: missing field name", expr)
		}
		return Filter{Name: name, Operator: op, Value: value}, nil
	}
	return Filter{}, fmt.Errorf("filter %q: expected name=value or name!=value", expr)
}

var unitSuffixes = []struct {
	suffix string
	unit   string
}{
	// "mo" before "m" so months are not read as minutes
	{"mo", UnitMonth},
	{"m", UnitMinute},
	{"h", UnitHour},
	{"d", UnitDay},
	{"w", UnitWeek},
	{"y", UnitYear},
}

// ParseTimeRange parses a relative range such as "24h", "7d", "2w", "1mo",
// "1y" or "30m".
func ParseTimeRange(expr string) (TimeRange, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	for _, u := range unitSuffixes {
		if !strings.HasSuffix(expr, u.suffix) {
			continue
		}
		amount, err := strconv.Atoi(strings.TrimSuffix(expr, u.suffix))
		if err != nil {
			return TimeRange{}, fmt.Errorf("time range %q: %w", expr, err)
		}
		if amount <= 0 {
			return TimeRange{}, fmt.Errorf("time range %q: amount must be positive", expr)
		}
		return Relative(u.unit, amount), nil
	}
	return TimeRange{}, fmt.Errorf("time range %q: unknown unit", expr)
}
