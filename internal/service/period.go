package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

var periodPattern = regexp.MustCompile(`^(\d{4})-([12])$`)

// Period is an academic half year. The range is half-open: [From, To).
type Period struct {
	Token string
	From  time.Time
	To    time.Time
}

// ParsePeriod turns "YYYY-1" into January..June and "YYYY-2" into July..December
// of that year, in UTC. An empty token means no bounds and yields nil.
func ParsePeriod(token string) (*Period, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	match := periodPattern.FindStringSubmatch(token)
	if match == nil {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidPeriod, []appErrors.FieldError{{Field: "period", Message: "must look like YYYY-1 or YYYY-2"}})
	}
	year, _ := strconv.Atoi(match[1])
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if match[2] == "2" {
		from = time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Period{Token: token, From: from, To: from.AddDate(0, 6, 0)}, nil
}

// Bounds returns pointers suitable for repository filters; nil periods are unbounded.
func (p *Period) Bounds() (*time.Time, *time.Time) {
	if p == nil {
		return nil, nil
	}
	from, to := p.From, p.To
	return &from, &to
}

func (p *Period) token() string {
	if p == nil {
		return ""
	}
	return p.Token
}
