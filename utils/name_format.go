package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NameFormat maps file names to timestamps and back. The pattern uses the
// strftime directives %Y %y %m %d %j %H %M %S and %%; every other character
// is literal.
type NameFormat struct {
	Pattern string
	re      *regexp.Regexp
	parts   []formatPart
}

type formatPart struct {
	directive byte
	literal   string
}

var directiveFields = map[byte]struct {
	name  string
	width int
}{
	'Y': {"year", 4},
	'y': {"year2", 2},
	'm': {"month", 2},
	'd': {"day", 2},
	'j': {"julian_day", 3},
	'H': {"hour", 2},
	'M': {"minute", 2},
	'S': {"second", 2},
}

func NewNameFormat(pattern string) (*NameFormat, error) {
	if len(pattern) == 0 {
		return nil, &ConfigError{Option: "name_format", Msg: "empty pattern"}
	}

	nf := &NameFormat{Pattern: pattern}
	seen := map[byte]bool{}
	var expr strings.Builder
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			nf.parts = append(nf.parts, formatPart{literal: lit.String()})
			expr.WriteString(regexp.QuoteMeta(lit.String()))
			lit.Reset()
		}
	}

	expr.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			lit.WriteByte(pattern[i])
			continue
		}
		if i+1 >= len(pattern) {
			return nil, &ConfigError{Option: "name_format", Msg: fmt.Sprintf("dangling %% in %q", pattern)}
		}
		i++
		d := pattern[i]
		if d == '%' {
			lit.WriteByte('%')
			continue
		}
		field, ok := directiveFields[d]
		if !ok {
			return nil, &ConfigError{Option: "name_format", Msg: fmt.Sprintf("unsupported directive %%%c in %q", d, pattern)}
		}
		flush()
		if seen[d] {
			expr.WriteString(fmt.Sprintf(`\d{%d}`, field.width))
		} else {
			expr.WriteString(fmt.Sprintf(`(?P<%s>\d{%d})`, field.name, field.width))
			seen[d] = true
		}
		nf.parts = append(nf.parts, formatPart{directive: d})
	}
	flush()
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, &ConfigError{Option: "name_format", Msg: pattern, Err: err}
	}
	nf.re = re
	return nf, nil
}

// Parse extracts the UTC timestamp encoded in a bare file name.
func (nf *NameFormat) Parse(name string) (time.Time, error) {
	match := nf.re.FindStringSubmatch(name)
	if match == nil {
		return time.Time{}, &ConfigError{Option: "name_format", Msg: fmt.Sprintf("%q does not match %q", name, nf.Pattern)}
	}

	fields := make(map[string]int)
	for i, n := range nf.re.SubexpNames() {
		if i == 0 || len(n) == 0 {
			continue
		}
		v, err := strconv.Atoi(match[i])
		if err != nil {
			return time.Time{}, &ConfigError{Option: "name_format", Msg: name, Err: err}
		}
		fields[n] = v
	}
	return timeFromFields(name, fields)
}

func timeFromFields(name string, fields map[string]int) (time.Time, error) {
	year := 1900
	if y, ok := fields["year"]; ok {
		year = y
	} else if y, ok := fields["year2"]; ok {
		// strptime pivot: 69-99 -> 19xx, 00-68 -> 20xx
		if y < 69 {
			year = 2000 + y
		} else {
			year = 1900 + y
		}
	}

	month, day := 1, 1
	if m, ok := fields["month"]; ok {
		month = m
	}
	if d, ok := fields["day"]; ok {
		day = d
	}
	t := time.Date(year, time.Month(month), day, fields["hour"], fields["minute"], fields["second"], 0, time.UTC)

	if jd, ok := fields["julian_day"]; ok {
		if jd < 1 || jd > 366 {
			return time.Time{}, &ConfigError{Option: "name_format", Msg: fmt.Sprintf("day of year %d out of range in %q", jd, name)}
		}
		t = t.AddDate(0, 0, jd-1)
	}

	// time.Date normalises overflows; a round trip rejects 20200231 and 2561.
	if t.Month() != time.Month(month) && fields["julian_day"] == 0 ||
		t.Hour() != fields["hour"] || t.Minute() != fields["minute"] || t.Second() != fields["second"] {
		return time.Time{}, &ConfigError{Option: "name_format", Msg: fmt.Sprintf("invalid date in %q", name)}
	}
	return t, nil
}

// Format renders t with the pattern, the inverse of Parse.
func (nf *NameFormat) Format(t time.Time) string {
	t = t.UTC()
	var sb strings.Builder
	for _, p := range nf.parts {
		switch p.directive {
		case 0:
			sb.WriteString(p.literal)
		case 'Y':
			fmt.Fprintf(&sb, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&sb, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&sb, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&sb, "%02d", t.Day())
		case 'j':
			fmt.Fprintf(&sb, "%03d", t.YearDay())
		case 'H':
			fmt.Fprintf(&sb, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&sb, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&sb, "%02d", t.Second())
		}
	}
	return sb.String()
}
