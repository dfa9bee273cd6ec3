// Package holidays loads the institution's non-teaching calendar.
package holidays

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Calendar lists dates on which no classes are held.
type Calendar struct {
	Holidays []Holiday `yaml:"holidays"`
}

// Holiday is a single closed day, or an inclusive range when End is set.
type Holiday struct {
	Name string `yaml:"name"`
	Date string `yaml:"date"`
	End  string `yaml:"end,omitempty"`
}

// Load reads a YAML calendar from path. An empty path yields an empty calendar.
func Load(path string) (*Calendar, error) {
	if path == "" {
		return &Calendar{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holiday calendar: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML calendar.
func Parse(raw []byte) (*Calendar, error) {
	var cal Calendar
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cal); err != nil {
		if errors.Is(err, io.EOF) {
			return &Calendar{}, nil
		}
		return nil, fmt.Errorf("parse holiday calendar: %w", err)
	}
	if _, err := cal.Dates(); err != nil {
		return nil, err
	}
	return &cal, nil
}

// Dates expands every entry into sorted, distinct UTC calendar dates.
func (c *Calendar) Dates() ([]time.Time, error) {
	if c == nil {
		return nil, nil
	}
	seen := make(map[time.Time]struct{})
	for i, h := range c.Holidays {
		start, err := time.Parse(dateLayout, h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %d (%s): invalid date %q", i, h.Name, h.Date)
		}
		end := start
		if h.End != "" {
			end, err = time.Parse(dateLayout, h.End)
			if err != nil {
				return nil, fmt.Errorf("holiday %d (%s): invalid end %q", i, h.Name, h.End)
			}
			if end.Before(start) {
				return nil, fmt.Errorf("holiday %d (%s): end before date", i, h.Name)
			}
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			seen[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}
