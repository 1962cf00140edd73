package season

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Name string

const (
	Winter Name = "winter"
	Spring Name = "spring"
	Summer Name = "summer"
	Fall   Name = "fall"
)

// order is the cyclic walk used by Previous and Next
var order = []Name{Winter, Spring, Summer, Fall}

var keyPattern = regexp.MustCompile(`^(winter|spring|summer|fall)_(\d{4})$`)

var titleCaser = cases.Title(language.English)

// Season is a (name, year) bucket used to group goals.
type Season struct {
	Name Name `json:"name"`
	Year int  `json:"year"`
}

// Current returns the season for the system clock.
func Current() Season {
	return At(time.Now())
}

// At returns the season containing t.
// Months are banded by their 0-based index: Jan-Mar winter, Apr-Jun spring,
// Jul-Sep summer, Oct-Dec fall.
func At(t time.Time) Season {
	return Season{
		Name: FromMonth(int(t.Month()) - 1),
		Year: t.Year(),
	}
}

// FromMonth maps a 0-based month index (0 = January) to a season name.
func FromMonth(month int) Name {
	switch {
	case month >= 0 && month <= 2:
		return Winter
	case month >= 3 && month <= 5:
		return Spring
	case month >= 6 && month <= 8:
		return Summer
	default:
		return Fall
	}
}

func FormatKey(name Name, year int) string {
	return fmt.Sprintf("%s_%d", name, year)
}

// FormatLabel renders a human label such as "Winter 2025".
func FormatLabel(name Name, year int) string {
	return fmt.Sprintf("%s %d", titleCaser.String(string(name)), year)
}

// ParseKey parses a key produced by FormatKey.
// ok is false when the key does not match {name}_{yyyy}.
func ParseKey(key string) (s Season, ok bool) {
	match := keyPattern.FindStringSubmatch(key)
	if match == nil {
		return Season{}, false
	}

	year, err := strconv.Atoi(match[2])
	if err != nil {
		return Season{}, false
	}

	return Season{Name: Name(match[1]), Year: year}, true
}

func (s Season) Key() string {
	return FormatKey(s.Name, s.Year)
}

func (s Season) Label() string {
	return FormatLabel(s.Name, s.Year)
}

// Previous walks one season back; winter steps into the previous year's fall.
func (s Season) Previous() Season {
	idx := s.index()
	if idx == 0 {
		return Season{Name: Fall, Year: s.Year - 1}
	}
	return Season{Name: order[idx-1], Year: s.Year}
}

// Next walks one season forward; fall steps into the next year's winter.
func (s Season) Next() Season {
	idx := s.index()
	if idx == len(order)-1 {
		return Season{Name: Winter, Year: s.Year + 1}
	}
	return Season{Name: order[idx+1], Year: s.Year}
}

// Before reports whether s comes earlier in the calendar than o.
func (s Season) Before(o Season) bool {
	if s.Year != o.Year {
		return s.Year < o.Year
	}
	return s.index() < o.index()
}

func (s Season) index() int {
	for i, name := range order {
		if name == s.Name {
			return i
		}
	}
	return 0
}

// View is the JSON shape handed to clients.
type View struct {
	Name  Name   `json:"name"`
	Year  int    `json:"year"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (s Season) View() View {
	return View{
		Name:  s.Name,
		Year:  s.Year,
		Key:   s.Key(),
		Label: s.Label(),
	}
}
