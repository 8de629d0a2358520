package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Clock is a time of day, stored as the offset from midnight.
type Clock time.Duration

const (
	Minute = Clock(time.Minute)
	Hour   = Clock(time.Hour)
)

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// ClockOf extracts the time of day from t in its own location.
func ClockOf(t time.Time) Clock {
	h, m, s := t.Clock()
	return Clock(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func (c Clock) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) MarshalYAML() (any, error) {
	return c.String(), nil
}

// Window is an inclusive time-of-day range. A window whose start is after its end wraps midnight.
type Window struct {
	Start Clock `yaml:"start"`
	End   Clock `yaml:"end"`
}

func (w Window) Contains(t time.Time) bool {
	now := ClockOf(t)
	if w.Start <= w.End {
		return now >= w.Start && now <= w.End
	}
	return now >= w.Start || now <= w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
