package profile

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// naive ISO-8601 layouts, without a zone, interpreted as local time
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Timestamp is a time.Time that also accepts zone-less ISO-8601 values.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "timestamp must be a string")
	}

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range legacyLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Errorf("unrecognized timestamp %q", raw)
}

// Display formats the timestamp the way listings show it.
func (t Timestamp) Display() string {
	return t.Time.Local().Format("2006-01-02 15:04")
}
