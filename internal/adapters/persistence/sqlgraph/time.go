package sqlgraph

import (
	"fmt"
	"time"
)

// timeLayouts are the text forms a DATETIME column can come back in when the
// driver does not see the declared type
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// sqliteTime scans a DATETIME column from either time.Time or text
type sqliteTime struct {
	time.Time
}

func (t *sqliteTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("sqlgraph: cannot scan %T into time", value)
}

func (t *sqliteTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("sqlgraph: unrecognised time %q", s)
}
