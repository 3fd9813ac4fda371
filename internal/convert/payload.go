package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

// offsetLayouts cover ISO date-times with an offset that RFC 3339 rejects.
var offsetLayouts = []string{
	"2006-01-02T15:04Z07:00",
}

// localLayouts are tried, in order, for date-times without an offset.
// Fractional seconds after the seconds field are accepted by time.Parse.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// entryPayload mirrors the accepted request body. Any owner field sent by the
// client is not part of it and therefore dropped.
type entryPayload struct {
	Type        *string         `json:"type"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Calories    *json.Number    `json:"calories"`
	Duration    *json.Number    `json:"duration"`
	Weight      *float64        `json:"weight"`
	Water       *json.Number    `json:"water"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

// EntryParser turns request bodies into check-in entries owned by the caller.
type EntryParser struct {
	log *zap.Logger
	loc *time.Location
	now func() time.Time
}

// NewEntryParser constructs a parser. loc is used for date-times without an
// offset; now supplies the fallback timestamp.
func NewEntryParser(log *zap.Logger, loc *time.Location, now func() time.Time) *EntryParser {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &EntryParser{log: log, loc: loc, now: now}
}

// Parse decodes body and stamps callerID as the owner. Malformed JSON or an
// unknown type yields a ValidationError; a malformed timestamp is logged and
// replaced by the current time.
func (p *EntryParser) Parse(body []byte, callerID string) (model.CheckinEntry, error) {
	var in entryPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&in); err != nil {
		return model.CheckinEntry{}, errs.NewValidation(fmt.Sprintf("Malformed request body: %v", err))
	}

	e := model.CheckinEntry{
		UserID:      callerID,
		Title:       in.Title,
		Description: in.Description,
		Weight:      in.Weight,
	}
	var bad []string
	for _, f := range []struct {
		name string
		in   *json.Number
		dst  **int
	}{
		{"calories", in.Calories, &e.Calories},
		{"duration", in.Duration, &e.Duration},
		{"water", in.Water, &e.Water},
	} {
		v, err := wholeNumber(f.in)
		if err != nil {
			bad = append(bad, f.name+": "+err.Error())
			continue
		}
		*f.dst = v
	}
	if len(bad) > 0 {
		return model.CheckinEntry{}, errs.NewValidation(bad...)
	}
	if in.Type != nil && *in.Type != "" {
		c := model.Category(*in.Type)
		if !c.Valid() {
			return model.CheckinEntry{}, errs.NewValidation(
				fmt.Sprintf("type: unknown check-in type %q, expected one of %v", *in.Type, model.Categories))
		}
		e.Type = c
	}
	e.Timestamp = p.timestamp(in.Timestamp)
	return e, nil
}

// wholeNumber accepts integral and fractional JSON numbers; fractions are
// truncated toward zero.
func wholeNumber(n *json.Number) (*int, error) {
	if n == nil {
		return nil, nil
	}
	if i, err := n.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
		v := int(i)
		return &v, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil, fmt.Errorf("must be a number within 32-bit range, got %s", n.String())
	}
	v := int(math.Trunc(f))
	return &v, nil
}

func (p *EntryParser) timestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return p.now()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		p.log.Warn("timestamp is not a string, using current time", zap.ByteString("raw", raw))
		return p.now()
	}
	ts, err := ParseDateTime(s, p.loc)
	if err != nil {
		p.log.Warn("failed to parse timestamp, using current time", zap.String("timestamp", s), zap.Error(err))
		return p.now()
	}
	return ts
}

// ErrBadDateTime is returned by ParseDateTime for unsupported input.
var ErrBadDateTime = errors.New("unsupported date-time")

// ParseDateTime parses s as an RFC 3339 date-time with offset, falling back to
// a local date-time in loc when s carries the 'T' separator.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range offsetLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	if !strings.Contains(s, "T") {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateTime, s)
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateTime, s)
}
