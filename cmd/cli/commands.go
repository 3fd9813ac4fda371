package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/smartfit/internal/auth"
	"github.com/and161185/smartfit/internal/convert"
	"github.com/and161185/smartfit/internal/model"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// visited returns the names of flags set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// checkTime rejects values the server would not parse as ISO-8601.
func checkTime(name, v string) error {
	if _, err := convert.ParseDateTime(v, time.Local); err != nil {
		return fmt.Errorf("-%s: %w", name, err)
	}
	return nil
}

func rangeQuery(from, to string) (url.Values, error) {
	if from == "" || to == "" {
		return nil, errors.New("need -from and -to")
	}
	if err := checkTime("from", from); err != nil {
		return nil, err
	}
	if err := checkTime("to", to); err != nil {
		return nil, err
	}
	return url.Values{"startDate": {from}, "endDate": {to}}, nil
}

// cmdLogin verifies an identity token with the server and stores it.
func cmdLogin(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("login")
	tok := fs.String("token", "", "identity token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tok == "" {
		return errors.New("need -token")
	}

	var resp struct {
		Valid   bool   `json:"valid"`
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/verify", nil, map[string]string{"idToken": *tok}, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return errors.New(resp.Message)
	}
	if err := saveToken(*tok, resp.UserID, tokenExpiry(*tok)); err != nil {
		return err
	}
	fmt.Fprintln(w, resp.UserID)
	return nil
}

// cmdToken mints a development token for servers running with AUTH_MODE=jwt.
func cmdToken(args []string, w io.Writer) error {
	fs := newFlagSet("token")
	sub := fs.String("sub", "", "user id")
	key := fs.String("key", "", "HS256 signing key")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	save := fs.Bool("save", false, "store as the current login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sub == "" || *key == "" {
		return errors.New("need -sub and -key")
	}
	tok, exp, err := auth.IssueToken([]byte(*key), *sub, *ttl)
	if err != nil {
		return err
	}
	if *save {
		if err := saveToken(tok, *sub, exp); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, tok)
	return nil
}

func cmdList(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("list")
	typ := fs.String("type", "", "category filter")
	from := fs.String("from", "", "range start")
	to := fs.String("to", "", "range end")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		out  []model.CheckinEntry
		path = "/checkin"
		q    url.Values
	)
	switch {
	case *typ != "" && (*from != "" || *to != ""):
		return errors.New("-type cannot be combined with -from/-to")
	case *typ != "":
		path = "/checkin/type/" + url.PathEscape(strings.ToUpper(*typ))
	case *from != "" || *to != "":
		var err error
		if q, err = rangeQuery(*from, *to); err != nil {
			return err
		}
		path = "/checkin/date-range"
	}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return err
	}
	printJSON(w, out)
	return nil
}

func cmdGet(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("get")
	id := fs.String("id", "", "entry id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("need -id")
	}
	var e model.CheckinEntry
	if err := c.do(ctx, http.MethodGet, "/checkin/"+url.PathEscape(*id), nil, nil, &e); err != nil {
		return err
	}
	printJSON(w, e)
	return nil
}

// entryFlags registers the writable entry fields on fs.
type entryFlags struct {
	fs       *flag.FlagSet
	typ      *string
	title    *string
	desc     *string
	calories *int
	duration *int
	weight   *float64
	water    *int
	at       *string
}

func newEntryFlags(fs *flag.FlagSet) *entryFlags {
	return &entryFlags{
		fs:       fs,
		typ:      fs.String("type", "", "WORKOUT, EXERCISE, MEAL, WEIGHT or WATER"),
		title:    fs.String("title", "", "title"),
		desc:     fs.String("desc", "", "description"),
		calories: fs.Int("calories", 0, "calories"),
		duration: fs.Int("duration", 0, "duration (minutes)"),
		weight:   fs.Float64("weight", 0, "body weight (kg)"),
		water:    fs.Int("water", 0, "water (ml)"),
		at:       fs.String("at", "", "when it happened (default now)"),
	}
}

// body includes only flags that were given so absent fields stay null.
func (f *entryFlags) body() (map[string]any, error) {
	if *f.typ == "" {
		return nil, errors.New("need -type")
	}
	set := visited(f.fs)
	b := map[string]any{"type": strings.ToUpper(*f.typ)}
	if set["title"] {
		b["title"] = *f.title
	}
	if set["desc"] {
		b["description"] = *f.desc
	}
	if set["calories"] {
		b["calories"] = *f.calories
	}
	if set["duration"] {
		b["duration"] = *f.duration
	}
	if set["weight"] {
		b["weight"] = *f.weight
	}
	if set["water"] {
		b["water"] = *f.water
	}
	if set["at"] {
		if err := checkTime("at", *f.at); err != nil {
			return nil, err
		}
		b["timestamp"] = *f.at
	}
	return b, nil
}

func cmdAdd(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("add")
	ef := newEntryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	body, err := ef.body()
	if err != nil {
		return err
	}
	var e model.CheckinEntry
	if err := c.do(ctx, http.MethodPost, "/checkin", nil, body, &e); err != nil {
		return err
	}
	printJSON(w, e)
	return nil
}

func cmdEdit(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("edit")
	id := fs.String("id", "", "entry id")
	ef := newEntryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("need -id")
	}
	body, err := ef.body()
	if err != nil {
		return err
	}
	var e model.CheckinEntry
	if err := c.do(ctx, http.MethodPut, "/checkin/"+url.PathEscape(*id), nil, body, &e); err != nil {
		return err
	}
	printJSON(w, e)
	return nil
}

func cmdRemove(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("rm")
	id := fs.String("id", "", "entry id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("need -id")
	}
	if err := c.do(ctx, http.MethodDelete, "/checkin/"+url.PathEscape(*id), nil, nil, nil); err != nil {
		return err
	}
	fmt.Fprintln(w, "ok")
	return nil
}

func cmdStats(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("stats")
	from := fs.String("from", "", "range start")
	to := fs.String("to", "", "range end")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := rangeQuery(*from, *to)
	if err != nil {
		return err
	}
	var st model.Stats
	if err := c.do(ctx, http.MethodGet, "/checkin/stats", q, nil, &st); err != nil {
		return err
	}
	printJSON(w, st)
	return nil
}

// cmdSettings prints the settings, or changes the given flags and keeps the rest.
func cmdSettings(ctx context.Context, c *client, args []string, w io.Writer) error {
	fs := newFlagSet("settings")
	workout := fs.Bool("workout", true, "track workouts")
	meal := fs.Bool("meal", true, "track meals")
	weight := fs.Bool("weight", true, "track weight")
	water := fs.Bool("water", true, "track water")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cur model.UserSettings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &cur); err != nil {
		return err
	}
	set := visited(fs)
	if len(set) == 0 {
		printJSON(w, cur)
		return nil
	}

	body := map[string]bool{
		"workoutEnabled": cur.WorkoutEnabled,
		"mealEnabled":    cur.MealEnabled,
		"weightEnabled":  cur.WeightEnabled,
		"waterEnabled":   cur.WaterEnabled,
	}
	if set["workout"] {
		body["workoutEnabled"] = *workout
	}
	if set["meal"] {
		body["mealEnabled"] = *meal
	}
	if set["weight"] {
		body["weightEnabled"] = *weight
	}
	if set["water"] {
		body["waterEnabled"] = *water
	}
	var out model.UserSettings
	if err := c.do(ctx, http.MethodPut, "/settings", nil, body, &out); err != nil {
		return err
	}
	printJSON(w, out)
	return nil
}
