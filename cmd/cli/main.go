// Command sf is a CLI client for the SmartFit REST API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "smartfit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "smartfit")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok, userID string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, UserID: userID, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// tokenExpiry reads the exp claim without checking the signature; the server
// does that. Tokens without exp are assumed to live for an hour.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(tok, &claims)
	if err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Hour)
}

// ---- utils ----

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `sf CLI
Usage:
  sf -addr URL [-cacert file | -insecure] <cmd> [args]

Commands:
  version
  login     -token <id token>                       (verifies and saves token)
  token     -sub <user id> -key <hs256 key> [-ttl 1h] [-save]
  list      [-type WATER] [-from T -to T]
  get       -id <entry id>
  add       -type <category> [-title -desc -calories -duration -weight -water -at T]
  edit      -id <entry id> -type <category> [same fields as add]
  rm        -id <entry id>
  stats     -from T -to T
  settings  [-workout=bool -meal=bool -weight=bool -water=bool]

T is ISO-8601, e.g. 2025-04-01T08:00:00 or 2025-04-01T08:00:00Z.
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the configured API base URL.
func main() {
	addr := flag.String("addr", "http://localhost:8080/api", "API base URL")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cmd == "version" {
		fmt.Printf("sf %s (%s)\n", version, buildDate)
		return
	}
	if cmd == "token" {
		if err := cmdToken(args, os.Stdout); err != nil {
			fail(err)
		}
		return
	}

	httpc, err := httpClient(*caPath, *insecure)
	if err != nil {
		fail(err)
	}
	c := &client{base: *addr, http: httpc}
	if cmd != "login" {
		if c.token, err = loadToken(); err != nil {
			fail(err)
		}
	}

	switch cmd {
	case "login":
		err = cmdLogin(ctx, c, args, os.Stdout)
	case "list":
		err = cmdList(ctx, c, args, os.Stdout)
	case "get":
		err = cmdGet(ctx, c, args, os.Stdout)
	case "add":
		err = cmdAdd(ctx, c, args, os.Stdout)
	case "edit":
		err = cmdEdit(ctx, c, args, os.Stdout)
	case "rm":
		err = cmdRemove(ctx, c, args, os.Stdout)
	case "stats":
		err = cmdStats(ctx, c, args, os.Stdout)
	case "settings":
		err = cmdSettings(ctx, c, args, os.Stdout)
	default:
		usage()
	}
	if err != nil {
		fail(err)
	}
}

// ---- helpers ----

func fail(err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: status=%d msg=%s\n", ae.Status, ae.Message)
		for _, d := range ae.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", d)
		}
		if ae.RequestID != "" {
			fmt.Fprintf(os.Stderr, "request id: %s\n", ae.RequestID)
		}
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
