package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Credentials is the fully resolved Daraja credential bundle. It is built
// fresh for every request and never returned partially populated.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Passkey        string
	Shortcode      string
	OAuthURL       string
	StkURL         string
	CallbackURL    string
}

// ErrConfigMissing names both remediation paths so the operator knows where to
// put the credentials.
var ErrConfigMissing = errors.New("daraja credentials not configured: set the MPESA_* environment variables or store them in the settings/daraja document")

const (
	EnvConsumerKey    = "MPESA_CONSUMER_KEY"
	EnvConsumerSecret = "MPESA_CONSUMER_SECRET"
	EnvPasskey        = "MPESA_PASSKEY"
	EnvShortcode      = "MPESA_SHORTCODE"
	EnvOAuthURL       = "MPESA_OAUTH_URL"
	EnvStkURL         = "MPESA_STK_URL"
	EnvCallbackURL    = "MPESA_CALLBACK_URL"
)

// Fallback document field names, also accepted by SeedFromJSON.
const (
	fieldConsumerKey    = "consumer_key"
	fieldConsumerSecret = "consumer_secret"
	fieldPasskey        = "passkey"
	fieldShortcode      = "shortcode"
	fieldOAuthURL       = "oauth_url"
	fieldStkURL         = "stk_url"
	fieldCallbackURL    = "callback_url"
)

var fieldToEnv = map[string]string{
	fieldConsumerKey:    EnvConsumerKey,
	fieldConsumerSecret: EnvConsumerSecret,
	fieldPasskey:        EnvPasskey,
	fieldShortcode:      EnvShortcode,
	fieldOAuthURL:       EnvOAuthURL,
	fieldStkURL:         EnvStkURL,
	fieldCallbackURL:    EnvCallbackURL,
}

// SettingsFetcher reads the fallback credential document from the store. A nil
// map with a nil error means the document does not exist.
type SettingsFetcher interface {
	FetchDarajaSettings(ctx context.Context) (map[string]interface{}, error)
}

// Resolve builds the credential bundle, preferring a complete set of
// environment values and falling back to the persisted settings document. The
// fallback is never consulted when the environment set is complete.
func Resolve(ctx context.Context, settings SettingsFetcher) (*Credentials, error) {
	if creds, ok := fromEnv(); ok {
		return creds, nil
	}

	doc, err := settings.FetchDarajaSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback daraja settings: %w", err)
	}
	if creds, ok := fromDocument(doc); ok {
		return creds, nil
	}

	return nil, ErrConfigMissing
}

func fromEnv() (*Credentials, bool) {
	creds := &Credentials{
		ConsumerKey:    os.Getenv(EnvConsumerKey),
		ConsumerSecret: os.Getenv(EnvConsumerSecret),
		Passkey:        os.Getenv(EnvPasskey),
		Shortcode:      os.Getenv(EnvShortcode),
		OAuthURL:       os.Getenv(EnvOAuthURL),
		StkURL:         os.Getenv(EnvStkURL),
		CallbackURL:    os.Getenv(EnvCallbackURL),
	}
	return creds, creds.complete()
}

func fromDocument(doc map[string]interface{}) (*Credentials, bool) {
	if doc == nil {
		return nil, false
	}
	creds := &Credentials{
		ConsumerKey:    coerceText(doc[fieldConsumerKey]),
		ConsumerSecret: coerceText(doc[fieldConsumerSecret]),
		Passkey:        coerceText(doc[fieldPasskey]),
		Shortcode:      coerceText(doc[fieldShortcode]),
		OAuthURL:       coerceText(doc[fieldOAuthURL]),
		StkURL:         coerceText(doc[fieldStkURL]),
		CallbackURL:    coerceText(doc[fieldCallbackURL]),
	}
	return creds, creds.complete()
}

// Completeness is all-or-nothing: a partial bundle is treated the same as an
// absent one.
func (c *Credentials) complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.Passkey != "" &&
		c.Shortcode != "" && c.OAuthURL != "" && c.StkURL != "" && c.CallbackURL != ""
}

// coerceText renders a document value as text. Shortcodes in particular are
// often stored as numbers.
func coerceText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// SeedFromJSON exports a JSON credential object into the MPESA_* environment
// values, so a single startup secret can carry the whole bundle. The input
// must be valid JSON; completeness is still checked at resolution time.
func SeedFromJSON(raw string) error {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("parse credentials JSON: %w", err)
	}
	for field, env := range fieldToEnv {
		if v := coerceText(doc[field]); v != "" {
			if err := os.Setenv(env, v); err != nil {
				return err
			}
		}
	}
	return nil
}
