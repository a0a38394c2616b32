package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
	"golang.org/x/sync/singleflight"
)

// DeviceAuth holds the device code response fields that the CLI displays to the user.
type DeviceAuth struct {
	UserCode        string
	VerificationURI string
}

// DeviceCodeCredential is a TokenSource that signs the user in with the
// OAuth2 device code flow on first use and keeps the resulting token in
// memory. Later calls reuse the token, refreshing it silently when it
// expires. Nothing is written to disk.
type DeviceCodeCredential struct {
	cfg     *oauth2.Config
	display func(DeviceAuth)
	logger  *slog.Logger

	signIns singleflight.Group

	mu  sync.Mutex
	src oauth2.TokenSource // nil until the first sign-in completes
}

// signInKey is the singleflight key shared by every first-use caller.
const signInKey = "device-code"

// NewDeviceCodeCredential builds a credential for the given Entra ID
// application and tenant ("common", "organizations", a domain, or a GUID).
// display is called once per sign-in with the code the user must enter.
func NewDeviceCodeCredential(
	clientID, tenantID string,
	scopes []string,
	display func(DeviceAuth),
	logger *slog.Logger,
) *DeviceCodeCredential {
	return newDeviceCodeCredential(oauthConfig(clientID, tenantID, scopes), display, logger)
}

// newDeviceCodeCredential accepts a pre-built oauth2.Config so tests can
// inject a mock endpoint.
func newDeviceCodeCredential(cfg *oauth2.Config, display func(DeviceAuth), logger *slog.Logger) *DeviceCodeCredential {
	if logger == nil {
		logger = slog.Default()
	}

	if display == nil {
		display = func(DeviceAuth) {}
	}

	return &DeviceCodeCredential{
		cfg:     cfg,
		display: display,
		logger:  logger,
	}
}

// oauthConfig builds the oauth2.Config for the Microsoft identity platform.
func oauthConfig(clientID, tenantID string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   scopes,
		Endpoint: microsoft.AzureADEndpoint(tenantID),
	}
}

// Token returns a valid access token, running the device code flow if the
// user has not signed in yet. It blocks until the user completes sign-in,
// the code expires, or ctx is canceled. Concurrent first callers share a
// single sign-in prompt; each of them stops waiting when its own ctx ends.
func (d *DeviceCodeCredential) Token(ctx context.Context) (string, error) {
	src, err := d.source(ctx)
	if err != nil {
		return "", err
	}

	t, err := src.Token()
	if err != nil {
		d.logger.Warn("token acquisition failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("graph: obtaining token: %w", err)
	}

	d.logger.Debug("token acquired",
		slog.Time("expiry", t.Expiry),
		slog.Bool("valid", t.Valid()),
	)

	return t.AccessToken, nil
}

// source returns the signed-in token source, joining or starting the
// shared sign-in when there is none yet. The sign-in runs under the ctx of
// the caller that started it.
func (d *DeviceCodeCredential) source(ctx context.Context) (oauth2.TokenSource, error) {
	if src := d.current(); src != nil {
		return src, nil
	}

	ch := d.signIns.DoChan(signInKey, func() (any, error) {
		if src := d.current(); src != nil {
			return src, nil
		}

		src, err := d.signIn(ctx)
		if err != nil {
			return nil, err
		}

		d.mu.Lock()
		d.src = src
		d.mu.Unlock()

		return src, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("graph: waiting for sign-in: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		src, ok := res.Val.(oauth2.TokenSource)
		if !ok {
			return nil, fmt.Errorf("graph: unexpected sign-in result %T", res.Val)
		}

		return src, nil
	}
}

func (d *DeviceCodeCredential) current() oauth2.TokenSource {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.src
}

// signIn performs the device code OAuth2 flow:
//  1. Requests a device code from Microsoft
//  2. Calls display so the CLI can show the user code and verification URL
//  3. Polls until the user authorizes (blocking, respects ctx cancellation)
//
// The returned source refreshes with context.Background() because it
// outlives the ctx of the call that triggered sign-in.
func (d *DeviceCodeCredential) signIn(ctx context.Context) (oauth2.TokenSource, error) {
	// A caller whose ctx already ended must not request a new code.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("graph: device auth canceled: %w", err)
	}

	d.logger.Info("starting device code auth flow")

	da, err := d.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: device auth request failed: %w", err)
	}

	d.logger.Info("device code received, waiting for user authorization")

	uri := da.VerificationURIComplete
	if uri == "" {
		uri = da.VerificationURI
	}

	d.display(DeviceAuth{
		UserCode:        da.UserCode,
		VerificationURI: uri,
	})

	tok, err := d.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("graph: device code authorization failed: %w", err)
	}

	d.logger.Info("user authorized",
		slog.Time("expiry", tok.Expiry),
	)

	return oauth2.ReuseTokenSource(tok, d.cfg.TokenSource(context.Background(), tok)), nil
}
