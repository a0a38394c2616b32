package main

import (
	"errors"
	"strings"

	"github.com/chassweeting/onedrive-client/internal/config"
	"github.com/chassweeting/onedrive-client/internal/graph"
)

// Azure AD error codes with a known user-side remedy.
const (
	aadConditionalAccess = "AADSTS53003"
	aadConsentRequired   = "AADSTS65001"
	aadPublicClient      = "AADSTS7000218"
)

// errorHint maps a command failure to one line of guidance, or "" when the
// error speaks for itself.
func errorHint(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, config.ErrMissingIdentity) {
		return "run 'onedrive-client config init --client-id ID --tenant-id TENANT' or set AZURE_CLIENT_ID and AZURE_TENANT_ID"
	}

	var ae *graph.AuthenticationError
	if errors.As(err, &ae) {
		return authHint(ae.Error())
	}

	var ce *graph.ContractError
	if errors.As(err, &ce) {
		return "Microsoft Graph returned a response this client does not understand; rerun with --verbose and report it"
	}

	switch {
	case errors.Is(err, graph.ErrUnauthorized):
		return "the access token was rejected; rerun the command to sign in again"
	case errors.Is(err, graph.ErrForbidden):
		return "the signed-in account lacks a delegated permission for this request " +
			"(User.Read, Files.Read.All, Sites.Read.All); ask an administrator to grant consent"
	case errors.Is(err, graph.ErrNotFound):
		return "the item does not exist or is not shared with the signed-in account"
	case errors.Is(err, graph.ErrThrottled):
		return "Microsoft Graph is throttling requests; wait a minute and retry"
	case errors.Is(err, graph.ErrServerError):
		return "Microsoft Graph reported a server error; retry later"
	}

	return ""
}

// authHint explains a sign-in failure from the OAuth error text.
func authHint(msg string) string {
	switch {
	case strings.Contains(msg, aadConditionalAccess):
		return "access was blocked by a Conditional Access policy; sign in from a compliant device or network, or ask your administrator"
	case strings.Contains(msg, aadConsentRequired):
		return "the application has not been granted the requested permissions; ask an administrator to grant consent"
	case strings.Contains(msg, aadPublicClient):
		return "enable 'Allow public client flows' in the app registration's Authentication settings"
	case strings.Contains(msg, "access_denied"), strings.Contains(msg, "authorization_declined"):
		return "sign-in was declined; rerun the command and approve the request"
	case strings.Contains(msg, "expired_token"):
		return "the device code expired before sign-in completed; rerun the command"
	default:
		return "not signed in; check client_id and tenant_id, then rerun the command to sign in"
	}
}
