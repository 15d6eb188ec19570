package auth

import "context"

type contextKey string

const (
	credentialContextKey contextKey = "assistant_credential"
	requestIDContextKey  contextKey = "request_id"
)

// Credential is the caller's bearer token, forwarded verbatim to the backend.
type Credential struct {
	Token string
	// Subject is the id claim of Token, empty when the token carries none.
	Subject string
}

func ContextWithCredential(ctx context.Context, c *Credential) context.Context {
	return context.WithValue(ctx, credentialContextKey, c)
}

func CredentialFromContext(ctx context.Context) (*Credential, bool) {
	c, ok := ctx.Value(credentialContextKey).(*Credential)
	return c, ok && c != nil && c.Token != ""
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
