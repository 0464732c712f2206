package auth

import "context"

// StaticProvider grants a fixed token with no operator interaction. It backs
// the gateway's dev mode together with the in-memory spreadsheet.
type StaticProvider struct {
	AccessToken string
}

func (p StaticProvider) Available() bool { return p.AccessToken != "" }

func (p StaticProvider) RequestConsent(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.AccessToken, nil
}
