package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenType is the authorization scheme the GradLink backend expects.
//
// It is NOT "Bearer". The backend's token authentication only recognises
// "Token <key>", and oauth2.Token.SetAuthHeader writes whatever TokenType
// says verbatim (it only normalises bearer/mac/basic), so setting it here
// is all it takes to get the right header.
const TokenType = "Token"

// TokenSource adapts a Store to oauth2.TokenSource, bound to ctx.
//
// Each Token() call reads the store again, so a logout observed between two
// requests takes effect on the next one. When nobody is logged in Token()
// returns ErrNoSession.
func TokenSource(ctx context.Context, store Store) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: store}
}

type storeTokenSource struct {
	ctx   context.Context
	store Store
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	sess, err := ts.store.Load(ts.ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return &oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   TokenType,
	}, nil
}
