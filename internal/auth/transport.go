// Package auth attaches and checks GradLink's token credentials.
//
// The client side is one RoundTripper stage, Authorize, that stamps every
// outgoing request with the stored token. The server side (used only by the
// local devserver) is the mirror image: RequireAuth reads that same header
// back, and TokenService/PasswordService mint and verify what goes in it.
//
// HEADER FORMAT:
//
//	Authorization: Token <token>
//
// Exactly one space, scheme "Token" (not "Bearer"). Anything else is
// treated by the backend as anonymous.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sakif/gradlink/internal/middleware"
	"github.com/sakif/gradlink/internal/session"
)

// Authorize returns a transport stage that adds the Authorization header
// from store to every request addressed to host ("localhost:8000").
//
// The store is read AT SEND TIME, not when the client is built. A login
// that happens after construction is picked up by the very next request,
// and a logout stops the header from being sent the same way.
//
// With no session the request goes out unchanged: the endpoints that
// matter (login, signup, public lists) work anonymously, and protected
// ones answer 401 themselves. A failure to READ the store, on the other
// hand, aborts the request; sending it anonymously would hide the fault.
//
// The header is always overwritten, so a caller cannot smuggle in a
// different token.
//
// The stage runs again for every redirect hop. A hop to any other host,
// including another port on the same machine, goes out with no
// Authorization header at all.
func Authorize(store session.Store, host string) middleware.Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.EqualFold(req.URL.Host, host) {
				return next.RoundTrip(anonymous(req))
			}

			tok, err := session.TokenSource(req.Context(), store).Token()
			if errors.Is(err, session.ErrNoSession) {
				return next.RoundTrip(anonymous(req))
			}
			if err != nil {
				closeBody(req)
				return nil, fmt.Errorf("auth: loading session: %w", err)
			}

			// RoundTrippers must not modify the caller's request.
			req = req.Clone(req.Context())
			tok.SetAuthHeader(req)
			return next.RoundTrip(req)
		})
	}
}

func anonymous(req *http.Request) *http.Request {
	if req.Header.Get("Authorization") == "" {
		return req
	}
	req = req.Clone(req.Context())
	req.Header.Del("Authorization")
	return req
}

// closeBody honours the RoundTripper contract when we bail out early.
func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
