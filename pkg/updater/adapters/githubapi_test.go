package adapters

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredAuth(t *testing.T) {
	tests := map[string]struct {
		mode string
		want string
	}{
		"unset":        {mode: "", want: AuthToken},
		"token":        {mode: "token", want: AuthToken},
		"login":        {mode: "login", want: AuthLogin},
		"anything":     {mode: "password", want: AuthLogin},
		"case":         {mode: "Token", want: AuthToken},
		"upper":        {mode: "TOKEN", want: AuthToken},
		"padded":       {mode: " token ", want: AuthToken},
		"padded login": {mode: " Login ", want: AuthLogin},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g := &GitHubAPI{}
			g.SetPreferredAuth(tc.mode)
			assert.Equal(t, tc.want, g.PreferredAuth())

			decoded := &GitHubAPI{AuthMode: tc.mode}
			assert.Equal(t, tc.want, decoded.PreferredAuth())
		})
	}
}

func TestAuthHeader(t *testing.T) {
	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte("jane:secret"))

	tests := map[string]struct {
		api  GitHubAPI
		want string
	}{
		"bearer token": {
			api:  GitHubAPI{Token: "t0k"},
			want: "Bearer t0k",
		},
		"mixed case token mode": {
			api:  GitHubAPI{AuthMode: " Token ", Token: "t0k"},
			want: "Bearer t0k",
		},
		"token mode without token": {
			api:  GitHubAPI{Username: "jane", Password: "secret"},
			want: "",
		},
		"login": {
			api:  GitHubAPI{AuthMode: AuthLogin, Username: "jane", Password: "secret", Token: "t0k"},
			want: basic,
		},
		"login without username": {
			api:  GitHubAPI{AuthMode: AuthLogin, Token: "t0k"},
			want: "",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			header := tc.api.AuthHeader()
			assert.Equal(t, tc.want, header.Get("Authorization"))
			assert.Equal(t, "application/vnd.github+json", header.Get("Accept"))
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	assert.Equal(t, DefaultAPIURL, (&GitHubAPI{}).APIBaseURL())
	assert.Equal(t, "https://ghe.example.com/api/v3/", (&GitHubAPI{APIURL: "https://ghe.example.com/api/v3"}).APIBaseURL())
}

func TestSetDefaultToken(t *testing.T) {
	g := &GitHubAPI{}
	g.SetDefaultToken("from-env")
	assert.Equal(t, "from-env", g.Token)

	g = &GitHubAPI{Token: "configured"}
	g.SetDefaultToken("from-env")
	assert.Equal(t, "configured", g.Token)
}
