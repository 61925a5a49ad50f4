package ewelink

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const loginPageURL = "https://c2ccdn.coolkit.cc/oauth/index.html"

// LoginURL builds the hosted OAuth login page URL. The authorization
// parameter is the application signature over "appID_seq"; the cloud
// redirects back to redirectURL with code and region query parameters.
func (c *Client) LoginURL(redirectURL string, state string) string {
	seq := strconv.FormatInt(time.Now().UnixMilli(), 10)

	q := url.Values{}
	q.Set("clientId", c.appID)
	q.Set("seq", seq)
	q.Set("authorization", c.sign([]byte(c.appID+"_"+seq)))
	q.Set("redirectUrl", redirectURL)
	q.Set("grantType", "authorization_code")
	q.Set("state", state)
	q.Set("nonce", nonce())

	return loginPageURL + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for the initial token set. The
// region comes from the callback query, not from configuration: the user may
// have logged in against a different regional partition than the default.
func (c *Client) ExchangeCode(ctx context.Context, region string, code string, redirectURL string) (OAuthTokenData, error) {
	body := map[string]string{
		"code":        code,
		"redirectUrl": redirectURL,
		"grantType":   "authorization_code",
	}

	var data OAuthTokenData
	if err := c.doSigned(ctx, region, "/v2/user/oauth/token", body, &data); err != nil {
		return OAuthTokenData{}, err
	}

	return data, nil
}

// RefreshToken obtains a fresh token pair. The current access token is still
// required in the Authorization header even though it may already be past
// its expiry; the refresh token in the body is what actually authorizes the
// call.
func (c *Client) RefreshToken(ctx context.Context, region string, accessToken string, refreshToken string) (RefreshData, error) {
	body := map[string]string{"rt": refreshToken}

	var data RefreshData
	if err := c.doBearer(ctx, http.MethodPost, region, "/v2/user/refresh", nil, accessToken, body, &data); err != nil {
		return RefreshData{}, err
	}

	return data, nil
}
