package virtualmin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dirien/virtualmin-sdk/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCallSendsFormWithBasicAuth(t *testing.T) {
	fake := newFakeVirtualmin(t)
	fake.reply("list-domains", http.StatusOK, `{"command":"list-domains","status":"success","data":[]}`)

	client := NewClient(fake.config())
	resp, err := client.Call(context.Background(), "list-domains", url.Values{"multiline": {""}})
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, "list-domains", resp.Command)

	call := fake.lastCall(t)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/virtual-server/remote.cgi", call.Path)
	assert.Empty(t, call.Query)
	assert.Equal(t, "application/x-www-form-urlencoded", call.ContentType)
	assert.Equal(t, testUser, call.Username)
	assert.Equal(t, testPassword, call.Password)
	assert.Equal(t, "list-domains", call.Form.Get("program"))
	assert.Equal(t, "1", call.Form.Get("json"))
	assert.Contains(t, call.Form, "multiline")
}

func TestClientCallDoesNotMutateParams(t *testing.T) {
	fake := newFakeVirtualmin(t)
	params := url.Values{"domain": {"example.com"}}

	_, err := NewClient(fake.config()).Call(context.Background(), "enable-domain", params)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"domain": {"example.com"}}, params)
}

func TestClientCallNon2xx(t *testing.T) {
	fake := newFakeVirtualmin(t)
	fake.reply("list-domains", http.StatusUnauthorized, "Login failed")

	_, err := NewClient(fake.config()).Call(context.Background(), "list-domains", nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "list-domains: unexpected HTTP status 401: Login failed", err.Error())
}

func TestClientCallUndecodableBody(t *testing.T) {
	fake := newFakeVirtualmin(t)
	fake.reply("list-domains", http.StatusOK, "<html>not json</html>")

	_, err := NewClient(fake.config()).Call(context.Background(), "list-domains", nil)
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestClientCallNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := NewClient(model.Config{Host: server.URL}).Call(context.Background(), "list-domains", nil)
	assert.ErrorContains(t, err, "list-domains: request failed")
}

func TestClientVerifySSL(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	t.Cleanup(server.Close)

	resp, err := NewClient(model.Config{Host: server.URL, VerifySSL: false}).Call(context.Background(), "list-domains", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success())

	_, err = NewClient(model.Config{Host: server.URL, VerifySSL: true}).Call(context.Background(), "list-domains", nil)
	assert.Error(t, err)
}

func TestClientBaseURLTrimsSlashes(t *testing.T) {
	client := NewClient(model.Config{Host: "https://panel.example.com:10000//"})
	assert.Equal(t, "https://panel.example.com:10000", client.BaseURL())
}

func TestResponseErr(t *testing.T) {
	assert.NoError(t, (&Response{Status: "success"}).Err("fallback"))
	assert.EqualError(t, (&Response{Status: "error", Error: "Domain exists"}).Err("fallback"), "Domain exists")
	assert.EqualError(t, (&Response{Status: "failure"}).Err("fallback"), "fallback")
	assert.EqualError(t, (&Response{}).Err("fallback"), "fallback")
}
