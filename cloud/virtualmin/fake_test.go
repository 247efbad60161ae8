package virtualmin

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/dirien/virtualmin-sdk/model"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "root"
	testPassword = "hunter2"
)

// fakeRequest is one call received by fakeVirtualmin.
type fakeRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Username    string
	Password    string
	Form        url.Values
}

type fakeReply struct {
	status int
	body   string
}

// fakeVirtualmin is an httptest server answering remote.cgi calls with canned
// replies per program.
type fakeVirtualmin struct {
	mu       sync.Mutex
	server   *httptest.Server
	replies  map[string]fakeReply
	requests []fakeRequest
}

func newFakeVirtualmin(t *testing.T) *fakeVirtualmin {
	t.Helper()
	f := &fakeVirtualmin{replies: map[string]fakeReply{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeVirtualmin) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	user, pass, _ := r.BasicAuth()

	f.mu.Lock()
	f.requests = append(f.requests, fakeRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Username:    user,
		Password:    pass,
		Form:        r.PostForm,
	})
	reply, ok := f.replies[r.PostForm.Get("program")]
	f.mu.Unlock()

	if !ok {
		reply = fakeReply{status: http.StatusOK, body: `{"status":"success"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	_, _ = w.Write([]byte(reply.body))
}

func (f *fakeVirtualmin) reply(program string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[program] = fakeReply{status: status, body: body}
}

func (f *fakeVirtualmin) calls() []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeRequest(nil), f.requests...)
}

func (f *fakeVirtualmin) lastCall(t *testing.T) fakeRequest {
	t.Helper()
	calls := f.calls()
	require.NotEmpty(t, calls, "no request reached the fake server")
	return calls[len(calls)-1]
}

func (f *fakeVirtualmin) config() model.Config {
	return model.Config{
		Host:     f.server.URL + "/",
		Username: testUser,
		Password: testPassword,
	}
}

func (f *fakeVirtualmin) adapter(t *testing.T, opts ...Option) *Virtualmin {
	t.Helper()
	v, err := NewVirtualmin(f.config(), opts...)
	require.NoError(t, err)
	return v
}
