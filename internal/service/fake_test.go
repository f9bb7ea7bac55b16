package service

import (
	"context"
	"sync"

	"github.com/and161185/perpus/internal/model"
	"github.com/and161185/perpus/internal/pkg/json"
)

type call struct {
	method string
	path   string
	body   any
}

// fakeCaller answers with handle; a nil handle returns nothing.
type fakeCaller struct {
	mu     sync.Mutex
	calls  []call
	handle func(method, path string, body any) (string, error)
}

var _ Caller = (*fakeCaller)(nil)

func (f *fakeCaller) Call(_ context.Context, method, path string, body, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{method: method, path: path, body: body})
	h := f.handle
	f.mu.Unlock()

	if h == nil {
		return nil
	}
	resp, err := h(method, path, body)
	if err != nil {
		return err
	}
	if out == nil || resp == "" {
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (f *fakeCaller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCaller) callsTo(method string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

type fakeIdentity struct {
	s model.Session
}

var _ Identity = (*fakeIdentity)(nil)

func (f *fakeIdentity) Current() (model.Session, bool) { return f.s, f.s.Valid() }

func loggedIn(userID model.ID) *fakeIdentity {
	return &fakeIdentity{s: model.Session{Username: "budi", Token: "tok", UserID: userID}}
}

func jsonMarshal(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}
