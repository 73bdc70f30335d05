package session

import (
	"context"
	"encoding/json"
	"sync"

	"newsdesk/internal/domain"
)

type fakeAuthClient struct {
	mu          sync.Mutex
	verifyResp  *domain.VerifyResponse
	verifyErr   error
	logoutResp  *domain.LogoutResponse
	logoutErr   error
	verifyCalls int
	logoutCalls int
}

func (f *fakeAuthClient) Verify(context.Context) (*domain.VerifyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	resp := *f.verifyResp
	return &resp, nil
}

func (f *fakeAuthClient) Logout(context.Context) (*domain.LogoutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	resp := *f.logoutResp
	return &resp, nil
}

func (f *fakeAuthClient) setSession(user string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyErr = nil
	if user == "" {
		f.verifyResp = &domain.VerifyResponse{Success: false}
		return
	}
	f.verifyResp = &domain.VerifyResponse{Success: true, Data: json.RawMessage(user)}
}

func (f *fakeAuthClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

// countingCache records how often Clear reaches the backing cache.
type countingCache struct {
	*MemoryCache
	mu     sync.Mutex
	clears int
}

func (c *countingCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
	return c.MemoryCache.Clear(ctx)
}

func (c *countingCache) clearCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}
