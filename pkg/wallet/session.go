package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNoAddress is returned by Connect when no address is available.
var ErrNoAddress = errors.New("no wallet address configured")

// Session is a connected-wallet source. Only Address is used to scope queries.
type Session interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Address() string
	Error() string
	IsLoading() bool
}

// StaticSession is a Session backed by a configured address, used when the process watches a
// fixed wallet instead of a browser-connected one.
type StaticSession struct {
	mu        sync.RWMutex
	address   string
	connected bool
	lastErr   string
}

// NewStaticSession returns a disconnected session for address.
func NewStaticSession(address string) *StaticSession {
	return &StaticSession{address: strings.TrimSpace(address)}
}

// Connect marks the session connected, or records ErrNoAddress when no address was configured.
func (s *StaticSession) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == "" {
		s.lastErr = ErrNoAddress.Error()
		return ErrNoAddress
	}
	s.connected = true
	s.lastErr = ""
	return nil
}

func (s *StaticSession) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Address returns the wallet address, or "" while disconnected.
func (s *StaticSession) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return ""
	}
	return s.address
}

func (s *StaticSession) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsLoading is always false; connecting a static session does not block.
func (s *StaticSession) IsLoading() bool { return false }

var _ Session = (*StaticSession)(nil)
