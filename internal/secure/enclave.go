// Package secure wraps memguard to keep one-time secrets out of plain
// process memory between the moment the provider reveals them and the
// moment they land in the credentials file.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer holds sensitive bytes in an encrypted, mlock-backed enclave.
// The plaintext only exists while Open's LockedBuffer is alive; callers must
// Destroy the locked buffer as soon as they are done with it.
type SecureBuffer struct {
	enclave *memguard.Enclave

	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer copies data into a protected enclave. The caller should
// zero its own copy afterwards.
func NewSecureBuffer(data []byte) *SecureBuffer {
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the enclave into a locked buffer. The caller MUST call
// Destroy() on the returned buffer to wipe the plaintext.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return s.enclave.Open()
}

// Destroy marks the buffer as unusable. Idempotent. The encrypted enclave
// data itself is safe to leave for the garbage collector; call
// memguard.Purge() at process exit for full cleanup.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}
