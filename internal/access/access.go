// Package access implements the passwordless portal login flow: short-lived
// single-use access codes issued per customer and verified before a portal
// token is minted.
package access

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInvalidCode is returned for every verification failure: wrong code,
// expired code, no code issued, or attempt limit reached. Callers must not
// distinguish these cases to the client.
var ErrInvalidCode = errors.New("invalid or expired access code")

const (
	// codeAlphabet omits ambiguous characters (0/O, 1/I/L, U/V lookalikes
	// excluded where confusable) so codes survive being read over the phone.
	codeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"
	codeLength   = 6

	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute

	// maxAttempts is the number of failed verifications before a code is
	// burned.
	maxAttempts = 5
)

type entry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// Service issues and verifies customer access codes. Codes live in memory
// only: they are short-lived and a restart simply forces re-issue.
type Service struct {
	mu    sync.Mutex
	codes map[string]entry

	ttl time.Duration
	now func() time.Time
	log *logrus.Logger
}

// NewService creates an access code service with the default TTL.
func NewService(logger *logrus.Logger) *Service {
	return &Service{
		codes: make(map[string]entry),
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   logger,
	}
}

func key(companyID, customerID string) string {
	return companyID + "\x00" + customerID
}

// generateCode builds a random code from the alphabet using crypto/rand.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Issue generates a fresh code for the customer and returns it with its
// expiry. Re-issuing replaces any outstanding code for the same customer,
// so only the most recent code ever verifies.
func (s *Service) Issue(companyID, customerID string) (string, time.Time, error) {
	code, err := generateCode()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.codes[key(companyID, customerID)] = entry{code: code, expiresAt: expiresAt}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"company_id":  companyID,
		"customer_id": customerID,
	}).Info("Access code issued")

	return code, expiresAt, nil
}

// Verify checks a submitted code, upper-casing it first so codes typed in
// lowercase still match. A successful verification consumes the code; it
// cannot be used twice. After maxAttempts failures the code is burned and
// the customer must request a new one.
func (s *Service) Verify(companyID, customerID, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	k := key(companyID, customerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[k]
	if !ok {
		return ErrInvalidCode
	}
	if s.now().After(e.expiresAt) {
		delete(s.codes, k)
		return ErrInvalidCode
	}
	if e.code != code {
		e.attempts++
		if e.attempts >= maxAttempts {
			delete(s.codes, k)
			s.log.WithFields(logrus.Fields{
				"company_id":  companyID,
				"customer_id": customerID,
			}).Warn("Access code burned after repeated failures")
		} else {
			s.codes[k] = e
		}
		return ErrInvalidCode
	}

	// single use
	delete(s.codes, k)
	return nil
}

// Purge drops expired entries. The server runs this periodically so
// abandoned codes do not accumulate.
func (s *Service) Purge() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.codes {
		if now.After(e.expiresAt) {
			delete(s.codes, k)
			removed++
		}
	}
	return removed
}
