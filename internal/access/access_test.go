package access

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestService() *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(logger)
}

func TestIssueAndVerify(t *testing.T) {
	s := newTestService()

	code, expiresAt, err := s.Issue("company-1", "customer-1")
	assert.NoError(t, err)
	assert.Len(t, code, codeLength)
	assert.True(t, expiresAt.After(time.Now()))

	for _, ch := range code {
		assert.Contains(t, codeAlphabet, string(ch))
	}

	err = s.Verify("company-1", "customer-1", code)
	assert.NoError(t, err)
}

func TestVerifyNormalizesCase(t *testing.T) {
	s := newTestService()

	code, _, _ := s.Issue("company-1", "customer-1")

	// codes are typed from an email, often in lowercase or padded
	err := s.Verify("company-1", "customer-1", "  "+strings.ToLower(code)+" ")
	assert.NoError(t, err)
}

func TestVerifyIsSingleUse(t *testing.T) {
	s := newTestService()

	code, _, _ := s.Issue("company-1", "customer-1")
	assert.NoError(t, s.Verify("company-1", "customer-1", code))

	// second use of the same code fails
	err := s.Verify("company-1", "customer-1", code)
	assert.Equal(t, ErrInvalidCode, err)
}

func TestVerifyWrongCode(t *testing.T) {
	s := newTestService()

	code, _, _ := s.Issue("company-1", "customer-1")

	err := s.Verify("company-1", "customer-1", "XXXXXX")
	assert.Equal(t, ErrInvalidCode, err)

	// the real code still works after a single failure
	assert.NoError(t, s.Verify("company-1", "customer-1", code))
}

func TestVerifyNoCodeIssued(t *testing.T) {
	s := newTestService()

	err := s.Verify("company-1", "customer-1", "ABCDEF")
	assert.Equal(t, ErrInvalidCode, err)
}

func TestVerifyExpiredCode(t *testing.T) {
	s := newTestService()

	base := time.Now()
	s.now = func() time.Time { return base }

	code, _, _ := s.Issue("company-1", "customer-1")

	s.now = func() time.Time { return base.Add(DefaultTTL + time.Second) }

	err := s.Verify("company-1", "customer-1", code)
	assert.Equal(t, ErrInvalidCode, err)
}

func TestCodeBurnedAfterMaxAttempts(t *testing.T) {
	s := newTestService()

	code, _, _ := s.Issue("company-1", "customer-1")

	for i := 0; i < maxAttempts; i++ {
		err := s.Verify("company-1", "customer-1", "WRONG1")
		assert.Equal(t, ErrInvalidCode, err)
	}

	// even the correct code no longer verifies
	err := s.Verify("company-1", "customer-1", code)
	assert.Equal(t, ErrInvalidCode, err)
}

func TestReissueReplacesCode(t *testing.T) {
	s := newTestService()

	first, _, _ := s.Issue("company-1", "customer-1")
	second, _, _ := s.Issue("company-1", "customer-1")

	if first != second {
		err := s.Verify("company-1", "customer-1", first)
		assert.Equal(t, ErrInvalidCode, err)
	}
	assert.NoError(t, s.Verify("company-1", "customer-1", second))
}

func TestCodesAreTenantScoped(t *testing.T) {
	s := newTestService()

	code, _, _ := s.Issue("company-1", "customer-1")

	// same customer id under another company cannot use it
	err := s.Verify("company-2", "customer-1", code)
	assert.Equal(t, ErrInvalidCode, err)

	assert.NoError(t, s.Verify("company-1", "customer-1", code))
}

func TestPurge(t *testing.T) {
	s := newTestService()

	base := time.Now()
	s.now = func() time.Time { return base }

	s.Issue("company-1", "customer-1")
	s.Issue("company-1", "customer-2")

	s.now = func() time.Time { return base.Add(DefaultTTL + time.Second) }
	s.Issue("company-1", "customer-3")

	removed := s.Purge()
	assert.Equal(t, 2, removed)

	// the fresh code survives the purge
	assert.Len(t, s.codes, 1)
}
