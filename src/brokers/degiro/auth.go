package degiro

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/logger"
)

// Authenticator is the thin interface over the DeGiro trading API login.
// The real SDK wrapper is an external collaborator; tests and demo mode
// substitute fakes.
type Authenticator interface {
	Login(ctx context.Context, username, password, totpCode string) error
}

// SetAuthenticator attaches a login client. Without one, Authenticate only
// validates that usable credentials are configured (demo mode).
func (s *Service) SetAuthenticator(a Authenticator) {
	s.authenticator = a
}

// Authenticate opens a DeGiro session with the configured credentials.
// When a TOTP secret is configured, a one-time code is generated and sent
// along; without one, a TOTP-protected account surfaces ErrTOTPRequired so
// the caller can keep the session pending rather than clearing it.
func (s *Service) Authenticate(ctx context.Context) error {
	cfg, err := s.config.Load(brokers.BrokerDeGiro)
	if err != nil {
		return err
	}
	creds := cfg.Credentials
	if !creds.HasMinimalCredentials(brokers.BrokerDeGiro) {
		return brokers.ErrInvalidCredentials
	}

	totpCode := ""
	if creds.TOTPSecret != "" {
		code, err := totp.GenerateCode(creds.TOTPSecret, time.Now())
		if err != nil {
			logger.L.Error("Could not generate TOTP code from configured secret", "error", err)
			return brokers.ErrInvalidCredentials
		}
		totpCode = code
	}

	if s.authenticator == nil {
		// No live client wired (demo mode): credential plausibility is all
		// we can check.
		return nil
	}

	err = s.authenticator.Login(ctx, creds.Username, creds.Password, totpCode)
	if errors.Is(err, brokers.ErrTOTPRequired) && totpCode != "" {
		// The secret produced a code but the broker still wants one: the
		// stored secret is stale.
		return brokers.ErrInvalidCredentials
	}
	return err
}
