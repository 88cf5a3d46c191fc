// internal/domain/signing/service.go
package signing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/bankid"
)

// Gateway is the slice of the BankID signing gateway the service depends on
type Gateway interface {
	Initiate(ctx context.Context, personalNumber string, payload interface{}) (*bankid.InitiateResult, error)
	Collect(ctx context.Context, orderRef string) (*bankid.CollectResult, error)
	Cancel(ctx context.Context, orderRef string) error
}

// Completer is notified when a session completes successfully
type Completer interface {
	MarkSigned(orderNumber string) error
}

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("signing session not found")

// hintMessages maps gateway hint codes to user-facing messages
var hintMessages = map[string]string{
	"outstandingTransaction": "Öppna BankID-appen och legitimera dig.",
	"userSign":               "Skriv din säkerhetskod i BankID-appen.",
	"started":                "Söker efter BankID på den här enheten.",
	"startFailed":            "BankID-appen kunde inte startas. Försök igen.",
	"expiredTransaction":     "Signeringen tog för lång tid. Försök igen.",
	"userCancel":             "Signeringen avbröts.",
	"certificateErr":         "Ditt BankID är spärrat eller ogiltigt.",
}

func hintMessage(hintCode string) string {
	if message, ok := hintMessages[hintCode]; ok {
		return message
	}
	return "Signeringen misslyckades. Försök igen."
}

// runner drives the poll and countdown timers of one active session. Both
// timers hang off the same context, so cancelling it tears them down
// together.
type runner struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (r *runner) stop() {
	r.once.Do(r.cancel)
}

// Service runs BankID signing sessions: it initiates them against the
// gateway, polls for completion, and exposes the session state machine
// (initializing, active, session_conflict, error, complete).
type Service struct {
	gateway   Gateway
	store     Store
	completer Completer
	cfg       config.BankIDConfig
	logger    *logrus.Logger

	mu       sync.Mutex
	runners  map[string]*runner
	inFlight map[string]string // personal number -> session id
}

// NewService creates a new signing service
func NewService(gateway Gateway, store Store, completer Completer, cfg config.BankIDConfig, logger *logrus.Logger) *Service {
	return &Service{
		gateway:   gateway,
		store:     store,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
		runners:   make(map[string]*runner),
		inFlight:  make(map[string]string),
	}
}

// StartRequest initiates a signing session for a submitted order
type StartRequest struct {
	PersonalNumber string      `json:"personal_number" binding:"required"`
	OrderNumber    string      `json:"order_number"`
	Payload        interface{} `json:"payload"`
}

// Start initiates a signing session. The per-identity guard rejects a
// duplicate start while a session is already running for the same personal
// number, returning the existing session instead of initiating twice.
func (s *Service) Start(ctx context.Context, req *StartRequest) (*Session, error) {
	s.mu.Lock()
	if existingID, ok := s.inFlight[req.PersonalNumber]; ok {
		s.mu.Unlock()
		existing, err := s.store.Get(ctx, existingID)
		if err == nil && existing != nil && !existing.Status.IsTerminal() {
			return existing, nil
		}
		// Stale guard entry: fall through and start fresh
		s.mu.Lock()
		delete(s.inFlight, req.PersonalNumber)
	}

	session := &Session{
		ID:             uuid.NewString(),
		PersonalNumber: req.PersonalNumber,
		OrderNumber:    req.OrderNumber,
		Status:         StatusInitializing,
		TimeLeft:       s.cfg.CountdownFrom,
		CreatedAt:      time.Now().UTC(),
	}
	s.inFlight[req.PersonalNumber] = session.ID
	s.mu.Unlock()

	if err := s.store.Save(ctx, session); err != nil {
		s.releaseGuard(session)
		return nil, err
	}

	return s.initiate(ctx, session, req.Payload)
}

// initiate runs the gateway initiation step and, on success, starts the
// poll runner.
func (s *Service) initiate(ctx context.Context, session *Session, payload interface{}) (*Session, error) {
	// Best-effort cancel of a stale remote session; no prior session is
	// the common case, so failures are ignored.
	if session.OrderRef != "" {
		_ = s.gateway.Cancel(ctx, session.OrderRef)
	}

	result, err := s.gateway.Initiate(ctx, session.PersonalNumber, payload)
	if err != nil {
		var conflict *bankid.ConflictError
		if errors.As(err, &conflict) {
			session.Status = StatusSessionConflict
			session.RetryAfter = conflict.RetryAfter
			session.Message = "En signering pågår redan. Vänta en stund och försök igen."
			if saveErr := s.store.Save(ctx, session); saveErr != nil {
				s.logger.WithError(saveErr).Warn("Failed to save conflicted signing session")
			}
			return session, nil
		}

		s.releaseGuard(session)
		session.Status = StatusError
		session.Message = "Signeringen kunde inte startas. Försök igen."
		if saveErr := s.store.Save(ctx, session); saveErr != nil {
			s.logger.WithError(saveErr).Warn("Failed to save failed signing session")
		}
		return session, fmt.Errorf("failed to initiate signing: %w", err)
	}

	session.OrderRef = result.OrderRef
	session.AutoStartToken = result.AutoStartToken
	session.QRImageURL = result.QRImageURL
	session.Status = StatusActive
	session.RetryAfter = 0
	session.Message = ""
	if err := s.store.Save(ctx, session); err != nil {
		s.releaseGuard(session)
		return nil, err
	}

	s.startRunner(session)
	return session, nil
}

// Status returns the current state of a session
func (s *Service) Status(ctx context.Context, id string) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Cancel stops a session: the local timers stop immediately and the remote
// session is released fire-and-forget, tolerant of failure, so navigating
// away never blocks on the gateway.
func (s *Service) Cancel(ctx context.Context, id string) error {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	s.stopRunner(id)
	s.releaseGuard(session)

	if session.OrderRef != "" {
		orderRef := session.OrderRef
		go func() {
			cancelCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
			defer cancel()
			if err := s.gateway.Cancel(cancelCtx, orderRef); err != nil {
				s.logger.WithError(err).Debug("Best-effort signing cancel failed")
			}
		}()
	}

	return s.store.Delete(ctx, id)
}

// Retry re-initiates a session that hit a conflict: it clears the conflict
// state and error and runs the initiate step again.
func (s *Service) Retry(ctx context.Context, id string, payload interface{}) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != StatusSessionConflict && session.Status != StatusError {
		return session, nil
	}

	s.stopRunner(id)

	session.Status = StatusInitializing
	session.Message = ""
	session.RetryAfter = 0
	session.HintCode = ""
	session.TimeLeft = s.cfg.CountdownFrom

	s.mu.Lock()
	s.inFlight[session.PersonalNumber] = session.ID
	s.mu.Unlock()

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	return s.initiate(ctx, session, payload)
}

// Shutdown stops all running sessions
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.runners {
		r.stop()
		delete(s.runners, id)
	}
}

// Private helper methods

func (s *Service) startRunner(session *Session) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &runner{cancel: cancel}

	s.mu.Lock()
	if existing, ok := s.runners[session.ID]; ok {
		existing.stop()
	}
	s.runners[session.ID] = r
	s.mu.Unlock()

	go s.run(ctx, session.ID)
}

func (s *Service) stopRunner(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.runners[id]; ok {
		r.stop()
		delete(s.runners, id)
	}
}

func (s *Service) releaseGuard(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[session.PersonalNumber] == session.ID {
		delete(s.inFlight, session.PersonalNumber)
	}
}

// run is the poll loop of one active session. The poll timer and the
// one-second countdown share the loop's context: any terminal transition
// cancels it, which stops both at once. A tick that fires after
// cancellation finds the context done and no-ops instead of acting on a
// stale session.
func (s *Service) run(ctx context.Context, sessionID string) {
	pollTicker := time.NewTicker(s.cfg.PollInterval)
	defer pollTicker.Stop()

	countdownTicker := time.NewTicker(time.Second)
	defer countdownTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pollTicker.C:
			if ctx.Err() != nil {
				return
			}
			if done := s.poll(ctx, sessionID); done {
				s.stopRunner(sessionID)
				return
			}

		case <-countdownTicker.C:
			if ctx.Err() != nil {
				return
			}
			if done := s.tickCountdown(ctx, sessionID); done {
				s.stopRunner(sessionID)
				return
			}
		}
	}
}

// poll runs one collect call and maps its outcome onto exactly one state
// transition. It reports true when the session reached a terminal state.
func (s *Service) poll(ctx context.Context, sessionID string) bool {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil || session == nil {
		return true
	}

	result, err := s.gateway.Collect(ctx, session.OrderRef)
	if err != nil {
		return s.failSession(ctx, session, err)
	}

	switch result.Status {
	case bankid.StatusComplete:
		session.Status = StatusComplete
		session.HintCode = result.HintCode
		session.Message = ""
		if err := s.store.Save(ctx, session); err != nil {
			s.logger.WithError(err).Warn("Failed to save completed signing session")
		}
		s.releaseGuard(session)
		if s.completer != nil && session.OrderNumber != "" {
			if err := s.completer.MarkSigned(session.OrderNumber); err != nil {
				s.logger.WithError(err).WithField("order_number", session.OrderNumber).Error("Failed to mark order signed")
			}
		}
		return true

	case bankid.StatusFailed:
		session.Status = StatusError
		session.HintCode = result.HintCode
		session.Message = hintMessage(result.HintCode)
		if err := s.store.Save(ctx, session); err != nil {
			s.logger.WithError(err).Warn("Failed to save failed signing session")
		}
		s.releaseGuard(session)
		return true

	default:
		// Still pending: refresh the displayed hint and keep polling
		session.HintCode = result.HintCode
		session.Message = hintMessage(result.HintCode)
		if err := s.store.Save(ctx, session); err != nil {
			s.logger.WithError(err).Warn("Failed to save signing session")
		}
		return false
	}
}

// failSession classifies a collect error into its terminal state
func (s *Service) failSession(ctx context.Context, session *Session, err error) bool {
	var conflict *bankid.ConflictError
	switch {
	case errors.As(err, &conflict):
		session.Status = StatusSessionConflict
		session.RetryAfter = conflict.RetryAfter
		session.Message = "En signering pågår redan. Vänta en stund och försök igen."

	case errors.Is(err, bankid.ErrSessionExpired):
		session.Status = StatusError
		session.HintCode = "expiredTransaction"
		session.Message = hintMessage("expiredTransaction")

	default:
		session.Status = StatusError
		session.Message = "Signeringen misslyckades. Försök igen."
	}

	if saveErr := s.store.Save(ctx, session); saveErr != nil {
		s.logger.WithError(saveErr).Warn("Failed to save signing session after poll error")
	}
	if session.Status != StatusSessionConflict {
		s.releaseGuard(session)
	}
	return true
}

// tickCountdown decrements the visible countdown. Reaching zero forces a
// terminal timeout locally; the authoritative timeout still belongs to the
// signing provider.
func (s *Service) tickCountdown(ctx context.Context, sessionID string) bool {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil || session == nil {
		return true
	}

	session.TimeLeft--
	if session.TimeLeft > 0 {
		if err := s.store.Save(ctx, session); err != nil {
			s.logger.WithError(err).Warn("Failed to save signing countdown")
		}
		return false
	}

	session.TimeLeft = 0
	session.Status = StatusError
	session.HintCode = "expiredTransaction"
	session.Message = hintMessage("expiredTransaction")
	if err := s.store.Save(ctx, session); err != nil {
		s.logger.WithError(err).Warn("Failed to save timed out signing session")
	}
	s.releaseGuard(session)
	return true
}
