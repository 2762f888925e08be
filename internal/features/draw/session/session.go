// Package session models one participant's walk through the draw form:
// account -> amount -> upload -> wheel -> result. A Session is owned by its
// caller and is not safe for concurrent use; the draw core never keeps one.
package session

import (
	"errors"
	"fmt"
	"strings"

	"lucky-draw-backend/internal/features/draw/models"
)

type Step string

const (
	StepAccount Step = "account"
	StepAmount  Step = "amount"
	StepUpload  Step = "upload"
	StepWheel   Step = "wheel"
	StepResult  Step = "result"
)

var (
	ErrInvalidStep   = errors.New("operation not allowed at this step")
	ErrEmptyHandle   = errors.New("account handle is required")
	ErrProofRequired = errors.New("proof image is required")
)

// Number is the 1-based position shown in the progress indicator.
func (s Step) Number() int {
	switch s {
	case StepAccount:
		return 1
	case StepAmount:
		return 2
	case StepUpload:
		return 3
	case StepWheel:
		return 4
	case StepResult:
		return 5
	default:
		return 0
	}
}

// Input is everything a draw needs from the session.
type Input struct {
	Handle     string
	Tier       models.Tier
	ProofImage string
}

type Session struct {
	step   Step
	handle string
	tier   models.Tier
	proof  string
	result *models.DrawResult
}

func New() *Session {
	return &Session{step: StepAccount}
}

func (s *Session) Step() Step {
	return s.step
}

func (s *Session) expect(step Step) error {
	if s.step != step {
		return fmt.Errorf("%w: at %s, want %s", ErrInvalidStep, s.step, step)
	}
	return nil
}

func (s *Session) ConfirmAccount(handle string) error {
	if err := s.expect(StepAccount); err != nil {
		return err
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ErrEmptyHandle
	}
	s.handle = handle
	s.step = StepAmount
	return nil
}

func (s *Session) SelectTier(tier models.Tier) error {
	if err := s.expect(StepAmount); err != nil {
		return err
	}
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidTier, tier)
	}
	s.tier = tier
	s.step = StepUpload
	return nil
}

func (s *Session) AttachProof(image string) error {
	if err := s.expect(StepUpload); err != nil {
		return err
	}
	if image == "" {
		return ErrProofRequired
	}
	s.proof = image
	s.step = StepWheel
	return nil
}

// Back moves one step towards account. Collected values are kept so the
// form can be resubmitted unchanged.
func (s *Session) Back() error {
	switch s.step {
	case StepAmount:
		s.step = StepAccount
	case StepUpload:
		s.step = StepAmount
	case StepWheel:
		s.step = StepUpload
	default:
		return fmt.Errorf("%w: cannot go back from %s", ErrInvalidStep, s.step)
	}
	return nil
}

func (s *Session) Input() (Input, error) {
	if err := s.expect(StepWheel); err != nil {
		return Input{}, err
	}
	return Input{Handle: s.handle, Tier: s.tier, ProofImage: s.proof}, nil
}

// Complete records the result of the session's single draw.
func (s *Session) Complete(result models.DrawResult) error {
	if err := s.expect(StepWheel); err != nil {
		return err
	}
	s.result = &result
	s.step = StepResult
	return nil
}

func (s *Session) Result() (models.DrawResult, bool) {
	if s.result == nil {
		return models.DrawResult{}, false
	}
	return *s.result, true
}

// Reset starts a new session from the account step.
func (s *Session) Reset() {
	*s = Session{step: StepAccount}
}
