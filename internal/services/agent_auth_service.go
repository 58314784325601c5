package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/models"
	"github.com/tourvista/tours-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AgentSource loads agent accounts
type AgentSource interface {
	GetByEmail(email string) (*models.Agent, error)
}

// AgentAuthService authenticates tour agents for calendar management
type AgentAuthService struct {
	agents AgentSource
	jwtSvc *jwt.Service
	logger *logrus.Logger
}

// NewAgentAuthService creates a new agent auth service
func NewAgentAuthService(agents AgentSource, jwtSvc *jwt.Service, logger *logrus.Logger) *AgentAuthService {
	return &AgentAuthService{
		agents: agents,
		jwtSvc: jwtSvc,
		logger: logger,
	}
}

// Login authenticates an agent and returns tokens. Unknown emails and bad
// passwords produce the same error so the endpoint cannot be used to probe
// which accounts exist.
func (s *AgentAuthService) Login(email, password string) (*models.AgentLoginResponse, error) {
	agent, err := s.agents.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrInvalidCredentials
	}
	if agent.Status != "active" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtSvc.GenerateAccessToken(agent.ID, agent.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(agent.ID, agent.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"agent_id": agent.ID,
		"email":    agent.Email,
	}).Info("Agent logged in")

	return &models.AgentLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AgentID:      agent.ID,
		Name:         agent.Name,
	}, nil
}
