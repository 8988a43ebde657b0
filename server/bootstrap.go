package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// LogBootstrapStatus reports at startup whether the system still waits for its first user.
// It returns true while registration is open to anonymous visitors.
func (s *Server) LogBootstrapStatus(ctx context.Context) (bool, error) {
	anyUser, err := s.users.HasAnyUser(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read bootstrap state: %w", err)
	}
	if anyUser {
		log.Info().Msg("Bootstrap: users present, registration requires login")
		return false, nil
	}
	log.Warn().Msgf("Bootstrap: no users yet, open %s to create the first user", RouteSignUser)
	return true, nil
}
