package api

import (
	"context"
	"time"

	"github.com/certbloom/certbloom/internal/mood"
	"github.com/certbloom/certbloom/internal/services"
)

// Pinger reports store connectivity for the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	UserService     services.UserService
	ContentService  services.ContentService
	QuestionService services.QuestionService
	ImportService   services.ImportService
	ProgressService services.ProgressService
	SessionService  services.SessionService
	Moods           *mood.Modulator
	DB              Pinger
	ImportMaxBytes  int64
	RequestTimeout  time.Duration
}
