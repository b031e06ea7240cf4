package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

const masked = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks stored prompt answers whose
// prompt key matches one of the patterns. Masking is lossy; the in-memory
// session is left untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	cloned := session.Clone()
	if cloned.Context != nil {
		for _, answers := range cloned.Context.Answers {
			m.mask(answers)
		}
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) mask(answers map[string]string) {
	for k := range answers {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				answers[k] = masked
				break
			}
		}
	}
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
