package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Mask replaces every masked value.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ReportStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks node metadata values whose
// keys match any of the patterns before the report reaches the store.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ReportStore) ports.ReportStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, id string, report *domain.Report) error {
	// The caller still holds report; mask a copy.
	cloned := *report
	cloned.Graph = report.Graph.Clone()
	if cloned.Graph != nil {
		for _, n := range cloned.Graph.Nodes {
			maskMap(n.Metadata, m.patterns)
		}
	}
	return m.next.Save(ctx, id, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Report, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(meta map[string]string, patterns []*regexp.Regexp) {
	for k := range meta {
		for _, p := range patterns {
			if p.MatchString(k) {
				meta[k] = Mask
				break
			}
		}
	}
}
