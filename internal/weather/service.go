package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// Service fetches weather through an ordered list of providers. The first
// provider that answers wins; the rest are fallbacks.
type Service struct {
	providers []Provider

	mu     sync.RWMutex
	status map[string]ProviderStatus

	now func() time.Time
}

// NewService creates a new Service.
func NewService(providers []Provider) *Service {
	return &Service{
		providers: providers,
		status:    make(map[string]ProviderStatus),
		now:       time.Now,
	}
}

// Current returns the current weather for loc.
func (s *Service) Current(ctx context.Context, loc Location) (Snapshot, error) {
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return Snapshot{}, fmt.Errorf("%w: no weather providers configured", ErrUnavailable)
	}

	var errs []error
	for _, p := range s.providers {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}

		snap, err := p.Fetch(ctx, loc)
		s.record(p.Name(), err)
		if err != nil {
			log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		if snap.Timestamp.IsZero() {
			snap.Timestamp = s.now().UTC()
		}
		snap.Provider = p.Name()
		return snap, nil
	}

	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{}, combine(errs)
}

// Forecast returns up to steps forecast entries for loc.
func (s *Service) Forecast(ctx context.Context, loc Location, steps int) (Forecast, error) {
	if steps <= 0 || steps > MaxForecastSteps {
		return Forecast{}, fmt.Errorf("steps must be between 1 and %d", MaxForecastSteps)
	}

	log.Printf("DEBUG: Forecast called for %s for %d steps", loc.Key(), steps)

	var errs []error
	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return Forecast{}, ctx.Err()
		}

		fc, err := fp.FetchForecast(ctx, loc, steps)
		s.record(p.Name(), err)
		if err != nil {
			log.Printf("provider %s forecast failed for %s: %v", p.Name(), loc.Key(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		sort.SliceStable(fc.Entries, func(i, j int) bool {
			return fc.Entries[i].Timestamp.Before(fc.Entries[j].Timestamp)
		})
		fc.Provider = p.Name()
		return fc.Truncate(steps), nil
	}

	if len(errs) == 0 {
		log.Printf("ERROR: No forecast providers available for %s", loc.Key())
		return Forecast{}, fmt.Errorf("%w: no forecast providers configured", ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return Forecast{}, err
	}
	return Forecast{}, combine(errs)
}

// Probe queries every provider once for loc and records the outcome.
// It returns the number of healthy providers.
func (s *Service) Probe(ctx context.Context, loc Location) int {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		healthy int
	)

	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			_, err := p.Fetch(ctx, loc)
			s.record(p.Name(), err)
			if err != nil {
				log.Printf("probe: provider %s unhealthy: %v", p.Name(), err)
				return
			}

			mu.Lock()
			healthy++
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return healthy
}

// Health returns the last known status of every provider, sorted by name.
// Providers that were never called are reported healthy.
func (s *Service) Health() []ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProviderStatus, 0, len(s.providers))
	for _, p := range s.providers {
		st, ok := s.status[p.Name()]
		if !ok {
			st = ProviderStatus{Name: p.Name(), Healthy: true}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) record(name string, err error) {
	st := ProviderStatus{
		Name:      name,
		Healthy:   err == nil,
		CheckedAt: s.now().UTC(),
	}
	// A city the provider does not know says nothing about its health.
	if errors.Is(err, ErrCityNotFound) {
		st.Healthy = true
	} else if err != nil {
		st.LastError = err.Error()
	}

	s.mu.Lock()
	s.status[name] = st
	s.mu.Unlock()
}

// combine folds provider errors into ErrCityNotFound when every provider
// said so, and into ErrUnavailable otherwise.
func combine(errs []error) error {
	allNotFound := len(errs) > 0
	for _, err := range errs {
		if !errors.Is(err, ErrCityNotFound) {
			allNotFound = false
			break
		}
	}
	if allNotFound {
		return ErrCityNotFound
	}
	// Provider errors are flattened so a partial not-found does not leak
	// through errors.Is.
	return fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
}
