package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"rankdrift/internal/mapdata"
)

const (
	// DefaultRemoteURL is the prediction service base URL
	DefaultRemoteURL = "https://predictstarnumber.onrender.com"
	// DefaultTimeout is long because the service can take minutes to cold start
	DefaultTimeout = 300 * time.Second
	// DefaultDelay is the pause before every request to the service
	DefaultDelay = time.Second
	// DefaultMaxFailures is how many transport failures in a row are tolerated
	DefaultMaxFailures = 3
)

// RemotePredictor fetches all predictions of a song from the prediction
// service in one request. Requests are serialized with a fixed delay.
type RemotePredictor struct {
	basePredictor
	client      *http.Client
	baseURL     string
	delay       time.Duration
	maxFailures int
	failures    int
	log         *zap.Logger
}

// NewRemotePredictor creates a RemotePredictor. A zero timeout or maxFailures
// selects the default; a zero delay disables throttling.
func NewRemotePredictor(baseURL string, timeout, delay time.Duration, maxFailures int, log *zap.Logger) *RemotePredictor {
	if baseURL == "" {
		baseURL = DefaultRemoteURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if delay < 0 {
		delay = 0
	}
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &RemotePredictor{
		basePredictor: newBasePredictor("remote"),
		client:        &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		delay:         delay,
		maxFailures:   maxFailures,
		log:           log,
	}
}

// LookupAll requests the predictions of every difficulty of the song.
// The response is a JSON object keyed like "Standard-ExpertPlus"; keys that
// do not parse and values that are not numbers are left out.
func (p *RemotePredictor) LookupAll(ctx context.Context, hash string) (map[mapdata.Key]float64, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.countCall()

	endpoint := fmt.Sprintf("%s/api2/hash/%s", p.baseURL, url.PathEscape(hash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating prediction request: %w", err)
	}

	p.log.Debug("Requesting predictions", zap.String("hash", hash))
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, p.transportFailure(fmt.Errorf("error requesting predictions: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, p.transportFailure(fmt.Errorf("prediction service returned %s", resp.Status))
	}
	p.failures = 0
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction service returned %s for %s", resp.Status, hash)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode predictions for %s: %w", hash, err)
	}

	values := make(map[mapdata.Key]float64, len(body))
	for name, raw := range body {
		key, err := mapdata.ParseKey(name)
		if err != nil {
			continue
		}
		if v, ok := raw.(float64); ok {
			values[key] = v
		}
	}
	return values, nil
}

func (p *RemotePredictor) wait(ctx context.Context) error {
	if p.delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// transportFailure counts a failed request and escalates to ErrUnavailable
// once maxFailures happen in a row
func (p *RemotePredictor) transportFailure(err error) error {
	p.failures++
	p.log.Warn("Prediction service request failed",
		zap.Int("consecutive", p.failures),
		zap.Error(err))
	if p.failures >= p.maxFailures {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
