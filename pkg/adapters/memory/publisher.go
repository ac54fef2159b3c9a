package memory

import (
	"context"
	"sync"

	"github.com/aretw0/quill/pkg/domain"
)

// Publisher implements ports.ScenePublisher by remembering what was
// published. It backs headless replays and tests.
type Publisher struct {
	mu sync.Mutex

	strokes  []domain.Stroke
	pose     domain.Pose
	zoneable bool

	calls PublisherCalls
	fail  error
}

// PublisherCalls counts the calls a Publisher received.
type PublisherCalls struct {
	Strokes    int
	Transforms int
	Zoneable   int
}

// NewPublisher creates a publisher in the zoneable state.
func NewPublisher() *Publisher {
	return &Publisher{zoneable: true, pose: domain.IdentityPose}
}

// PublishStrokes records a deep copy of the stroke set.
func (p *Publisher) PublishStrokes(ctx context.Context, strokes []domain.Stroke) error {
	copied := make([]domain.Stroke, len(strokes))
	for i, st := range strokes {
		copied[i] = domain.Stroke{Points: append([]domain.Point(nil), st.Points...)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls.Strokes++
	if p.fail != nil {
		return p.fail
	}
	p.strokes = copied
	return nil
}

// PublishTransform records the pose.
func (p *Publisher) PublishTransform(ctx context.Context, pose domain.Pose) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls.Transforms++
	if p.fail != nil {
		return p.fail
	}
	p.pose = pose
	return nil
}

// SetZoneable records the flag.
func (p *Publisher) SetZoneable(ctx context.Context, zoneable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls.Zoneable++
	if p.fail != nil {
		return p.fail
	}
	p.zoneable = zoneable
	return nil
}

// Strokes returns the last published stroke set.
func (p *Publisher) Strokes() []domain.Stroke {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.strokes
}

// Pose returns the last published transform.
func (p *Publisher) Pose() domain.Pose {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pose
}

// Zoneable returns the last published zoneable flag.
func (p *Publisher) Zoneable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.zoneable
}

// Calls returns how many updates of each kind were received.
func (p *Publisher) Calls() PublisherCalls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// FailWith makes every later call return err. Calls are still counted.
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}
