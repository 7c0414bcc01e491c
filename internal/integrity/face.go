package integrity

import (
	"math/rand/v2"
	"sync"
)

// FaceCountProvider reports how many faces are in front of the camera right now.
type FaceCountProvider interface {
	Sample() int
}

const (
	multiFaceProbability = 0.03
	noFaceProbability    = 0.01
)

// RandomFaceProvider stands in for real face detection: 3% of samples
// report two faces, 1% report none, the rest report one.
type RandomFaceProvider struct {
	mu    sync.Mutex
	float func() float64
}

func NewRandomFaceProvider() *RandomFaceProvider {
	return &RandomFaceProvider{float: rand.Float64}
}

func NewSeededFaceProvider(seed uint64) *RandomFaceProvider {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &RandomFaceProvider{float: r.Float64}
}

func (p *RandomFaceProvider) Sample() int {
	p.mu.Lock()
	v := p.float()
	p.mu.Unlock()

	switch {
	case v < multiFaceProbability:
		return 2
	case v < multiFaceProbability+noFaceProbability:
		return 0
	default:
		return 1
	}
}

// ReportedFaceProvider returns the last count the client's own detector sent.
// Until a report arrives it assumes one face.
type ReportedFaceProvider struct {
	mu    sync.Mutex
	count int
}

func NewReportedFaceProvider() *ReportedFaceProvider {
	return &ReportedFaceProvider{count: 1}
}

func (p *ReportedFaceProvider) Report(count int) {
	if count < 0 {
		count = 0
	}
	p.mu.Lock()
	p.count = count
	p.mu.Unlock()
}

func (p *ReportedFaceProvider) Sample() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
