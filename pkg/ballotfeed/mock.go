package ballotfeed

import (
	"context"
)

// MockClient is a mock ballot feed client for testing
type MockClient struct {
	ballot     *BallotResponse
	winners    map[string]any
	baseURL    string
	ballotErr  error
	winnersErr error
	calls      int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithBallot sets the ballot to return
func WithBallot(ballot *BallotResponse) MockOption {
	return func(m *MockClient) {
		m.ballot = ballot
	}
}

// WithBallotError sets an error to return from FetchBallot
func WithBallotError(err error) MockOption {
	return func(m *MockClient) {
		m.ballotErr = err
	}
}

// WithWinners sets the winners document to return
func WithWinners(winners map[string]any) MockOption {
	return func(m *MockClient) {
		m.winners = winners
	}
}

// WithWinnersError sets an error to return from FetchWinners
func WithWinnersError(err error) MockOption {
	return func(m *MockClient) {
		m.winnersErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock feed client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL: "http://mock-feed.local",
		ballot:  DefaultMockBallot(),
		winners: map[string]any{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// FetchBallot returns the configured ballot
func (m *MockClient) FetchBallot(ctx context.Context) (*BallotResponse, error) {
	m.calls++
	if m.ballotErr != nil {
		return nil, m.ballotErr
	}
	return m.ballot, nil
}

// FetchWinners returns the configured winners document
func (m *MockClient) FetchWinners(ctx context.Context) (map[string]any, error) {
	m.calls++
	if m.winnersErr != nil {
		return nil, m.winnersErr
	}
	return m.winners, nil
}

// Calls returns how many fetches were made
func (m *MockClient) Calls() int {
	return m.calls
}

// DefaultMockBallot returns a small ballot with a flagship category
func DefaultMockBallot() *BallotResponse {
	return &BallotResponse{
		Event: "Mock Game Awards",
		Categories: []Category{
			{
				ID: "goty", Name: "Game of the Year", Order: 1,
				Nominees: []Nominee{
					{ID: "astro-bot", Name: "Astro Bot", Developer: "Team Asobi"},
					{ID: "balatro", Name: "Balatro", Developer: "LocalThunk"},
					{ID: "metaphor", Name: "Metaphor: ReFantazio", Developer: "Studio Zero"},
					{ID: "elden-ring-sote", Name: "Elden Ring: Shadow of the Erdtree", Developer: "FromSoftware"},
				},
			},
			{
				ID: "best-indie", Name: "Best Independent Game", Order: 2,
				Nominees: []Nominee{
					{ID: "balatro", Name: "Balatro", Developer: "LocalThunk"},
					{ID: "animal-well", Name: "Animal Well", Developer: "Shared Memory"},
					{ID: "ufo-50", Name: "UFO 50", Developer: "Mossmouth"},
				},
			},
			{
				ID: "best-score", Name: "Best Score and Music", Order: 3,
				Nominees: []Nominee{
					{ID: "final-fantasy-rebirth", Name: "Final Fantasy VII Rebirth", Developer: "Square Enix"},
					{ID: "metaphor", Name: "Metaphor: ReFantazio", Developer: "Studio Zero"},
					{ID: "silent-hill-2", Name: "Silent Hill 2", Developer: "Bloober Team"},
				},
			},
		},
	}
}

var _ Client = (*MockClient)(nil)
