package flowstate

import "time"

// FlowState is what the federated sign-in needs to remember between the redirect to
// the identity provider and its callback.
type FlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flow *FlowState) error
	// Consume returns the flow for state and removes it. Each state is usable once.
	Consume(state string) (*FlowState, error)
}
