// Package pricing provides the price sources that refill the environment's
// rolling price window. A source returns the electricity price for a given
// simulated hour. Sources are plain values built directly or from
// configuration through the registry in factory.go.
package pricing
