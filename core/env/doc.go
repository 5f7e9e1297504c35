// Package env implements the single-vehicle V2G environment: a synchronous
// state-transition engine that owns the battery level, the simulated clock,
// the rolling 24-hour price window and the cumulative reward.
//
// Every call to Step advances the clock by one hour. The proposed action is
// first passed through the operating Policy (commute readiness, then minimum
// reserve), the battery is clamped to [0, capacity], the action is billed at
// the oldest price of the window and the window rotates, taking its newest
// slot from the configured pricing.PriceSource.
//
// An Environment is not safe for concurrent use. Independent simulations
// should use independent instances; Reset makes an instance equivalent to a
// freshly constructed one. An injected price source is only rewound when the
// environment was built WithReplay.
package env
