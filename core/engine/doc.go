// Package engine implements the threshold engine: pure computations that
// turn vehicle telemetry and the service threshold table into health
// snapshots, a fleet-wide ranked queue of predicted service needs, bundling
// recommendations and charge-timing plans.
//
// Key entry points:
//   - ComputeHealthSnapshot: per-vehicle urgency view.
//   - GeneratePriorityQueue: fleet ranking by composite score.
//   - GenerateBundles: multi-service visit recommendations.
//   - GetChargeRecommendation: cost- and risk-aware charge plan.
//
// All functions are side-effect free and deterministic for a given input,
// so they can run on any number of workers without coordination.
package engine
