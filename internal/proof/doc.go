// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package proof implements the proof orchestrator: the job state machine
// that takes a wallet-submitted witness through Pending, Generating, and a
// terminal Complete or Failed state, backed by a bounded suture-supervised
// worker pool and an opaque external STARK prover reached through a
// circuit breaker.
//
// # Job lifecycle
//
// Submit durably records a job in Pending and returns immediately; a
// worker picks it up, calls the prover backend, and on a successful
// response runs the verifier over (proof_bytes, public_inputs,
// circuit_id) before marking the job Complete. A witness the circuit
// itself rejects is terminal Failed without retry; transient prover
// errors are retried with backoff inside the worker. A reclaimer service
// periodically re-enqueues Pending jobs that have sat unclaimed past a
// configurable threshold, recovering from a worker crash mid-generation.
//
// # Usage
//
//	orch := proof.NewOrchestrator(store, backend, proof.DefaultConfig())
//	tree.AddProvingService(orch.WorkerService())
//	tree.AddProvingService(orch.ReclaimerService())
//
//	proofID, err := orch.Submit(ctx, "age_verification_v1", witness)
//	status, err := orch.Wait(ctx, proofID, 250*time.Millisecond, 20)
package proof
