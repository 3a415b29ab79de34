// Package pipeline sequences one physics step and coordinates entity removal.
//
// A step always runs the stages in the same order:
//
//  1. [collision.BroadPhase.UpdateCandidates] re-indexes colliders from their
//     current bounds.
//  2. [collision.NarrowPhase.RefreshContacts] rebuilds manifolds for this
//     step's candidates.
//  3. Contact events are handed to the configured [collision.EventHandler].
//  4. The [Integrator] applies gravity, solves joints and contacts and moves
//     bodies by one fixed step.
//  5. [Observer]s are notified.
//
// Removal runs the other way. [PhysicsPipeline.RemoveCollider] purges the
// broad phase and narrow phase, detaches the collider from its body and only
// then frees its slot, so no structure holds a handle that no longer
// resolves once the call returns. Body removal cascades to owned colliders
// and attached joints.
//
// The pipeline is single-threaded. Calling Step or a removal from inside an
// event handler or observer returns [ErrPipelineLocked].
package pipeline
