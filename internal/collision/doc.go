// Package collision holds colliders and the two collision detection stages.
//
// [BroadPhase] keeps a uniform grid over collider bounds and reports candidate
// pairs whose bounds overlap. [NarrowPhase] turns candidates into contact
// manifolds and reports when pairs start or stop touching. Both are derived
// state: they can be rebuilt from the [ColliderSet] at any time and must be
// purged through RemoveEntriesFor and RemoveContactsFor before a collider slot
// is freed.
//
// Pairs are always ordered with [ColliderPair.A] before [ColliderPair.B] and
// both stages hand out pairs sorted, so a step never depends on map order.
package collision
